package domain

import (
	"slices"
	"time"
)

// Article is the full persisted state of one wiki page. The title is both
// the primary key and the display name.
type Article struct {
	Title       string
	Content     string
	History     []Revision
	Discuss     []Discussion
	LastUpdated *time.Time
}

// Revision is one logged content save. Rev is assigned by the writer from
// the history length it observed, so it is unique only in the absence of
// concurrent writers.
type Revision struct {
	Rev     int       `json:"rev"`
	User    string    `json:"user"`
	Time    time.Time `json:"time"`
	Summary string    `json:"summary"`
}

// Discussion is one message posted on an article's discussion board.
type Discussion struct {
	Topic   string    `json:"topic"`
	Content string    `json:"content"`
	User    string    `json:"user"`
	Time    time.Time `json:"time"`
}

// ArticlePatch carries the fields of a merge-upsert or partial update.
// A nil field is left untouched in the stored record.
type ArticlePatch struct {
	Content     *string
	History     []Revision
	Discuss     []Discussion
	LastUpdated *time.Time

	// SetHistory and SetDiscuss distinguish "write an empty list" from
	// "leave the list alone".
	SetHistory bool
	SetDiscuss bool
}

// IsEmpty reports whether the patch writes nothing.
func (p ArticlePatch) IsEmpty() bool {
	return p.Content == nil && !p.SetHistory && !p.SetDiscuss && p.LastUpdated == nil
}

// Apply merges the patch into a copy of a and returns it.
func (p ArticlePatch) Apply(a Article) Article {
	out := a.Clone()
	if p.Content != nil {
		out.Content = *p.Content
	}
	if p.SetHistory {
		out.History = slices.Clone(p.History)
	}
	if p.SetDiscuss {
		out.Discuss = slices.Clone(p.Discuss)
	}
	if p.LastUpdated != nil {
		t := *p.LastUpdated
		out.LastUpdated = &t
	}
	return out
}

// Clone returns a deep copy so cached records are never aliased by callers.
func (a Article) Clone() Article {
	out := a
	out.History = slices.Clone(a.History)
	out.Discuss = slices.Clone(a.Discuss)
	if a.LastUpdated != nil {
		t := *a.LastUpdated
		out.LastUpdated = &t
	}
	return out
}

// NextRev returns the revision number the next content save receives.
func (a Article) NextRev() int {
	return len(a.History) + 1
}

// SortedHistory returns the history ordered newest first by Time.
// Stored order is a convention only; entries with equal times keep it.
func (a Article) SortedHistory() []Revision {
	out := slices.Clone(a.History)
	slices.SortStableFunc(out, func(x, y Revision) int {
		return y.Time.Compare(x.Time)
	})
	return out
}

// DiscussionNewestFirst returns the discussion in reverse storage order.
func (a Article) DiscussionNewestFirst() []Discussion {
	out := slices.Clone(a.Discuss)
	slices.Reverse(out)
	return out
}

// Snapshot is the full state of the article collection as delivered by the
// live feed, keyed by title.
type Snapshot map[string]Article

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}
