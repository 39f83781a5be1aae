package wiki

import (
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"
)

// Snippet rendering constants.
const (
	NoContentSnippet = "문서 내용 없음."
	snippetLead      = 50
	snippetTrail     = 150
	snippetFallback  = 200
	ellipsis         = "..."
)

// HighlightOpen and HighlightClose wrap every search hit in a snippet.
const (
	HighlightOpen  = `<strong class="search-hit">`
	HighlightClose = `</strong>`
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// SearchResult is one matching article.
type SearchResult struct {
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// Search returns the articles whose title or raw content contains term.
// Matching is case-sensitive and runs against the markup as stored; an
// empty term matches nothing. Results are ordered by title.
func (s *Service) Search(term string) []SearchResult {
	if term == "" {
		return []SearchResult{}
	}

	snap := s.cache.Snapshot()
	results := make([]SearchResult, 0)
	for title, a := range snap {
		if !strings.Contains(title, term) && !strings.Contains(a.Content, term) {
			continue
		}
		results = append(results, SearchResult{
			Title:       title,
			Snippet:     Snippet(a.Content, term),
			LastUpdated: a.LastUpdated,
		})
	}

	slices.SortFunc(results, func(a, b SearchResult) int {
		return strings.Compare(a.Title, b.Title)
	})
	return results
}

// Snippet renders a short plain-text excerpt of content around the first
// case-insensitive occurrence of term, with every occurrence highlighted.
// Without an occurrence it falls back to the leading text.
func Snippet(content, term string) string {
	if content == "" {
		return NoContentSnippet
	}

	plain := []rune(tagPattern.ReplaceAllString(content, ""))
	needle := []rune(term)

	idx := indexFold(plain, needle)
	if idx < 0 {
		return string(plain[:min(len(plain), snippetFallback)]) + ellipsis
	}

	start := max(0, idx-snippetLead)
	end := min(len(plain), idx+len(needle)+snippetTrail)

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(Highlight(string(plain[start:end]), term))
	if end < len(plain) {
		b.WriteString(ellipsis)
	}
	return b.String()
}

// Highlight wraps every case-insensitive occurrence of term in text with
// the highlight marker. The term is matched literally.
func Highlight(text, term string) string {
	if term == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(term))
	return re.ReplaceAllStringFunc(text, func(hit string) string {
		return HighlightOpen + hit + HighlightClose
	})
}

// indexFold returns the rune index of the first case-insensitive match of
// needle in haystack, or -1.
func indexFold(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if unicode.ToLower(haystack[i+j]) != unicode.ToLower(r) {
				continue outer
			}
		}
		return i
	}
	return -1
}
