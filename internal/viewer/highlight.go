package viewer

import (
	"strings"
	"sync"
	"time"
)

// Anchor highlight presentation.
const (
	HighlightColor    = "#fff3cd"
	HighlightDuration = 2 * time.Second
	revertColor       = "transparent"
)

// Highlight is a temporary background applied to an anchor target.
type Highlight struct {
	TargetID string
	Color    string
	Revert   time.Duration
}

// Highlighter applies highlights to a document and reverts each one after
// its duration. A second highlight of the same target restarts the timer.
type Highlighter struct {
	doc *Document

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewHighlighter creates a highlighter for doc.
func NewHighlighter(doc *Document) *Highlighter {
	return &Highlighter{doc: doc, timers: make(map[string]*time.Timer)}
}

// Apply sets the highlight background and schedules its revert.
func (h *Highlighter) Apply(hl Highlight) {
	h.doc.setBackground(hl.TargetID, hl.Color)

	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.timers[hl.TargetID]; ok {
		t.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(hl.Revert, func() {
		h.mu.Lock()
		if h.timers[hl.TargetID] != t {
			h.mu.Unlock()
			return
		}
		delete(h.timers, hl.TargetID)
		h.mu.Unlock()

		h.doc.setBackground(hl.TargetID, revertColor)
	})
	h.timers[hl.TargetID] = t
}

// Stop cancels every pending revert.
func (h *Highlighter) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, t := range h.timers {
		t.Stop()
		delete(h.timers, id)
	}
}

// Background returns the inline background-color of the element with id.
func (d *Document) Background(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.byID(id)
	if n == nil {
		return ""
	}
	style, _ := attr(n, "style")
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if ok && strings.TrimSpace(k) == "background-color" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (d *Document) setBackground(id, color string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.byID(id)
	if n == nil {
		return
	}
	style, _ := attr(n, "style")

	var decls []string
	for _, decl := range strings.Split(style, ";") {
		k, _, ok := strings.Cut(decl, ":")
		if strings.TrimSpace(decl) == "" || (ok && strings.TrimSpace(k) == "background-color") {
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	decls = append(decls, "background-color: "+color)
	setAttr(n, "style", strings.Join(decls, "; ")+";")
}
