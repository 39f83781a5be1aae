// Package viewer resolves clicks on rendered article markup. Content is
// trusted as stored; nothing is sanitized.
package viewer

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ActionKind says what a click did.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionFold
	ActionNavigate
	ActionAnchor
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionFold:
		return "fold"
	case ActionNavigate:
		return "navigate"
	case ActionAnchor:
		return "anchor"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is the outcome of a click.
//   - ActionFold: TargetID names the folded section, already toggled.
//   - ActionNavigate: Title is the article to open.
//   - ActionAnchor: TargetID names the in-page target; Highlight is set
//     when that element exists.
type Action struct {
	Kind      ActionKind
	Title     string
	TargetID  string
	Highlight *Highlight
}

// Document is parsed article markup. Its methods are safe for concurrent
// use.
type Document struct {
	mu   sync.Mutex
	root *html.Node
}

// Parse parses content as a body fragment.
func Parse(content string) (*Document, error) {
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(content), root)
	if err != nil {
		return nil, fmt.Errorf("parse article markup: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Document{root: root}, nil
}

// Render serializes the document, including any fold state.
func (d *Document) Render() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var b strings.Builder
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("render article markup: %w", err)
		}
	}
	return b.String(), nil
}

// ElementByID returns the element with the given id, or nil.
func (d *Document) ElementByID(id string) *html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.byID(id)
}

// Find returns every element matching match in document order.
func (d *Document) Find(match func(*html.Node) bool) []*html.Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n != d.root && match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Links returns the distinct internal link titles in document order.
func (d *Document) Links() []string {
	var titles []string
	for _, n := range d.Find(func(n *html.Node) bool { return n.DataAtom == atom.A && hasAttr(n, "data-wiki-title") }) {
		t, _ := attr(n, "data-wiki-title")
		if !slices.Contains(titles, t) {
			titles = append(titles, t)
		}
	}
	return titles
}

// Hidden reports whether the element with id carries the hidden class.
func (d *Document) Hidden(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.byID(id)
	return n != nil && hasClass(n, "hidden")
}

// Click resolves a click on target by its nearest matching ancestor, in
// priority order: a fold header, an internal link, then an in-page anchor.
// A fold click toggles the hidden class of the folded section.
func (d *Document) Click(target *html.Node) Action {
	d.mu.Lock()
	defer d.mu.Unlock()

	if header := closest(target, func(n *html.Node) bool { return hasClass(n, "folding-header") }); header != nil {
		id, _ := attr(header, "data-target-id")
		if section := d.byID(id); section != nil {
			toggleClass(section, "hidden")
		}
		return Action{Kind: ActionFold, TargetID: id}
	}

	if link := closest(target, func(n *html.Node) bool {
		return n.DataAtom == atom.A && hasAttr(n, "data-wiki-title")
	}); link != nil {
		title, _ := attr(link, "data-wiki-title")
		return Action{Kind: ActionNavigate, Title: title}
	}

	if a := closest(target, func(n *html.Node) bool { return n.DataAtom == atom.A }); a != nil {
		href, _ := attr(a, "href")
		if id, ok := strings.CutPrefix(href, "#"); ok {
			act := Action{Kind: ActionAnchor, TargetID: id}
			if d.byID(id) != nil {
				act.Highlight = &Highlight{TargetID: id, Color: HighlightColor, Revert: HighlightDuration}
			}
			return act
		}
	}

	return Action{Kind: ActionNone}
}

func (d *Document) byID(id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if v, ok := attr(n, "id"); ok && v == id && n.Type == html.ElementNode {
			found = n
			return false
		}
		return true
	})
	return found
}

// walk visits n and its descendants depth first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func closest(n *html.Node, match func(*html.Node) bool) *html.Node {
	for ; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && match(n) {
			return n
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := attr(n, key)
	return ok
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, class string) bool {
	v, _ := attr(n, "class")
	return slices.Contains(strings.Fields(v), class)
}

func toggleClass(n *html.Node, class string) {
	v, _ := attr(n, "class")
	fields := strings.Fields(v)
	if i := slices.Index(fields, class); i >= 0 {
		fields = slices.Delete(fields, i, i+1)
	} else {
		fields = append(fields, class)
	}
	setAttr(n, "class", strings.Join(fields, " "))
}
