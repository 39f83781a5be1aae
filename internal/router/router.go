// Package router holds the view-mode state of a wiki session: the home
// page, one article, or a search result list.
package router

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// ErrNoArticles is returned by GoRandom when there is nothing to pick.
var ErrNoArticles = errors.New("no articles to choose from")

// State is the current view.
type State struct {
	Mode  domain.ViewMode
	Title string
	Term  string
}

// Router is safe for concurrent use.
type Router struct {
	mu        sync.Mutex
	state     State
	observers map[int]func(State)
	nextID    int
	pick      func(n int) int
}

// New creates a router on the home view.
func New() *Router {
	return &Router{
		state:     State{Mode: domain.ViewHome},
		observers: make(map[int]func(State)),
		pick:      rand.IntN,
	}
}

// State returns the current view.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// GoHome shows the home page.
func (r *Router) GoHome() {
	r.set(State{Mode: domain.ViewHome})
}

// GoArticle opens title.
func (r *Router) GoArticle(title string) {
	r.set(State{Mode: domain.ViewArticle, Title: title})
}

// GoSearch shows results for term. A blank term is ignored and reports
// false.
func (r *Router) GoSearch(term string) bool {
	if strings.TrimSpace(term) == "" {
		return false
	}
	r.set(State{Mode: domain.ViewSearch, Term: term})
	return true
}

// GoRandom opens a uniformly chosen title.
func (r *Router) GoRandom(titles []string) (string, error) {
	if len(titles) == 0 {
		return "", ErrNoArticles
	}
	title := titles[r.pick(len(titles))]
	r.GoArticle(title)
	return title, nil
}

// Observe registers fn for view changes.
func (r *Router) Observe(fn func(State)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.observers[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.observers, id)
			r.mu.Unlock()
		})
	}
}

func (r *Router) set(s State) {
	r.mu.Lock()
	if r.state == s {
		r.mu.Unlock()
		return
	}
	r.state = s
	fns := make([]func(State), 0, len(r.observers))
	for _, fn := range r.observers {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
