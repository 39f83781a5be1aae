// Package memstore is an in-process article collection with the same
// merge-upsert, partial-update and live-feed semantics as the PostgreSQL
// store. It backs the memory store driver and service tests.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/binia1/hyobinwiki/internal/domain"
)

type subscriber struct {
	ctx        context.Context
	onSnapshot func(domain.Snapshot)
	queue      chan domain.Snapshot
}

// Store is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	docs   domain.Snapshot
	subs   map[*subscriber]struct{}
	writes int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		docs: make(domain.Snapshot),
		subs: make(map[*subscriber]struct{}),
	}
}

// Ping reports the store as available unless ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Snapshot returns a deep copy of the collection.
func (s *Store) Snapshot(_ context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.Clone(), nil
}

// Get returns one article. Returns domain.ErrNotFound if it does not exist.
func (s *Store) Get(_ context.Context, title string) (domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.docs[title]
	if !ok {
		return domain.Article{}, fmt.Errorf("article %q: %w", title, domain.ErrNotFound)
	}
	return a.Clone(), nil
}

// Upsert merge-writes the patched fields, creating the record if missing.
func (s *Store) Upsert(ctx context.Context, title string, patch domain.ArticlePatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.docs[title]
	if !ok {
		a = domain.Article{Title: title, History: []domain.Revision{}, Discuss: []domain.Discussion{}}
	}
	s.docs[title] = patch.Apply(a)
	s.publishLocked()
	return nil
}

// Update writes the patched fields of an existing record.
// Returns domain.ErrNotFound if the record does not exist.
func (s *Store) Update(ctx context.Context, title string, patch domain.ArticlePatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return fmt.Errorf("update article %q: %w: empty patch", title, domain.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.docs[title]
	if !ok {
		return fmt.Errorf("article %q: %w", title, domain.ErrNotFound)
	}
	s.docs[title] = patch.Apply(a)
	s.publishLocked()
	return nil
}

// Writes returns how many successful writes the store has accepted.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Subscribe delivers the current collection immediately and again after
// every write. Deliveries to one subscriber are sequential and in write
// order; a subscriber that falls behind only sees the latest state.
// onError is never called: the in-memory feed cannot fail.
func (s *Store) Subscribe(ctx context.Context, onSnapshot func(domain.Snapshot), _ func(error)) (cancel func()) {
	ctx, cancel = context.WithCancel(ctx)

	sub := &subscriber{
		ctx:        ctx,
		onSnapshot: onSnapshot,
		queue:      make(chan domain.Snapshot, 1),
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	sub.queue <- s.docs.Clone()
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.subs, sub)
			s.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-sub.queue:
				if ctx.Err() != nil {
					return
				}
				sub.onSnapshot(snap)
			}
		}
	}()

	return cancel
}

func (s *Store) publishLocked() {
	s.writes++
	for sub := range s.subs {
		if sub.ctx.Err() != nil {
			continue
		}
		snap := s.docs.Clone()
		// Replace any undelivered snapshot with the newer one.
		select {
		case <-sub.queue:
		default:
		}
		sub.queue <- snap
	}
}
