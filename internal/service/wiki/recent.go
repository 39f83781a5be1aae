package wiki

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// RecentChanges returns up to n articles ordered by lastUpdated, newest
// first. Articles that were never content-saved sort last. n <= 0 uses the
// configured limit.
func (s *Service) RecentChanges(n int) []domain.Article {
	if n <= 0 {
		n = s.cfg.RecentLimit
	}

	snap := s.cache.Snapshot()
	list := make([]domain.Article, 0, len(snap))
	for title, a := range snap {
		a.Title = title
		list = append(list, a)
	}

	slices.SortFunc(list, func(a, b domain.Article) int {
		switch {
		case a.LastUpdated == nil && b.LastUpdated == nil:
			return strings.Compare(a.Title, b.Title)
		case a.LastUpdated == nil:
			return 1
		case b.LastUpdated == nil:
			return -1
		}
		if c := b.LastUpdated.Compare(*a.LastUpdated); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})

	if len(list) > n {
		list = list[:n]
	}
	return list
}

// Random returns a uniformly chosen cached title.
// Returns domain.ErrNotFound when the cache is empty.
func (s *Service) Random() (string, error) {
	titles := s.cache.Titles()
	if len(titles) == 0 {
		return "", fmt.Errorf("random article: %w", domain.ErrNotFound)
	}
	return titles[rand.IntN(len(titles))], nil
}
