package wiki

import (
	"fmt"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// History returns an article's revisions ordered newest first by time.
func (s *Service) History(title string) ([]domain.Revision, error) {
	a, ok := s.cache.Get(title)
	if !ok {
		return nil, fmt.Errorf("article %q: %w", title, domain.ErrNotFound)
	}
	return a.SortedHistory(), nil
}
