package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/binia1/hyobinwiki/internal/domain"
	"github.com/binia1/hyobinwiki/pkg/ctxutil"
)

// PostDiscussion appends a message to an article's discussion board.
// Topic and message are validated trimmed but stored as given.
// Only the discuss field is written; content, history and lastUpdated are
// left untouched. Posting to an article that does not exist yet fails with
// domain.ErrNotFound.
func (s *Service) PostDiscussion(ctx context.Context, input PostInput) (domain.Discussion, error) {
	id, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return domain.Discussion{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.Discussion{}, err
	}

	current, _ := s.cache.Get(input.Title)

	entry := domain.Discussion{
		Topic:   input.Topic,
		Content: input.Message,
		User:    s.displayName(id),
		Time:    s.now().UTC(),
	}

	discuss := append(slices.Clone(current.Discuss), entry)

	err := s.store.Update(ctx, input.Title, domain.ArticlePatch{Discuss: discuss, SetDiscuss: true})
	if err != nil {
		s.log.ErrorContext(ctx, "post discussion failed",
			slog.String("title", input.Title),
			slog.String("error", err.Error()))
		return domain.Discussion{}, fmt.Errorf("wiki.PostDiscussion: %w", err)
	}

	s.log.InfoContext(ctx, "discussion posted",
		slog.String("title", input.Title),
		slog.Int("count", len(discuss)))

	return entry, nil
}

// Discussion returns an article's discussion newest first.
func (s *Service) Discussion(title string) ([]domain.Discussion, error) {
	a, ok := s.cache.Get(title)
	if !ok {
		return nil, fmt.Errorf("article %q: %w", title, domain.ErrNotFound)
	}
	return a.DiscussionNewestFirst(), nil
}
