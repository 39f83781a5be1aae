package wiki

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/binia1/hyobinwiki/internal/domain"
	"github.com/binia1/hyobinwiki/pkg/ctxutil"
)

// SaveArticle writes new content for an article, creating it if needed.
// The revision number is taken from the cached history, so two sessions
// saving the same article concurrently can produce duplicate revs; the
// later write wins.
func (s *Service) SaveArticle(ctx context.Context, input SaveInput) (domain.Article, error) {
	id, ok := ctxutil.IdentityFromCtx(ctx)
	if !ok {
		return domain.Article{}, domain.ErrUnauthorized
	}

	if err := input.Validate(); err != nil {
		return domain.Article{}, err
	}

	current, _ := s.cache.Get(input.Title)

	summary := input.Summary
	if summary == "" {
		summary = DefaultRevisionSummary
	}

	now := s.now().UTC()
	rev := domain.Revision{
		Rev:     current.NextRev(),
		User:    s.displayName(id),
		Time:    now,
		Summary: summary,
	}

	history := append([]domain.Revision{rev}, current.History...)
	discuss := slices.Clone(current.Discuss)
	if discuss == nil {
		discuss = []domain.Discussion{}
	}

	patch := domain.ArticlePatch{
		Content:     &input.Content,
		History:     history,
		SetHistory:  true,
		Discuss:     discuss,
		SetDiscuss:  true,
		LastUpdated: &now,
	}

	if err := s.store.Upsert(ctx, input.Title, patch); err != nil {
		s.log.ErrorContext(ctx, "save article failed",
			slog.String("title", input.Title),
			slog.String("error", err.Error()))
		return domain.Article{}, fmt.Errorf("wiki.SaveArticle: %w", err)
	}

	s.log.InfoContext(ctx, "article saved",
		slog.String("title", input.Title),
		slog.Int("rev", rev.Rev),
		slog.String("user", rev.User))

	saved := patch.Apply(current)
	saved.Title = input.Title
	return saved, nil
}
