// Package wiki implements the wiki use cases on top of the local document
// cache: saving articles, posting to discussion boards, history, search and
// the home page listings. It also owns the live sync loop that keeps the
// cache in step with the document store and seeds the canonical article.
package wiki

import (
	"context"
	"log/slog"
	"time"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// User-facing messages.
const (
	SaveFailedMessage       = "저장 중 오류가 발생했습니다. 콘솔을 확인해주세요."
	DiscussFailedMessage    = "토론 저장 중 오류가 발생했습니다. 콘솔을 확인해주세요."
	EmptyContentMessage     = "문서 내용이 비어있습니다. 내용을 입력해주세요."
	EmptyDiscussionMessage  = "주제와 내용을 모두 입력해야 합니다."
	FeedFailedMessage       = "데이터를 불러오는 중 오류가 발생했습니다."
	DefaultRevisionSummary  = "문서 수정"
	DefaultRecentChangesMax = 10
)

// articleWriter defines the document store writes needed by the wiki service.
type articleWriter interface {
	Upsert(ctx context.Context, title string, patch domain.ArticlePatch) error
	Update(ctx context.Context, title string, patch domain.ArticlePatch) error
}

// Config holds wiki behaviour settings.
type Config struct {
	AuthenticatedLabel string
	RecentLimit        int
}

// Service implements wiki operations.
type Service struct {
	log   *slog.Logger
	store articleWriter
	cache *Cache
	cfg   Config
	now   func() time.Time
}

// NewService creates a new wiki service instance.
func NewService(logger *slog.Logger, store articleWriter, cache *Cache, cfg Config) *Service {
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = DefaultRecentChangesMax
	}
	return &Service{
		log:   logger.With("service", "wiki"),
		store: store,
		cache: cache,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Article returns the cached record for title.
func (s *Service) Article(title string) (domain.Article, bool) {
	return s.cache.Get(title)
}

// Titles returns every cached title in sorted order.
func (s *Service) Titles() []string {
	return s.cache.Titles()
}

func (s *Service) displayName(id domain.Identity) string {
	return id.DisplayName(s.cfg.AuthenticatedLabel)
}
