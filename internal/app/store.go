package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/binia1/hyobinwiki/internal/adapter/memstore"
	"github.com/binia1/hyobinwiki/internal/adapter/postgres"
	"github.com/binia1/hyobinwiki/internal/adapter/postgres/article"
	"github.com/binia1/hyobinwiki/internal/config"
	"github.com/binia1/hyobinwiki/internal/domain"
)

// DocumentStore is everything the wiki needs from a store driver.
type DocumentStore interface {
	Upsert(ctx context.Context, title string, patch domain.ArticlePatch) error
	Update(ctx context.Context, title string, patch domain.ArticlePatch) error
	Snapshot(ctx context.Context) (domain.Snapshot, error)
	Subscribe(ctx context.Context, onSnapshot func(domain.Snapshot), onError func(error)) (cancel func())
	Ping(ctx context.Context) error
}

// pgStore is the article repo plus the pool it runs on, which answers
// health pings.
type pgStore struct {
	*article.Repo
	pool *pgxpool.Pool
}

func (s pgStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// OpenStore connects the configured store driver. The returned close func
// releases its resources and is never nil.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (DocumentStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory document store; data is lost on restart")
		return memstore.New(), func() {}, nil

	case config.DriverPostgres:
		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(ctx, cfg.Database.DSN, logger); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}

		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}

		listener := postgres.NewListener(pool, article.NotifyChannel(cfg.Store.Collection))
		repo := article.New(pool, listener, article.Config{
			Table:    cfg.Store.Collection,
			AppID:    cfg.Store.AppID,
			Debounce: cfg.Sync.ReloadDebounce,
		}, logger)
		return pgStore{Repo: repo, pool: pool}, pool.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
