package wiki

import (
	"context"
	"log/slog"
	"sync"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// identityWatcher is the identity change source.
type identityWatcher interface {
	Watch(fn func(*domain.Identity)) (unsubscribe func())
}

// syncRunner runs one sync session per identity.
type syncRunner interface {
	Run(ctx context.Context, id domain.Identity) error
}

// IdentityBinder restarts the sync loop whenever the current identity
// changes and stops it when the identity goes away.
type IdentityBinder struct {
	log     *slog.Logger
	watcher identityWatcher
	syncer  syncRunner
}

// NewIdentityBinder creates a binder.
func NewIdentityBinder(logger *slog.Logger, watcher identityWatcher, syncer syncRunner) *IdentityBinder {
	return &IdentityBinder{
		log:     logger.With("service", "identity_binder"),
		watcher: watcher,
		syncer:  syncer,
	}
}

// Run blocks until ctx is done, keeping at most one sync session alive.
func (b *IdentityBinder) Run(ctx context.Context) error {
	var mu sync.Mutex
	changes := make(chan *domain.Identity, 1)
	unsubscribe := b.watcher.Watch(func(id *domain.Identity) {
		mu.Lock()
		defer mu.Unlock()
		// Only the latest identity matters.
		select {
		case <-changes:
		default:
		}
		changes <- id
	})
	defer unsubscribe()

	var (
		wg     sync.WaitGroup
		cancel context.CancelFunc
	)
	stop := func() {
		if cancel != nil {
			cancel()
			wg.Wait()
			cancel = nil
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case id := <-changes:
			stop()
			if id == nil {
				b.log.InfoContext(ctx, "identity cleared, sync paused")
				continue
			}

			var runCtx context.Context
			runCtx, cancel = context.WithCancel(ctx)
			wg.Add(1)
			go func(id domain.Identity) {
				defer wg.Done()
				if err := b.syncer.Run(runCtx, id); err != nil {
					b.log.ErrorContext(runCtx, "sync session ended", slog.String("error", err.Error()))
				}
			}(*id)
		}
	}
}
