package article

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// Subscribe starts the live feed. onSnapshot receives the full collection
// once LISTEN is established and again after every change notification for
// this app id; bursts within the debounce window collapse into one reload.
// A listener or reload failure is reported through onError and ends the
// feed. The returned cancel stops the feed; no callback fires after the
// feed goroutine observes the cancellation.
func (r *Repo) Subscribe(ctx context.Context, onSnapshot func(domain.Snapshot), onError func(error)) (cancel func()) {
	ctx, cancel = context.WithCancel(ctx)
	go r.feed(ctx, onSnapshot, onError)
	return cancel
}

func (r *Repo) feed(ctx context.Context, onSnapshot func(domain.Snapshot), onError func(error)) {
	changed := make(chan struct{}, 1)
	ready := make(chan struct{})
	errc := make(chan error, 1)

	go func() {
		errc <- r.listener.Listen(ctx,
			func() { close(ready) },
			func(payload string) {
				if payload != r.cfg.AppID {
					return
				}
				select {
				case changed <- struct{}{}:
				default:
				}
			},
		)
	}()

	fail := func(err error) {
		if ctx.Err() != nil {
			return
		}
		r.log.ErrorContext(ctx, "article feed failed", slog.String("error", err.Error()))
		onError(err)
	}

	select {
	case <-ctx.Done():
		return
	case err := <-errc:
		fail(err)
		return
	case <-ready:
	}

	deliver := func() bool {
		snap, err := r.Snapshot(ctx)
		if err != nil {
			fail(fmt.Errorf("reload collection: %w", err))
			return false
		}
		if ctx.Err() != nil {
			return false
		}
		onSnapshot(snap)
		return true
	}

	if !deliver() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errc:
			fail(err)
			return
		case <-changed:
			if r.cfg.Debounce > 0 {
				t := time.NewTimer(r.cfg.Debounce)
				select {
				case <-ctx.Done():
					t.Stop()
					return
				case <-t.C:
				}
				select {
				case <-changed:
				default:
				}
			}
			if !deliver() {
				return
			}
		}
	}
}
