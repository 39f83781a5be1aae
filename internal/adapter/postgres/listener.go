package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Listener LISTENs on one notification channel over a connection held
// exclusively for that purpose.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
}

// NewListener creates a listener for channel.
func NewListener(pool *pgxpool.Pool, channel string) *Listener {
	return &Listener{pool: pool, channel: channel}
}

// Listen blocks delivering notification payloads to fn until ctx is done
// or the connection fails. The first call to fn happens only after LISTEN
// has been acknowledged, so onReady runs before any payload.
func (l *Listener) Listen(ctx context.Context, onReady func(), fn func(payload string)) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	defer func() {
		// ctx is likely done here; UNLISTEN on a fresh context so the
		// connection returns to the pool clean.
		_, _ = conn.Exec(context.Background(), "UNLISTEN *")
	}()

	if onReady != nil {
		onReady()
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		fn(n.Payload)
	}
}
