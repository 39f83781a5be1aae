package wiki

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// DefaultSafetyTimeout forces the loaded state if the feed stays silent.
const DefaultSafetyTimeout = 8 * time.Second

// snapshotFeed is the live collection feed of the document store.
type snapshotFeed interface {
	Subscribe(ctx context.Context, onSnapshot func(domain.Snapshot), onError func(error)) (cancel func())
}

// articleSeeder decides whether a snapshot is stale and rewrites the
// canonical article when it is.
type articleSeeder interface {
	NeedsSeed(snap domain.Snapshot) bool
	Seed(ctx context.Context) error
}

// Status is the user-visible state of the sync loop.
type Status struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Syncer keeps the cache in step with the document store feed.
type Syncer struct {
	log    *slog.Logger
	feed   snapshotFeed
	cache  *Cache
	seeder articleSeeder
	safety time.Duration

	mu        sync.Mutex
	loading   bool
	errMsg    string
	loaded    chan struct{}
	observers map[int]func(domain.Snapshot)
	nextID    int
}

// NewSyncer creates a syncer. A non-positive safety falls back to
// DefaultSafetyTimeout.
func NewSyncer(logger *slog.Logger, feed snapshotFeed, cache *Cache, seeder articleSeeder, safety time.Duration) *Syncer {
	if safety <= 0 {
		safety = DefaultSafetyTimeout
	}
	return &Syncer{
		log:       logger.With("service", "sync"),
		feed:      feed,
		cache:     cache,
		seeder:    seeder,
		safety:    safety,
		loading:   true,
		loaded:    make(chan struct{}),
		observers: make(map[int]func(domain.Snapshot)),
	}
}

// Run subscribes to the feed on behalf of id and blocks until ctx is done.
// Cancelling ctx tears down the subscription and the safety timer together.
//
// A snapshot that is empty or carries a stale canonical article is not
// accepted: the seeder rewrites the article and the resulting change
// notification delivers the snapshot that is.
func (s *Syncer) Run(ctx context.Context, id domain.Identity) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.log.InfoContext(ctx, "sync started",
		slog.String("subject", id.Subject.String()),
		slog.Bool("anonymous", id.IsAnonymous))

	var (
		mu     sync.Mutex
		closed bool
		seeds  sync.WaitGroup
	)

	safety := time.AfterFunc(s.safety, func() {
		if s.markLoaded() {
			s.log.WarnContext(ctx, "feed silent, forcing loaded state", slog.Duration("after", s.safety))
		}
	})
	defer safety.Stop()

	onSnapshot := func(snap domain.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		safety.Stop()

		if s.seeder.NeedsSeed(snap) {
			seeds.Add(1)
			go func() {
				defer seeds.Done()
				if err := s.seeder.Seed(ctx); err != nil {
					if ctx.Err() == nil {
						s.log.ErrorContext(ctx, "seeding failed", slog.String("error", err.Error()))
					}
					s.markLoaded()
				}
			}()
			return
		}

		s.cache.Replace(snap)
		s.markLoaded()
		s.notify(snap)
	}

	onError := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		safety.Stop()

		s.log.ErrorContext(ctx, "feed error", slog.String("error", err.Error()))
		s.mu.Lock()
		s.errMsg = FeedFailedMessage
		s.mu.Unlock()
		s.markLoaded()
	}

	stop := s.feed.Subscribe(ctx, onSnapshot, onError)

	<-ctx.Done()
	stop()

	mu.Lock()
	closed = true
	mu.Unlock()
	seeds.Wait()

	s.log.Info("sync stopped", slog.String("subject", id.Subject.String()))
	return nil
}

// Status returns the current loading state and error message.
func (s *Syncer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Loading: s.loading, Error: s.errMsg}
}

// Loaded returns a channel closed the first time loading completes, by
// an accepted snapshot, a feed error, a failed seed or the safety timer.
func (s *Syncer) Loaded() <-chan struct{} {
	return s.loaded
}

// OnSnapshot registers fn to be called with every accepted snapshot.
func (s *Syncer) OnSnapshot(fn func(domain.Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// markLoaded reports whether this call completed loading.
func (s *Syncer) markLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loading {
		return false
	}
	s.loading = false
	close(s.loaded)
	return true
}

func (s *Syncer) notify(snap domain.Snapshot) {
	s.mu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap.Clone())
	}
}
