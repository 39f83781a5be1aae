// Package identity is the session identity provider. It signs sessions in
// (anonymously or with a pre-issued token), validates bearer tokens for the
// transport layer, and notifies watchers whenever the server's own current
// identity changes.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/binia1/hyobinwiki/internal/domain"
)

// SignInFailedMessage is shown when the initial sign-in fails.
const SignInFailedMessage = "로그인 중 문제가 발생했습니다."

// tokenManager defines the token operations needed by the identity service.
type tokenManager interface {
	GenerateToken(id domain.Identity) (string, error)
	ValidateToken(token string) (domain.Identity, error)
}

// Session is a signed-in identity plus the bearer token that proves it.
type Session struct {
	Identity domain.Identity
	Token    string
}

// Service implements identity operations.
type Service struct {
	log    *slog.Logger
	tokens tokenManager

	// deliverMu orders watcher deliveries: a change and its fan-out, or a
	// registration and its initial call, complete before the next begins.
	deliverMu sync.Mutex

	mu       sync.Mutex
	current  *domain.Identity
	failure  string
	watchers map[int]func(*domain.Identity)
	nextID   int
}

// NewService creates a new identity service instance.
func NewService(logger *slog.Logger, tokens tokenManager) *Service {
	return &Service{
		log:      logger.With("service", "identity"),
		tokens:   tokens,
		watchers: make(map[int]func(*domain.Identity)),
	}
}

// SignInAnonymously mints a fresh anonymous subject and its token.
func (s *Service) SignInAnonymously(ctx context.Context) (*Session, error) {
	id := domain.Identity{Subject: uuid.New(), IsAnonymous: true}

	token, err := s.tokens.GenerateToken(id)
	if err != nil {
		return nil, fmt.Errorf("identity.SignInAnonymously: %w", err)
	}

	s.log.InfoContext(ctx, "anonymous session issued", slog.String("subject", id.Subject.String()))
	return &Session{Identity: id, Token: token}, nil
}

// SignInWithToken exchanges a pre-issued token for a session.
// Returns domain.ErrUnauthorized if the token is not valid.
func (s *Service) SignInWithToken(ctx context.Context, token string) (*Session, error) {
	id, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("identity.SignInWithToken: %w", err)
	}

	s.log.InfoContext(ctx, "token session accepted",
		slog.String("subject", id.Subject.String()),
		slog.Bool("anonymous", id.IsAnonymous))
	return &Session{Identity: id, Token: token}, nil
}

// ValidateToken returns the identity carried by token.
// Any parse or signature failure is reported as domain.ErrUnauthorized.
func (s *Service) ValidateToken(_ context.Context, token string) (domain.Identity, error) {
	id, err := s.tokens.ValidateToken(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return id, nil
}

// Bootstrap establishes the server's own session: the initial token when
// one is configured, otherwise an anonymous sign-in. A failure is logged and
// recorded for Failure; it is never fatal.
func (s *Service) Bootstrap(ctx context.Context, initialToken string) {
	var (
		sess *Session
		err  error
	)
	if initialToken != "" {
		sess, err = s.SignInWithToken(ctx, initialToken)
	} else {
		sess, err = s.SignInAnonymously(ctx)
	}

	if err != nil {
		s.log.ErrorContext(ctx, "initial sign-in failed", slog.String("error", err.Error()))
		s.mu.Lock()
		s.failure = SignInFailedMessage
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.failure = ""
	s.mu.Unlock()
	s.SetCurrent(&sess.Identity)
}

// Failure returns the user-facing sign-in error, or "" when the last
// Bootstrap succeeded.
func (s *Service) Failure() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// Current returns the server's current identity.
func (s *Service) Current() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Identity{}, false
	}
	return *s.current, true
}

// SetCurrent replaces the current identity (nil signs out) and notifies
// watchers when it actually changed. Watchers must not call SetCurrent or
// Watch.
func (s *Service) SetCurrent(id *domain.Identity) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if sameIdentity(s.current, id) {
		s.mu.Unlock()
		return
	}
	if id != nil {
		cp := *id
		s.current = &cp
	} else {
		s.current = nil
	}
	fns := s.snapshotWatchersLocked()
	cur := s.current
	s.mu.Unlock()

	for _, fn := range fns {
		fn(copyIdentity(cur))
	}
}

// Watch registers fn for identity changes and calls it once with the
// current identity (nil when signed out). No change is delivered to fn
// before that first call returns. The returned func unregisters it.
func (s *Service) Watch(fn func(*domain.Identity)) (unsubscribe func()) {
	id := s.register(fn)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) register(fn func(*domain.Identity)) int {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	cur := s.current
	s.mu.Unlock()

	fn(copyIdentity(cur))
	return id
}

func (s *Service) snapshotWatchersLocked() []func(*domain.Identity) {
	fns := make([]func(*domain.Identity), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	return fns
}

func sameIdentity(a, b *domain.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyIdentity(id *domain.Identity) *domain.Identity {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}
