package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/binia1/hyobinwiki/internal/auth"
	"github.com/binia1/hyobinwiki/internal/config"
	"github.com/binia1/hyobinwiki/internal/service/identity"
	"github.com/binia1/hyobinwiki/internal/service/wiki"
	"github.com/binia1/hyobinwiki/internal/transport/middleware"
	"github.com/binia1/hyobinwiki/internal/transport/rest"
	"github.com/binia1/hyobinwiki/internal/transport/ws"
)

// Run is the application entry point. It loads configuration, connects the
// document store, and serves HTTP until ctx is cancelled or a component
// fails.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("store_driver", cfg.Store.Driver),
	)

	a, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      a.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	a.start(gctx, g)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("application stopped with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("application stopped")
	return nil
}

// application holds the wired components of one server instance.
type application struct {
	cfg        *config.Config
	log        *slog.Logger
	store      DocumentStore
	closeStore func()
	identity   *identity.Service
	cache      *wiki.Cache
	syncer     *wiki.Syncer
	binder     *wiki.IdentityBinder
	hub        *ws.Hub
	limiter    *middleware.RateLimiter
	handler    http.Handler
}

func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	jwtMgr := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	identitySvc := identity.NewService(logger, jwtMgr)

	cache := wiki.NewCache()
	wikiSvc := wiki.NewService(logger, store, cache, wiki.Config{
		AuthenticatedLabel: cfg.Wiki.AuthenticatedLabel,
		RecentLimit:        cfg.Wiki.RecentLimit,
	})
	seeder := wiki.NewSeeder(logger, store, wiki.DefaultImageMap(), cfg.Wiki.SeedTitle, cfg.Wiki.SeedMarker)
	syncer := wiki.NewSyncer(logger, store, cache, seeder, cfg.Sync.SafetyTimeout)
	binder := wiki.NewIdentityBinder(logger, identitySvc, syncer)

	hub := ws.NewHub(logger, cache, syncer, ws.Config{AllowedOrigins: splitList(cfg.CORS.AllowedOrigins)})
	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)

	mux := http.NewServeMux()

	health := rest.NewHealthHandler(store, syncer, BuildVersion())
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	authHandler := rest.NewAuthHandler(identitySvc, logger, cfg.Wiki.AuthenticatedLabel)
	mux.HandleFunc("POST /auth/anonymous", authHandler.Anonymous)
	mux.HandleFunc("POST /auth/token", authHandler.Token)

	rest.NewWikiHandler(wikiSvc, syncer, identitySvc, logger).Register(mux)
	mux.Handle("GET /api/feed", hub)

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.CORS(cfg.CORS),
		middleware.Auth(identitySvc),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		limiter.LimitWrites(cfg.RateLimit.WritesPerMinute),
	)(mux)

	return &application{
		cfg:        cfg,
		log:        logger,
		store:      store,
		closeStore: closeStore,
		identity:   identitySvc,
		cache:      cache,
		syncer:     syncer,
		binder:     binder,
		hub:        hub,
		limiter:    limiter,
		handler:    handler,
	}, nil
}

// start launches the background components on g: the identity-bound sync
// loop, the feed hub, and the server's own sign-in.
func (a *application) start(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error { return a.binder.Run(ctx) })
	g.Go(func() error { return a.hub.Run(ctx) })
	g.Go(func() error {
		a.identity.Bootstrap(ctx, a.cfg.Auth.InitialToken)
		return nil
	})
}

func (a *application) close() {
	a.limiter.Stop()
	a.closeStore()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
