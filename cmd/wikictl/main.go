// Command wikictl is the operator CLI: it migrates and seeds the document
// store, and reads, searches and edits articles directly against it.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/binia1/hyobinwiki/internal/app"
	"github.com/binia1/hyobinwiki/internal/config"
	"github.com/binia1/hyobinwiki/internal/service/wiki"
)

var (
	configPath string
	verbose    bool
)

// openStore is swapped in tests to share one in-memory store across commands.
var openStore = app.OpenStore

var rootCmd = &cobra.Command{
	Use:           "wikictl",
	Short:         "Operate the hyobinwiki document store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			return os.Setenv("CONFIG_PATH", configPath)
		}
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (overrides CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
}

// workspace is one loaded snapshot of the store plus the wiki services
// over it. Writes go straight to the store; the snapshot is not refreshed.
type workspace struct {
	cfg    *config.Config
	log    *slog.Logger
	store  app.DocumentStore
	cache  *wiki.Cache
	svc    *wiki.Service
	seeder *wiki.Seeder
	close  func()
}

func openWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	snap, err := store.Snapshot(ctx)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	cache := wiki.NewCache()
	cache.Replace(snap)

	return &workspace{
		cfg:   cfg,
		log:   logger,
		store: store,
		cache: cache,
		svc: wiki.NewService(logger, store, cache, wiki.Config{
			AuthenticatedLabel: cfg.Wiki.AuthenticatedLabel,
			RecentLimit:        cfg.Wiki.RecentLimit,
		}),
		seeder: wiki.NewSeeder(logger, store, wiki.DefaultImageMap(), cfg.Wiki.SeedTitle, cfg.Wiki.SeedMarker),
		close:  closeStore,
	}, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	if verbose {
		return app.NewLogger(cfg.Log)
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
