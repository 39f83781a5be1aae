package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/binia1/hyobinwiki/internal/adapter/postgres"
	"github.com/binia1/hyobinwiki/internal/config"
)

var seedForce bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Store.Driver != config.DriverPostgres {
			return fmt.Errorf("migrate needs the %q store driver (got %q)", config.DriverPostgres, cfg.Store.Driver)
		}
		if err := postgres.Migrate(cmd.Context(), cfg.Database.DSN, newLogger(cfg)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the canonical article if it is missing or outdated",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.close()

		out := cmd.OutOrStdout()
		if !seedForce && !ws.seeder.NeedsSeed(ws.cache.Snapshot()) {
			fmt.Fprintf(out, "%s is up to date\n", ws.seeder.Title())
			return nil
		}
		if err := ws.seeder.Seed(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(out, "seeded %s\n", ws.seeder.Title())
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Overwrite the canonical article even if it is current")
	rootCmd.AddCommand(migrateCmd, seedCmd)
}
