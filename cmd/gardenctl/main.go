// Command gardenctl is the operator CLI for the garden bot.
//
// Usage:
//
//	gardenctl migrate up
//	gardenctl migrate status --db ./data/bot.db
//	gardenctl assets fetch --dir assets
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"garden_bot/internal/assets"
	"garden_bot/internal/config"
	"garden_bot/internal/feed"
	"garden_bot/internal/logger"
	"garden_bot/migrations"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := &cobra.Command{
		Use:          "gardenctl",
		Short:        "Garden bot operator CLI",
		SilenceUsage: true,
	}
	root.AddCommand(migrateCmd())
	root.AddCommand(assetsCmd())

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", envOrDefault("DATABASE_PATH", "./data/bot.db"), "path to sqlite database")

	steps := []struct {
		use   string
		short string
		run   func(db *sql.DB, dir string) error
	}{
		{"up", "Migrate to the latest version", func(db *sql.DB, dir string) error { return goose.Up(db, dir) }},
		{"up-one", "Migrate one version up", func(db *sql.DB, dir string) error { return goose.UpByOne(db, dir) }},
		{"down", "Roll back one version", func(db *sql.DB, dir string) error { return goose.Down(db, dir) }},
		{"status", "Show migration status", func(db *sql.DB, dir string) error { return goose.Status(db, dir) }},
		{"version", "Show current version", func(db *sql.DB, dir string) error { return goose.Version(db, dir) }},
		{"reset", "Roll back all migrations", func(db *sql.DB, dir string) error { return goose.Reset(db, dir) }},
	}
	for _, s := range steps {
		s := s
		cmd.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(dbPath, func(db *sql.DB) error {
					if err := s.run(db, "."); err != nil {
						return fmt.Errorf("%s: %w", s.use, err)
					}
					return nil
				})
			},
		})
	}
	return cmd
}

func withDB(path string, fn func(db *sql.DB) error) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Setup(); err != nil {
		return err
	}
	return fn(db)
}

// --------------------------------------------------------------------------
// assets command
// --------------------------------------------------------------------------

func assetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Manage catalog icons",
	}
	cmd.AddCommand(assetsFetchCmd())
	return cmd
}

func assetsFetchCmd() *cobra.Command {
	var dir, level string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the icon of every observed catalog entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.New(os.Stderr, level)

			fc, err := config.LoadFeed(ctx, envconfig.OsLookuper())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			client := feed.New(http.DefaultClient, fc.BaseURL, fc.APIKey, fc.RequestsPerMinute)

			saved, err := assets.New(client, http.DefaultClient, dir, log).Fetch(ctx)
			for _, kind := range assets.Kinds {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d icons saved\n", kind, saved[kind])
			}
			if err != nil {
				log.Error("some catalogs could not be listed", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "assets", "directory to store icons in")
	cmd.Flags().StringVar(&level, "log-level", envOrDefault("LOG_LEVEL", "info"), "log level")
	return cmd
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

