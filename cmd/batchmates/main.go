// Command batchmates serves the batchmates interest graph API and manages
// its database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/batchmates/batchmates/internal/config"
	"github.com/batchmates/batchmates/internal/db"
	"github.com/batchmates/batchmates/internal/db/migrations"
	"github.com/batchmates/batchmates/internal/dbpool"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "batchmates",
		Short:        "Batchmates interest graph server",
		Version:      config.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), runServe)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), runServe)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), runMigrate)
		},
	})
	root.AddCommand(newImportCmd())

	return root
}

// env bundles what every subcommand needs once configuration is loaded.
type env struct {
	cfg  *config.Config
	log  *logrus.Logger
	pool *dbpool.Pool
}

// withEnv loads configuration, opens the pool and applies migrations before
// running fn.
func withEnv(ctx context.Context, fn func(context.Context, *env) error) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	log := cfg.NewLogger()
	log.WithFields(logrus.Fields{
		"version": config.Version,
		"addr":    cfg.Addr(),
	}).Info("starting batchmates")

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), int32(cfg.DBMaxConns)) //nolint:gosec // validated to 1..100.
	if err != nil {
		log.WithError(err).Error("connecting to database")
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		log.WithError(err).Error("running migrations")
		return err
	}

	if err := fn(ctx, &env{cfg: cfg, log: log, pool: pool}); err != nil {
		log.WithError(err).Error("exiting")
		return err
	}

	return nil
}

func runMigrate(ctx context.Context, e *env) error {
	version, err := db.SchemaVersion(ctx, e.pool, migrations.FS)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	e.log.WithField("version", version).Info("schema up to date")

	return nil
}
