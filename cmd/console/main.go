package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/stage-console/app"
	auditmigrations "github.com/Black-And-White-Club/stage-console/app/modules/audit/infrastructure/repositories/migrations"
	scoringmigrations "github.com/Black-And-White-Club/stage-console/app/modules/scoring/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/stage-console/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// moduleMigrations lists migration sets in the order they are applied.
var moduleMigrations = []struct {
	name       string
	migrations *migrate.Migrations
}{
	{name: "scoring", migrations: scoringmigrations.Migrations},
	{name: "audit", migrations: auditmigrations.Migrations},
}

func main() {
	cliApp := &cli.App{
		Name:  "console",
		Usage: "event console admin API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_PATH"},
			},
		},
		Commands: []*cli.Command{
			newServeCommand(),
			newMigrateCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and the bus consumers",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := app.NewLogger(cfg.Log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.NewApp(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}
			defer func() {
				if err := application.Close(); err != nil {
					logger.Error("Error during shutdown", "error", err)
				}
			}()

			return application.Run(ctx)
		},
	}
}

func newMigrateCommand() *cli.Command {
	// withMigrators opens the database and builds one migrator per module.
	withMigrators := func(fn func(ctx context.Context, name string, m *migrate.Migrator) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db := app.OpenDB(cfg.Postgres.DSN)
			defer db.Close()

			for _, mm := range moduleMigrations {
				if err := fn(c.Context, mm.name, migrate.NewMigrator(db, mm.migrations)); err != nil {
					return fmt.Errorf("module %s: %w", mm.name, err)
				}
			}
			return nil
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: withMigrators(func(ctx context.Context, name string, m *migrate.Migrator) error {
					fmt.Printf("Initializing migrations for module: %s\n", name)
					return m.Init(ctx)
				}),
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: withMigrators(func(ctx context.Context, name string, m *migrate.Migrator) error {
					if err := m.Lock(ctx); err != nil {
						return err
					}
					defer m.Unlock(ctx) //nolint:errcheck

					group, err := m.Migrate(ctx)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Printf("No new migrations to run for module: %s\n", name)
					} else {
						fmt.Printf("Migrated module: %s to %s\n", name, group)
					}
					return nil
				}),
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: withMigrators(func(ctx context.Context, name string, m *migrate.Migrator) error {
					if err := m.Lock(ctx); err != nil {
						return err
					}
					defer m.Unlock(ctx) //nolint:errcheck

					group, err := m.Rollback(ctx)
					if err != nil {
						return err
					}
					if group.IsZero() {
						fmt.Printf("No groups to roll back for module: %s\n", name)
					} else {
						fmt.Printf("Rolled back module: %s to %s\n", name, group)
					}
					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: withMigrators(func(ctx context.Context, name string, m *migrate.Migrator) error {
					ms, err := m.MigrationsWithStatus(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("Migrations for module: %s\n", name)
					fmt.Printf("  %s\n", ms)
					fmt.Printf("  Applied: %s\n", ms.Applied())
					fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					return nil
				}),
			},
		},
	}
}
