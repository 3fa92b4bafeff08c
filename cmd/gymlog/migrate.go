// ABOUTME: CLI commands for Postgres schema migrations and store-to-store copies.
// ABOUTME: Wraps the embedded golang-migrate migrations and storage.MigrateData.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/golang-migrate/migrate/v4"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

var migrateTo string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage Postgres migrations and copy data between stores",
	Long: `Manage the Postgres schema and move data between stores.

The Postgres schema is versioned with embedded SQL migrations. They are
applied automatically whenever gymlog opens a Postgres store; these commands
let you apply or inspect them explicitly.

COMMANDS:

  up       Apply pending migrations
  version  Show the current migration version
  copy     Copy every row from the open store into another store

EXAMPLES:

  gymlog migrate up --database-url postgres://localhost/gymlog?sslmode=disable
  gymlog migrate version --database-url postgres://localhost/gymlog
  gymlog migrate copy --to postgres://localhost/gymlog    # SQLite -> Postgres
  gymlog migrate copy --to ./copy.db                       # SQLite -> SQLite`,
}

var migrateUpCmd = &cobra.Command{
	Use:         "up",
	Short:       "Apply pending Postgres migrations",
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := postgresURL()
		if err != nil {
			return err
		}
		if err := storage.RunMigrations(url); err != nil {
			return err
		}
		color.Green("✓ Migrations applied")
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Show the Postgres migration version",
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := postgresURL()
		if err != nil {
			return err
		}
		m, err := storage.NewMigrator(url)
		if err != nil {
			return err
		}
		defer m.Close()

		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("No migrations applied.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read version: %w", err)
		}

		fmt.Printf("Version: %d\n", version)
		if dirty {
			color.Yellow("⚠ Schema is dirty: a migration failed part way")
		}
		return nil
	},
}

var migrateCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy all data into another store",
	Long: `Copy every user, exercise, workout, workout exercise and set from the open
store into the destination, keeping IDs and timestamps.

The destination is a Postgres URL or a SQLite file path. It should be empty:
the copy runs in one transaction and fails without changes if any row
already exists there.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateTo == "" {
			return fmt.Errorf("--to is required")
		}
		ctx := cmd.Context()

		var dst *storage.DB
		var err error
		if isPostgresURL(migrateTo) {
			dst, err = storage.OpenPostgres(ctx, migrateTo, cfg.StorageOptions(logger))
		} else {
			dst, err = storage.Open(migrateTo, cfg.StorageOptions(logger))
		}
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer dst.Close()

		summary, err := storage.MigrateData(ctx, repo, dst)
		if err != nil {
			return err
		}

		color.Green("✓ Copied to %s", dst.Dialect())
		fmt.Printf("  Users: %d\n", summary.Users)
		fmt.Printf("  Exercises: %d\n", summary.Exercises)
		fmt.Printf("  Workouts: %d\n", summary.Workouts)
		fmt.Printf("  Workout exercises: %d\n", summary.WorkoutExercises)
		fmt.Printf("  Sets: %d\n", summary.Sets)
		return nil
	},
}

func postgresURL() (string, error) {
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("a Postgres URL is required: use --database-url or GYMLOG_DATABASE_URL")
	}
	return cfg.DatabaseURL, nil
}

func isPostgresURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

func init() {
	migrateCopyCmd.Flags().StringVar(&migrateTo, "to", "", "destination Postgres URL or SQLite path")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
	migrateCmd.AddCommand(migrateCopyCmd)
	rootCmd.AddCommand(migrateCmd)
}
