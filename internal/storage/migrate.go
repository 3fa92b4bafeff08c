// ABOUTME: Postgres schema migrations and data migration between stores.
// ABOUTME: Migrations are embedded SQL files applied with golang-migrate.
package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator returns a migrate instance for the embedded Postgres migrations.
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies all pending migrations. It is a no-op when the
// schema is already current.
func RunMigrations(databaseURL string) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Users            int
	Exercises        int
	Workouts         int
	WorkoutExercises int
	Sets             int
}

// MigrateData copies all data from src to dst, parents before children,
// keeping IDs and timestamps. The destination should be empty.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	data, err := src.GetAllData(ctx)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	if err := dst.ImportData(ctx, data); err != nil {
		return nil, fmt.Errorf("write destination: %w", err)
	}

	summary := &MigrateSummary{
		Users:     len(data.Users),
		Exercises: len(data.Exercises),
	}
	for _, u := range data.Users {
		summary.Workouts += len(u.Workouts)
		for _, w := range u.Workouts {
			summary.WorkoutExercises += len(w.WorkoutExercises)
			for _, we := range w.WorkoutExercises {
				summary.Sets += len(we.Sets)
			}
		}
	}
	return summary, nil
}
