// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines users, exercises, workouts, workout_exercises and sets with cascading FKs.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Table names, parents before children.
const (
	TableUsers            = "users"
	TableExercises        = "exercises"
	TableWorkouts         = "workouts"
	TableWorkoutExercises = "workout_exercises"
	TableSets             = "sets"
)

// Tables lists every table in dependency order.
var Tables = []string{TableUsers, TableExercises, TableWorkouts, TableWorkoutExercises, TableSets}

// IdentityIndexName is the optional unique index on users.clerk_user_id.
const IdentityIndexName = "idx_users_clerk_user_id"

// sqliteUUID generates a random (version 4) UUID in SQL for rows inserted
// without an id.
const sqliteUUID = `(lower(hex(randomblob(4))) || '-' || lower(hex(randomblob(2))) || '-4' ||
	substr(lower(hex(randomblob(2))), 2) || '-' ||
	substr('89ab', 1 + (abs(random()) % 4), 1) || substr(lower(hex(randomblob(2))), 2) || '-' ||
	lower(hex(randomblob(6))))`

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY NOT NULL DEFAULT {{uuid}},
		clerk_user_id TEXT NOT NULL,
		email TEXT,
		username TEXT,
		first_name TEXT,
		last_name TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS exercises (
		id TEXT PRIMARY KEY NOT NULL DEFAULT {{uuid}},
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS workouts (
		id TEXT PRIMARY KEY NOT NULL DEFAULT {{uuid}},
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		date DATE NOT NULL,
		started_at DATETIME,
		completed_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS workout_exercises (
		id TEXT PRIMARY KEY NOT NULL DEFAULT {{uuid}},
		workout_id TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
		exercise_id TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
		"order" INTEGER DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- weight holds the canonical NUMERIC(6,2) text so values round-trip exactly
	CREATE TABLE IF NOT EXISTS sets (
		id TEXT PRIMARY KEY NOT NULL DEFAULT {{uuid}},
		workout_exercise_id TEXT NOT NULL REFERENCES workout_exercises(id) ON DELETE CASCADE,
		set_number INTEGER NOT NULL,
		weight TEXT,
		reps INTEGER,
		completed BOOLEAN DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_workouts_user_date ON workouts(user_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_workout_exercises_workout ON workout_exercises(workout_id, "order");
	CREATE INDEX IF NOT EXISTS idx_workout_exercises_exercise ON workout_exercises(exercise_id);
	CREATE INDEX IF NOT EXISTS idx_sets_workout_exercise ON sets(workout_exercise_id, set_number);
	`

// initSchema creates or updates the SQLite schema.
func (d *DB) initSchema(ctx context.Context) error {
	schema := strings.ReplaceAll(sqliteSchema, "{{uuid}}", sqliteUUID)
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return err
	}
	return d.applyIdentityIndex(ctx)
}

// applyIdentityIndex creates or drops the unique identity index to match
// Options.EnforceUniqueIdentity.
func (d *DB) applyIdentityIndex(ctx context.Context) error {
	if !d.opts.EnforceUniqueIdentity {
		if _, err := d.db.ExecContext(ctx, "DROP INDEX IF EXISTS "+IdentityIndexName); err != nil {
			return fmt.Errorf("drop identity index: %w", err)
		}
		return nil
	}

	var dup string
	err := d.db.QueryRowContext(ctx, `
		SELECT clerk_user_id FROM users
		GROUP BY clerk_user_id
		HAVING COUNT(*) > 1
		LIMIT 1
	`).Scan(&dup)
	switch {
	case err == nil:
		return fmt.Errorf("%w: cannot enforce unique identity, %q is linked to several users", ErrDuplicateIdentity, dup)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check duplicate identities: %w", err)
	}

	stmt := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON users(clerk_user_id)", IdentityIndexName)
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create identity index: %w", err)
	}
	return nil
}

// UniqueIdentityEnforced reports whether the store rejects duplicate clerk_user_id values.
func (d *DB) UniqueIdentityEnforced() bool {
	return d.opts.EnforceUniqueIdentity
}
