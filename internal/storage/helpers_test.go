// ABOUTME: Shared test helpers for storage tests.
// ABOUTME: Provides setupTestDB and a seeded user/workout/exercise/set lineage.
package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	return setupTestDBWithOptions(t, Options{})
}

func setupTestDBWithOptions(t *testing.T, opts Options) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbPath, opts)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// lineage is one row in every table, linked parent to child.
type lineage struct {
	User            *models.User
	Workout         *models.Workout
	Exercise        *models.Exercise
	WorkoutExercise *models.WorkoutExercise
	Set             *models.Set
}

func seedLineage(t *testing.T, db *DB, clerkID string) *lineage {
	t.Helper()
	ctx := context.Background()

	u := models.NewUser(clerkID).WithEmail(clerkID + "@example.com")
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	date, err := models.ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	w := models.NewWorkout(u.ID, "Leg Day").WithDate(date)
	if err := db.CreateWorkout(ctx, w); err != nil {
		t.Fatalf("CreateWorkout failed: %v", err)
	}

	e := models.NewExercise("Squat " + clerkID)
	if err := db.CreateExercise(ctx, e); err != nil {
		t.Fatalf("CreateExercise failed: %v", err)
	}

	we := models.NewWorkoutExercise(w.ID, e.ID).WithOrder(0)
	if err := db.AddWorkoutExercise(ctx, we); err != nil {
		t.Fatalf("AddWorkoutExercise failed: %v", err)
	}

	s := models.NewSet(we.ID, 1).WithWeight(decimal.RequireFromString("100.00")).WithReps(5)
	if err := db.AddSet(ctx, s); err != nil {
		t.Fatalf("AddSet failed: %v", err)
	}

	return &lineage{User: u, Workout: w, Exercise: e, WorkoutExercise: we, Set: s}
}
