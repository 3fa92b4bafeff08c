// ABOUTME: Tests for cascading deletes across the five tables.
// ABOUTME: Deleting any parent must leave no orphaned children behind.
package storage

import (
	"context"
	"testing"
)

func TestDeleteUserCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	l := seedLineage(t, db, "user_cascade")
	other := seedLineage(t, db, "user_survivor")

	if err := db.DeleteUser(ctx, l.User.ID.String()); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := db.GetWorkout(ctx, l.Workout.ID.String()); !IsNotFound(err) {
		t.Errorf("workout should be gone, got %v", err)
	}
	if _, err := db.GetWorkoutExercise(ctx, l.WorkoutExercise.ID.String()); !IsNotFound(err) {
		t.Errorf("workout exercise should be gone, got %v", err)
	}
	if _, err := db.GetSet(ctx, l.Set.ID.String()); !IsNotFound(err) {
		t.Errorf("set should be gone, got %v", err)
	}

	// Exercises are not owned by users.
	if _, err := db.GetExercise(ctx, l.Exercise.ID.String()); err != nil {
		t.Errorf("exercise should survive user deletion: %v", err)
	}

	counts, err := db.CountRows(ctx)
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	want := map[string]int{
		TableUsers:            1,
		TableExercises:        2,
		TableWorkouts:         1,
		TableWorkoutExercises: 1,
		TableSets:             1,
	}
	for table, n := range want {
		if counts[table] != n {
			t.Errorf("%s count = %d, want %d", table, counts[table], n)
		}
	}

	if _, err := db.GetSet(ctx, other.Set.ID.String()); err != nil {
		t.Errorf("unrelated set should survive: %v", err)
	}
}

func TestDeleteParentsCascade(t *testing.T) {
	tests := []struct {
		name   string
		delete func(ctx context.Context, db *DB, l *lineage) error
		gone   []string
	}{
		{
			name: "exercise",
			delete: func(ctx context.Context, db *DB, l *lineage) error {
				return db.DeleteExercise(ctx, l.Exercise.ID.String())
			},
			gone: []string{TableExercises, TableWorkoutExercises, TableSets},
		},
		{
			name: "workout",
			delete: func(ctx context.Context, db *DB, l *lineage) error {
				return db.DeleteWorkout(ctx, l.Workout.ID.String()[:8])
			},
			gone: []string{TableWorkouts, TableWorkoutExercises, TableSets},
		},
		{
			name: "workout exercise",
			delete: func(ctx context.Context, db *DB, l *lineage) error {
				return db.DeleteWorkoutExercise(ctx, l.WorkoutExercise.ID.String())
			},
			gone: []string{TableWorkoutExercises, TableSets},
		},
		{
			name: "set",
			delete: func(ctx context.Context, db *DB, l *lineage) error {
				return db.DeleteSet(ctx, l.Set.ID.String())
			},
			gone: []string{TableSets},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			ctx := context.Background()
			l := seedLineage(t, db, "user_"+tt.name)

			if err := tt.delete(ctx, db, l); err != nil {
				t.Fatalf("delete failed: %v", err)
			}

			counts, err := db.CountRows(ctx)
			if err != nil {
				t.Fatalf("CountRows failed: %v", err)
			}
			gone := make(map[string]bool)
			for _, table := range tt.gone {
				gone[table] = true
			}
			for _, table := range Tables {
				want := 1
				if gone[table] {
					want = 0
				}
				if counts[table] != want {
					t.Errorf("%s count = %d, want %d", table, counts[table], want)
				}
			}
		})
	}
}
