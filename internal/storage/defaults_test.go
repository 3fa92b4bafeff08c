// ABOUTME: Tests for rows written by plain SQL that rely on the column defaults.
// ABOUTME: Covers generated IDs and timestamps, and ordering against app-written rows.
package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

// rawInsert runs an INSERT that leaves id and timestamps to the schema
// and returns the generated id.
func rawInsert(t *testing.T, db *DB, table, insert string, args ...any) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	result, err := db.exec(ctx, insert, args...)
	if err != nil {
		t.Fatalf("raw insert into %s failed: %v", table, err)
	}
	rowID, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId failed: %v", err)
	}

	var idText string
	if err := db.queryRow(ctx, "SELECT id FROM "+table+" WHERE rowid = ?", rowID).Scan(&idText); err != nil {
		t.Fatalf("read generated id from %s: %v", table, err)
	}
	id, err := uuid.Parse(idText)
	if err != nil {
		t.Fatalf("generated %s id %q is not a UUID: %v", table, idText, err)
	}
	if id.Version() != 4 {
		t.Errorf("generated %s id %s has version %d, want 4", table, id, id.Version())
	}
	return id
}

func TestRowsInsertedWithDefaults(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedLineage(t, db, "user_app")

	userID := rawInsert(t, db, TableUsers, `INSERT INTO users (clerk_user_id) VALUES (?)`, "user_raw")
	weID := rawInsert(t, db, TableWorkoutExercises,
		`INSERT INTO workout_exercises (workout_id, exercise_id) VALUES (?, ?)`,
		l.Workout.ID.String(), l.Exercise.ID.String())
	setID := rawInsert(t, db, TableSets,
		`INSERT INTO sets (workout_exercise_id, set_number) VALUES (?, ?)`, weID.String(), 1)

	u, err := db.GetUser(ctx, userID.String())
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Errorf("expected generated timestamps, got created=%v updated=%v", u.CreatedAt, u.UpdatedAt)
	}

	we, err := db.GetWorkoutExercise(ctx, weID.String())
	if err != nil {
		t.Fatalf("GetWorkoutExercise failed: %v", err)
	}
	if we.Order != 0 {
		t.Errorf("order = %d, want 0", we.Order)
	}
	if we.CreatedAt.IsZero() {
		t.Error("workout exercise created_at not generated")
	}

	s, err := db.GetSet(ctx, setID.String())
	if err != nil {
		t.Fatalf("GetSet failed: %v", err)
	}
	if !s.Completed {
		t.Error("completed should default to true")
	}
	if s.Weight != nil || s.Reps != nil {
		t.Errorf("weight and reps should be NULL, got %v %v", s.Weight, s.Reps)
	}

	before := u.UpdatedAt
	u.WithEmail("raw@example.com")
	if err := db.UpdateUser(ctx, u); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	stored, err := db.GetUser(ctx, userID.String())
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if !stored.UpdatedAt.After(before) {
		t.Errorf("updated_at did not advance: %v -> %v", before, stored.UpdatedAt)
	}
	if !stored.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("created_at changed: %v -> %v", u.CreatedAt, stored.CreatedAt)
	}
}

func TestDefaultTimestampsSortWithAppTimestamps(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	rawID := rawInsert(t, db, TableUsers, `INSERT INTO users (clerk_user_id) VALUES (?)`, "user_shared")
	raw, err := db.GetUser(ctx, rawID.String())
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}

	// Same calendar day as the default-stamped row, on either side of it.
	older := models.NewUser("user_shared")
	older.CreatedAt = raw.CreatedAt.Add(-time.Second).Add(250 * time.Millisecond)
	if err := db.CreateUser(ctx, older); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	newer := models.NewUser("user_newer")
	newer.CreatedAt = raw.CreatedAt.Add(500 * time.Millisecond)
	if err := db.CreateUser(ctx, newer); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	users, err := db.ListUsers(ctx, 0)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	want := []uuid.UUID{newer.ID, rawID, older.ID}
	if len(users) != len(want) {
		t.Fatalf("expected %d users, got %d", len(want), len(users))
	}
	for i, id := range want {
		if users[i].ID != id {
			t.Errorf("position %d: got %s (%s), want %s", i, users[i].ClerkUserID, users[i].CreatedAt, id)
		}
	}

	oldest, err := db.GetUserByClerkID(ctx, "user_shared")
	if err != nil {
		t.Fatalf("GetUserByClerkID failed: %v", err)
	}
	if oldest.ID != older.ID {
		t.Errorf("GetUserByClerkID returned %s, want the older app-written user", oldest.ID)
	}
}
