// ABOUTME: Tests for Repository interface implementations.
// ABOUTME: Verifies CRUD, prefix lookup and timestamp rules for every table using SQLite.
package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/shopspring/decimal"
)

func TestCreateAndGetUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := models.NewUser("user_2abc").WithEmail("a@example.com").WithName("Ada", "Lovelace")
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := db.GetUser(ctx, u.ID.String())
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID mismatch: got %v, want %v", got.ID, u.ID)
	}
	if got.ClerkUserID != "user_2abc" {
		t.Errorf("ClerkUserID = %q, want %q", got.ClerkUserID, "user_2abc")
	}
	if got.Email == nil || *got.Email != "a@example.com" {
		t.Errorf("Email mismatch: got %v", got.Email)
	}
	if got.Username != nil {
		t.Errorf("Username should be nil, got %v", *got.Username)
	}
	if got.DisplayName() != "Ada Lovelace" {
		t.Errorf("DisplayName = %q, want %q", got.DisplayName(), "Ada Lovelace")
	}
	if !got.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", got.CreatedAt, u.CreatedAt)
	}
}

func TestCreateGeneratesIDAndTimestamps(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := &models.User{ClerkUserID: "user_bare"}
	before := time.Now().Add(-time.Second)
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if u.ID == uuid.Nil {
		t.Error("expected generated ID")
	}
	if u.CreatedAt.Before(before) {
		t.Errorf("CreatedAt %v not populated with the current time", u.CreatedAt)
	}
	if !u.UpdatedAt.Equal(u.CreatedAt) {
		t.Errorf("UpdatedAt %v should equal CreatedAt %v on insert", u.UpdatedAt, u.CreatedAt)
	}

	w := &models.Workout{UserID: u.ID, Name: "No Date"}
	if err := db.CreateWorkout(ctx, w); err != nil {
		t.Fatalf("CreateWorkout failed: %v", err)
	}
	got, err := db.GetWorkout(ctx, w.ID.String())
	if err != nil {
		t.Fatalf("GetWorkout failed: %v", err)
	}
	if got.DateString() != w.CreatedAt.Format(models.DateLayout) {
		t.Errorf("Date = %s, want creation date %s", got.DateString(), w.CreatedAt.Format(models.DateLayout))
	}
}

func TestGetByPrefix(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u := models.NewUser("user_prefix")
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := db.GetUser(ctx, u.ID.String()[:8])
	if err != nil {
		t.Fatalf("GetUser by prefix failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID mismatch: got %v, want %v", got.ID, u.ID)
	}
}

func TestAmbiguousPrefix(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, id := range []string{
		"abcd0000-0000-4000-8000-000000000001",
		"abcd0000-0000-4000-8000-000000000002",
	} {
		e := models.NewExercise("Exercise " + id[len(id)-1:])
		e.ID = uuid.MustParse(id)
		if err := db.CreateExercise(ctx, e); err != nil {
			t.Fatalf("CreateExercise failed: %v", err)
		}
	}

	_, err := db.GetExercise(ctx, "abcd")
	if !errors.Is(err, ErrAmbiguousPrefix) {
		t.Errorf("expected ErrAmbiguousPrefix, got %v", err)
	}

	got, err := db.GetExercise(ctx, "abcd0000-0000-4000-8000-0000000000")
	if !errors.Is(err, ErrAmbiguousPrefix) {
		t.Errorf("expected ErrAmbiguousPrefix for long prefix, got %v (%v)", err, got)
	}

	got, err = db.GetExercise(ctx, "ABCD0000-0000-4000-8000-000000000002")
	if err != nil {
		t.Fatalf("GetExercise with upper-case ID failed: %v", err)
	}
	if got.Name != "Exercise 2" {
		t.Errorf("Name = %q, want %q", got.Name, "Exercise 2")
	}
}

func TestGetNotFound(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name string
		get  func() error
	}{
		{"user", func() error { _, err := db.GetUser(ctx, uuid.NewString()); return err }},
		{"exercise prefix", func() error { _, err := db.GetExercise(ctx, "ffff"); return err }},
		{"workout garbage", func() error { _, err := db.GetWorkout(ctx, "not-an-id!"); return err }},
		{"workout exercise", func() error { _, err := db.GetWorkoutExercise(ctx, uuid.NewString()); return err }},
		{"set", func() error { _, err := db.GetSet(ctx, uuid.NewString()); return err }},
		{"clerk id", func() error { _, err := db.GetUserByClerkID(ctx, "nobody"); return err }},
		{"exercise name", func() error { _, err := db.FindExerciseByName(ctx, "nothing"); return err }},
		{"delete", func() error { return db.DeleteUser(ctx, uuid.NewString()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.get(); !IsNotFound(err) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestUpdateAdvancesUpdatedAt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedLineage(t, db, "user_update")

	createdAt := l.User.CreatedAt
	prev := l.User.UpdatedAt
	for i := 0; i < 3; i++ {
		l.User.WithUsername("lifter")
		if err := db.UpdateUser(ctx, l.User); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		if !l.User.UpdatedAt.After(prev) {
			t.Fatalf("update %d: UpdatedAt %v not after %v", i, l.User.UpdatedAt, prev)
		}
		prev = l.User.UpdatedAt
	}

	got, err := db.GetUser(ctx, l.User.ID.String())
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if !got.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt changed: got %v, want %v", got.CreatedAt, createdAt)
	}
	if !got.UpdatedAt.Equal(prev) {
		t.Errorf("stored UpdatedAt = %v, want %v", got.UpdatedAt, prev)
	}

	// Every table advances the same way.
	e := l.Exercise
	e.Name = "Back Squat"
	before := e.UpdatedAt
	if err := db.UpdateExercise(ctx, e); err != nil {
		t.Fatalf("UpdateExercise failed: %v", err)
	}
	if !e.UpdatedAt.After(before) {
		t.Errorf("exercise UpdatedAt did not advance")
	}

	w := l.Workout
	before = w.UpdatedAt
	w.WithCompletedAt(time.Now())
	if err := db.UpdateWorkout(ctx, w); err != nil {
		t.Fatalf("UpdateWorkout failed: %v", err)
	}
	if !w.UpdatedAt.After(before) {
		t.Errorf("workout UpdatedAt did not advance")
	}

	we := l.WorkoutExercise
	before = we.UpdatedAt
	we.Order = 3
	if err := db.UpdateWorkoutExercise(ctx, we); err != nil {
		t.Fatalf("UpdateWorkoutExercise failed: %v", err)
	}
	if !we.UpdatedAt.After(before) {
		t.Errorf("workout exercise UpdatedAt did not advance")
	}

	s := l.Set
	before = s.UpdatedAt
	s.WithReps(6)
	if err := db.UpdateSet(ctx, s); err != nil {
		t.Fatalf("UpdateSet failed: %v", err)
	}
	if !s.UpdatedAt.After(before) {
		t.Errorf("set UpdatedAt did not advance")
	}
}

func TestUpdateMissingRow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e := models.NewExercise("Ghost")
	if err := db.UpdateExercise(ctx, e); !IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestForeignKeyViolations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	w := models.NewWorkout(uuid.New(), "Orphan")
	if err := db.CreateWorkout(ctx, w); !errors.Is(err, ErrForeignKey) {
		t.Errorf("CreateWorkout with missing user: expected ErrForeignKey, got %v", err)
	}

	we := models.NewWorkoutExercise(uuid.New(), uuid.New())
	if err := db.AddWorkoutExercise(ctx, we); !errors.Is(err, ErrForeignKey) {
		t.Errorf("AddWorkoutExercise with missing parents: expected ErrForeignKey, got %v", err)
	}

	s := models.NewSet(uuid.New(), 1)
	if err := db.AddSet(ctx, s); !errors.Is(err, ErrForeignKey) {
		t.Errorf("AddSet with missing workout exercise: expected ErrForeignKey, got %v", err)
	}
}

func TestCreateDuplicatePrimaryKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	e := models.NewExercise("Bench")
	if err := db.CreateExercise(ctx, e); err != nil {
		t.Fatalf("CreateExercise failed: %v", err)
	}
	dup := models.NewExercise("Bench Again")
	dup.ID = e.ID
	if err := db.CreateExercise(ctx, dup); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestListUsersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i, clerk := range []string{"old", "mid", "new"} {
		u := models.NewUser(clerk)
		u.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		u.UpdatedAt = u.CreatedAt
		if err := db.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	users, err := db.ListUsers(ctx, 0)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if users[0].ClerkUserID != "new" || users[2].ClerkUserID != "old" {
		t.Errorf("unexpected order: %s, %s, %s", users[0].ClerkUserID, users[1].ClerkUserID, users[2].ClerkUserID)
	}

	limited, err := db.ListUsers(ctx, 2)
	if err != nil {
		t.Fatalf("ListUsers with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 users with limit, got %d", len(limited))
	}
}

func TestEnsureUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	u, created, err := db.EnsureUser(ctx, models.NewUser("user_ensure").WithEmail("first@example.com"))
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	if !created {
		t.Error("expected first EnsureUser to create a user")
	}

	again, created, err := db.EnsureUser(ctx, models.NewUser("user_ensure").WithUsername("squatter"))
	if err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	if created {
		t.Error("expected second EnsureUser to reuse the user")
	}
	if again.ID != u.ID {
		t.Errorf("ID mismatch: got %v, want %v", again.ID, u.ID)
	}
	if again.Username == nil || *again.Username != "squatter" {
		t.Errorf("Username not merged: %v", again.Username)
	}
	if again.Email == nil || *again.Email != "first@example.com" {
		t.Errorf("Email lost on merge: %v", again.Email)
	}
	if !again.UpdatedAt.After(u.CreatedAt) {
		t.Errorf("UpdatedAt should advance after profile merge")
	}
}

func TestExerciseFindByNameAndList(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"squat", "Bench Press", "Deadlift"} {
		if err := db.CreateExercise(ctx, models.NewExercise(name)); err != nil {
			t.Fatalf("CreateExercise failed: %v", err)
		}
	}

	got, err := db.FindExerciseByName(ctx, "BENCH press")
	if err != nil {
		t.Fatalf("FindExerciseByName failed: %v", err)
	}
	if got.Name != "Bench Press" {
		t.Errorf("Name = %q, want %q", got.Name, "Bench Press")
	}

	list, err := db.ListExercises(ctx, 0)
	if err != nil {
		t.Fatalf("ListExercises failed: %v", err)
	}
	want := []string{"Bench Press", "Deadlift", "squat"}
	if len(list) != len(want) {
		t.Fatalf("expected %d exercises, got %d", len(want), len(list))
	}
	for i, name := range want {
		if list[i].Name != name {
			t.Errorf("exercise %d = %q, want %q", i, list[i].Name, name)
		}
	}
}

func TestListWorkoutsFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice := models.NewUser("alice")
	bob := models.NewUser("bob")
	for _, u := range []*models.User{alice, bob} {
		if err := db.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	for _, tc := range []struct {
		user *models.User
		date string
	}{
		{alice, "2024-01-01"},
		{alice, "2024-01-05"},
		{alice, "2024-02-01"},
		{bob, "2024-01-03"},
	} {
		d, _ := models.ParseDate(tc.date)
		w := models.NewWorkout(tc.user.ID, "Session "+tc.date).WithDate(d)
		if err := db.CreateWorkout(ctx, w); err != nil {
			t.Fatalf("CreateWorkout failed: %v", err)
		}
	}

	from, _ := models.ParseDate("2024-01-02")
	to, _ := models.ParseDate("2024-01-31")

	tests := []struct {
		name   string
		filter WorkoutFilter
		want   []string
	}{
		{"all", WorkoutFilter{}, []string{"2024-02-01", "2024-01-05", "2024-01-03", "2024-01-01"}},
		{"user", WorkoutFilter{UserID: &alice.ID}, []string{"2024-02-01", "2024-01-05", "2024-01-01"}},
		{"range", WorkoutFilter{From: &from, To: &to}, []string{"2024-01-05", "2024-01-03"}},
		{"user and limit", WorkoutFilter{UserID: &alice.ID, Limit: 1}, []string{"2024-02-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workouts, err := db.ListWorkouts(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListWorkouts failed: %v", err)
			}
			if len(workouts) != len(tt.want) {
				t.Fatalf("expected %d workouts, got %d", len(tt.want), len(workouts))
			}
			for i, date := range tt.want {
				if workouts[i].DateString() != date {
					t.Errorf("workout %d date = %s, want %s", i, workouts[i].DateString(), date)
				}
			}
		})
	}
}

func TestWorkoutExercisesOrdered(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedLineage(t, db, "user_order")

	bench := models.NewExercise("Bench")
	if err := db.CreateExercise(ctx, bench); err != nil {
		t.Fatalf("CreateExercise failed: %v", err)
	}
	// Same exercise twice in one workout is allowed.
	for _, order := range []int{2, 1} {
		we := models.NewWorkoutExercise(l.Workout.ID, bench.ID).WithOrder(order)
		if err := db.AddWorkoutExercise(ctx, we); err != nil {
			t.Fatalf("AddWorkoutExercise failed: %v", err)
		}
	}

	entries, err := db.ListWorkoutExercises(ctx, l.Workout.ID)
	if err != nil {
		t.Fatalf("ListWorkoutExercises failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []int{0, 1, 2} {
		if entries[i].Order != want {
			t.Errorf("entry %d order = %d, want %d", i, entries[i].Order, want)
		}
	}
}

func TestSetWeightPrecision(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedLineage(t, db, "user_weight")

	tests := []struct {
		name    string
		weight  string
		want    string
		wantErr bool
	}{
		{"exact", "82.50", "82.50", false},
		{"rounded", "82.345", "82.35", false},
		{"integer", "140", "140.00", false},
		{"max", "9999.99", "9999.99", false},
		{"too large", "10000", "", true},
		{"rounds over max", "9999.995", "", true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := models.NewSet(l.WorkoutExercise.ID, i+2).WithWeight(decimal.RequireFromString(tt.weight)).WithReps(5)
			err := db.AddSet(ctx, s)
			if tt.wantErr {
				if !errors.Is(err, models.ErrWeightOutOfRange) {
					t.Errorf("expected ErrWeightOutOfRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddSet failed: %v", err)
			}

			got, err := db.GetSet(ctx, s.ID.String())
			if err != nil {
				t.Fatalf("GetSet failed: %v", err)
			}
			if got.Weight == nil || got.Weight.StringFixed(2) != tt.want {
				t.Errorf("Weight = %v, want %s", got.Weight, tt.want)
			}
		})
	}
}

func TestSetOptionalFields(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := seedLineage(t, db, "user_optional")

	s := models.NewSet(l.WorkoutExercise.ID, 2).WithCompleted(false)
	if err := db.AddSet(ctx, s); err != nil {
		t.Fatalf("AddSet failed: %v", err)
	}

	got, err := db.GetSet(ctx, s.ID.String())
	if err != nil {
		t.Fatalf("GetSet failed: %v", err)
	}
	if got.Weight != nil || got.Reps != nil {
		t.Errorf("expected nil weight and reps, got %v and %v", got.Weight, got.Reps)
	}
	if got.Completed {
		t.Error("expected Completed to be false")
	}

	sets, err := db.ListSets(ctx, l.WorkoutExercise.ID)
	if err != nil {
		t.Fatalf("ListSets failed: %v", err)
	}
	if len(sets) != 2 || sets[0].SetNumber != 1 || sets[1].SetNumber != 2 {
		t.Errorf("unexpected set order: %+v", sets)
	}
}

func TestCountRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedLineage(t, db, "user_count")

	counts, err := db.CountRows(ctx)
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	for _, table := range Tables {
		if counts[table] != 1 {
			t.Errorf("%s count = %d, want 1", table, counts[table])
		}
	}
}
