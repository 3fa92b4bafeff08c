// ABOUTME: Relationship declarations and eager loaders between the five tables.
// ABOUTME: Each relation level costs one query, independent of the number of parents.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

// Cardinality of a relation as seen from its source table.
type Cardinality string

const (
	One  Cardinality = "one"
	Many Cardinality = "many"
)

// Relation declares how to traverse from rows of Table to related rows of
// Target. For One relations Column is the foreign key on Table; for Many
// relations it is the foreign key on Target pointing back at Table.
type Relation struct {
	Table       string
	Name        string
	Cardinality Cardinality
	Target      string
	Column      string
}

// ForeignKeyTable returns the table that carries the foreign key column.
func (r Relation) ForeignKeyTable() string {
	if r.Cardinality == One {
		return r.Table
	}
	return r.Target
}

// Relations lists every traversal the loaders below support. Each one is
// backed by a foreign key declared in the schema.
var Relations = []Relation{
	{Table: TableUsers, Name: "workouts", Cardinality: Many, Target: TableWorkouts, Column: "user_id"},
	{Table: TableWorkouts, Name: "user", Cardinality: One, Target: TableUsers, Column: "user_id"},
	{Table: TableWorkouts, Name: "workoutExercises", Cardinality: Many, Target: TableWorkoutExercises, Column: "workout_id"},
	{Table: TableExercises, Name: "workoutExercises", Cardinality: Many, Target: TableWorkoutExercises, Column: "exercise_id"},
	{Table: TableWorkoutExercises, Name: "workout", Cardinality: One, Target: TableWorkouts, Column: "workout_id"},
	{Table: TableWorkoutExercises, Name: "exercise", Cardinality: One, Target: TableExercises, Column: "exercise_id"},
	{Table: TableWorkoutExercises, Name: "sets", Cardinality: Many, Target: TableSets, Column: "workout_exercise_id"},
	{Table: TableSets, Name: "workoutExercise", Cardinality: One, Target: TableWorkoutExercises, Column: "workout_exercise_id"},
}

// GetUserWithWorkouts loads a user and all their workouts, newest first.
func (d *DB) GetUserWithWorkouts(ctx context.Context, idOrPrefix string) (*models.User, error) {
	u, err := d.GetUser(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	workouts, err := d.ListWorkouts(ctx, WorkoutFilter{UserID: &u.ID})
	if err != nil {
		return nil, fmt.Errorf("load user workouts: %w", err)
	}
	u.Workouts = workouts
	return u, nil
}

// GetWorkoutWithUser loads a workout and its owner.
func (d *DB) GetWorkoutWithUser(ctx context.Context, idOrPrefix string) (*models.Workout, error) {
	w, err := d.GetWorkout(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	u, err := d.GetUser(ctx, w.UserID.String())
	if err != nil {
		return nil, fmt.Errorf("load workout user: %w", err)
	}
	w.User = u
	return w, nil
}

// GetWorkoutDetail loads a workout with its owner and its exercises in
// order, each with the exercise definition and its sets by set number.
func (d *DB) GetWorkoutDetail(ctx context.Context, idOrPrefix string) (*models.Workout, error) {
	w, err := d.GetWorkout(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}
	if err := d.attachWorkoutDetails(ctx, []*models.Workout{w}); err != nil {
		return nil, err
	}
	return w, nil
}

// GetExerciseWithWorkoutExercises loads an exercise and every workout entry
// that used it, each with its workout, most recent workout first.
func (d *DB) GetExerciseWithWorkoutExercises(ctx context.Context, idOrPrefix string) (*models.Exercise, error) {
	e, err := d.GetExercise(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + qualify("we", workoutExerciseColumns) + `
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.exercise_id = ?
		ORDER BY w.date DESC, we."order" ASC, we.created_at ASC
	`
	rows, err := d.query(ctx, query, e.ID.String())
	if err != nil {
		return nil, fmt.Errorf("load exercise entries: %w", err)
	}
	entries, err := scanWorkoutExercises(rows)
	_ = rows.Close()
	if err != nil {
		return nil, err
	}

	workoutIDs := make([]uuid.UUID, 0, len(entries))
	for _, we := range entries {
		workoutIDs = append(workoutIDs, we.WorkoutID)
	}
	workouts, err := d.workoutsByID(ctx, workoutIDs)
	if err != nil {
		return nil, err
	}
	for _, we := range entries {
		we.Workout = workouts[we.WorkoutID]
	}

	e.WorkoutExercises = entries
	return e, nil
}

// GetWorkoutExerciseWithRelations loads a workout exercise with its workout,
// exercise and sets.
func (d *DB) GetWorkoutExerciseWithRelations(ctx context.Context, idOrPrefix string) (*models.WorkoutExercise, error) {
	we, err := d.GetWorkoutExercise(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	w, err := d.GetWorkout(ctx, we.WorkoutID.String())
	if err != nil {
		return nil, fmt.Errorf("load workout: %w", err)
	}
	we.Workout = w

	if err := d.attachExercisesAndSets(ctx, []*models.WorkoutExercise{we}); err != nil {
		return nil, err
	}
	return we, nil
}

// GetSetWithWorkoutExercise loads a set and the workout exercise it belongs to.
func (d *DB) GetSetWithWorkoutExercise(ctx context.Context, idOrPrefix string) (*models.Set, error) {
	s, err := d.GetSet(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	we, err := d.GetWorkoutExercise(ctx, s.WorkoutExerciseID.String())
	if err != nil {
		return nil, fmt.Errorf("load workout exercise: %w", err)
	}
	s.WorkoutExercise = we
	return s, nil
}

// attachWorkoutDetails fills User and WorkoutExercises (with Exercise and
// Sets) on every workout using one query per relation level.
func (d *DB) attachWorkoutDetails(ctx context.Context, workouts []*models.Workout) error {
	if len(workouts) == 0 {
		return nil
	}

	workoutIDs := make([]uuid.UUID, 0, len(workouts))
	userIDs := make([]uuid.UUID, 0, len(workouts))
	for _, w := range workouts {
		workoutIDs = append(workoutIDs, w.ID)
		userIDs = append(userIDs, w.UserID)
	}

	users, err := d.usersByID(ctx, userIDs)
	if err != nil {
		return err
	}

	query := `
		SELECT ` + workoutExerciseColumns + `
		FROM workout_exercises
		WHERE workout_id IN (` + placeholders(len(workoutIDs)) + `)
		ORDER BY "order" ASC, created_at ASC
	`
	rows, err := d.query(ctx, query, idArgs(workoutIDs)...)
	if err != nil {
		return fmt.Errorf("load workout exercises: %w", err)
	}
	entries, err := scanWorkoutExercises(rows)
	_ = rows.Close()
	if err != nil {
		return err
	}
	if err := d.attachExercisesAndSets(ctx, entries); err != nil {
		return err
	}

	byWorkout := make(map[uuid.UUID][]*models.WorkoutExercise, len(workouts))
	for _, we := range entries {
		byWorkout[we.WorkoutID] = append(byWorkout[we.WorkoutID], we)
	}
	for _, w := range workouts {
		w.User = users[w.UserID]
		w.WorkoutExercises = byWorkout[w.ID]
	}
	return nil
}

// attachExercisesAndSets fills Exercise and Sets on each entry with two queries.
func (d *DB) attachExercisesAndSets(ctx context.Context, entries []*models.WorkoutExercise) error {
	if len(entries) == 0 {
		return nil
	}

	exerciseIDs := make([]uuid.UUID, 0, len(entries))
	entryIDs := make([]uuid.UUID, 0, len(entries))
	for _, we := range entries {
		exerciseIDs = append(exerciseIDs, we.ExerciseID)
		entryIDs = append(entryIDs, we.ID)
	}

	exercises, err := d.exercisesByID(ctx, exerciseIDs)
	if err != nil {
		return err
	}
	sets, err := d.setsByWorkoutExercise(ctx, entryIDs)
	if err != nil {
		return err
	}

	for _, we := range entries {
		we.Exercise = exercises[we.ExerciseID]
		we.Sets = sets[we.ID]
	}
	return nil
}

func (d *DB) exercisesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Exercise, error) {
	result := make(map[uuid.UUID]*models.Exercise, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + exerciseColumns + ` FROM exercises WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := d.query(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("load exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		result[e.ID] = e
	}
	return result, rows.Err()
}

func (d *DB) usersByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	result := make(map[uuid.UUID]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := d.query(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result[u.ID] = u
	}
	return result, rows.Err()
}

func (d *DB) workoutsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Workout, error) {
	result := make(map[uuid.UUID]*models.Workout, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + workoutColumns + ` FROM workouts WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := d.query(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}
	defer rows.Close()

	workouts, err := scanWorkouts(rows)
	if err != nil {
		return nil, err
	}
	for _, w := range workouts {
		result[w.ID] = w
	}
	return result, nil
}

func (d *DB) setsByWorkoutExercise(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*models.Set, error) {
	result := make(map[uuid.UUID][]*models.Set, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `
		SELECT ` + setColumns + `
		FROM sets
		WHERE workout_exercise_id IN (` + placeholders(len(ids)) + `)
		ORDER BY set_number ASC, created_at ASC
	`
	rows, err := d.query(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("load sets: %w", err)
	}
	defer rows.Close()

	sets, err := scanSets(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range sets {
		result[s.WorkoutExerciseID] = append(result[s.WorkoutExerciseID], s)
	}
	return result, nil
}

// placeholders returns "?, ?, ..." with n markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idArgs(ids []uuid.UUID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	return args
}

// qualify prefixes each column in a comma-separated list with alias.
func qualify(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
