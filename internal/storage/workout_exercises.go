// ABOUTME: WorkoutExercise CRUD operations for the workout/exercise join table.
// ABOUTME: Rows are ordered by their order column, then creation time.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

const workoutExerciseColumns = `id, workout_id, exercise_id, "order", created_at, updated_at`

// AddWorkoutExercise places an exercise in a workout. Both must exist.
func (d *DB) AddWorkoutExercise(ctx context.Context, we *models.WorkoutExercise) error {
	stampCreate(&we.ID, &we.CreatedAt, &we.UpdatedAt)

	query := `
		INSERT INTO workout_exercises (id, workout_id, exercise_id, "order", created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := d.exec(ctx, query,
		we.ID.String(),
		we.WorkoutID.String(),
		we.ExerciseID.String(),
		we.Order,
		d.timeArg(we.CreatedAt),
		d.timeArg(we.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("add workout exercise: %w", classify(err))
	}
	return nil
}

// GetWorkoutExercise retrieves a workout exercise by ID or ID prefix.
func (d *DB) GetWorkoutExercise(ctx context.Context, idOrPrefix string) (*models.WorkoutExercise, error) {
	id, err := d.resolveID(ctx, TableWorkoutExercises, idOrPrefix)
	if err != nil {
		return nil, err
	}
	return scanWorkoutExercise(d.queryRow(ctx,
		`SELECT `+workoutExerciseColumns+` FROM workout_exercises WHERE id = ?`, id))
}

// ListWorkoutExercises returns the exercises of a workout in order.
func (d *DB) ListWorkoutExercises(ctx context.Context, workoutID uuid.UUID) ([]*models.WorkoutExercise, error) {
	query := `
		SELECT ` + workoutExerciseColumns + `
		FROM workout_exercises
		WHERE workout_id = ?
		ORDER BY "order" ASC, created_at ASC
	`
	rows, err := d.query(ctx, query, workoutID.String())
	if err != nil {
		return nil, fmt.Errorf("list workout exercises: %w", err)
	}
	defer rows.Close()

	return scanWorkoutExercises(rows)
}

// UpdateWorkoutExercise writes the exercise and order columns and advances updated_at.
func (d *DB) UpdateWorkoutExercise(ctx context.Context, we *models.WorkoutExercise) error {
	updatedAt, err := d.nextUpdatedAt(ctx, TableWorkoutExercises, we.ID)
	if err != nil {
		return fmt.Errorf("update workout exercise: %w", err)
	}

	result, err := d.exec(ctx, `UPDATE workout_exercises SET exercise_id = ?, "order" = ?, updated_at = ? WHERE id = ?`,
		we.ExerciseID.String(), we.Order, d.timeArg(updatedAt), we.ID.String())
	if err != nil {
		return fmt.Errorf("update workout exercise: %w", classify(err))
	}
	if err := expectOne(result, we.ID); err != nil {
		return fmt.Errorf("update workout exercise: %w", err)
	}

	we.UpdatedAt = updatedAt
	return nil
}

// DeleteWorkoutExercise removes an exercise from its workout along with its sets.
func (d *DB) DeleteWorkoutExercise(ctx context.Context, idOrPrefix string) error {
	if err := d.deleteByID(ctx, TableWorkoutExercises, idOrPrefix); err != nil {
		return fmt.Errorf("delete workout exercise: %w", err)
	}
	return nil
}

func scanWorkoutExercise(row rowScanner) (*models.WorkoutExercise, error) {
	var we models.WorkoutExercise
	var order sql.NullInt64
	var createdAt, updatedAt dbTime

	if err := row.Scan(&we.ID, &we.WorkoutID, &we.ExerciseID, &order, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan workout exercise: %w", err)
	}

	// A NULL order sorts like the column default.
	we.Order = int(order.Int64)
	we.CreatedAt = createdAt.Time
	we.UpdatedAt = updatedOrCreated(updatedAt, createdAt)
	return &we, nil
}

func scanWorkoutExercises(rows *sql.Rows) ([]*models.WorkoutExercise, error) {
	var entries []*models.WorkoutExercise
	for rows.Next() {
		we, err := scanWorkoutExercise(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, we)
	}
	return entries, rows.Err()
}
