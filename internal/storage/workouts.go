// ABOUTME: Workout CRUD operations.
// ABOUTME: Deleting a workout cascades to its workout exercises and their sets.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/gymlog/internal/models"
)

const workoutColumns = `id, user_id, name, date, started_at, completed_at, created_at, updated_at`

// CreateWorkout stores a new workout. The owning user must exist.
func (d *DB) CreateWorkout(ctx context.Context, w *models.Workout) error {
	stampCreate(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if w.Date.IsZero() {
		w.Date = models.TruncateDate(w.CreatedAt)
	}

	query := `
		INSERT INTO workouts (id, user_id, name, date, started_at, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.exec(ctx, query,
		w.ID.String(),
		w.UserID.String(),
		w.Name,
		d.dateArg(w.Date),
		d.nullTimeArg(w.StartedAt),
		d.nullTimeArg(w.CompletedAt),
		d.timeArg(w.CreatedAt),
		d.timeArg(w.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create workout: %w", classify(err))
	}
	return nil
}

// GetWorkout retrieves a workout by ID or ID prefix (without relations).
func (d *DB) GetWorkout(ctx context.Context, idOrPrefix string) (*models.Workout, error) {
	id, err := d.resolveID(ctx, TableWorkouts, idOrPrefix)
	if err != nil {
		return nil, err
	}
	return scanWorkout(d.queryRow(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id))
}

// ListWorkouts retrieves workouts matching filter.
// Results are sorted by date descending (most recent first).
func (d *DB) ListWorkouts(ctx context.Context, filter WorkoutFilter) ([]*models.Workout, error) {
	var conds []string
	var args []any

	if filter.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID.String())
	}
	if filter.From != nil {
		conds = append(conds, "date >= ?")
		args = append(args, d.dateArg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "date <= ?")
		args = append(args, d.dateArg(*filter.To))
	}

	query := `SELECT ` + workoutColumns + ` FROM workouts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"
	query, args = limitClause(query, args, filter.Limit)

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	return scanWorkouts(rows)
}

// UpdateWorkout writes name, date, started_at and completed_at and advances updated_at.
// Ownership (user_id) is not changed.
func (d *DB) UpdateWorkout(ctx context.Context, w *models.Workout) error {
	updatedAt, err := d.nextUpdatedAt(ctx, TableWorkouts, w.ID)
	if err != nil {
		return fmt.Errorf("update workout: %w", err)
	}

	query := `
		UPDATE workouts
		SET name = ?, date = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := d.exec(ctx, query,
		w.Name,
		d.dateArg(w.Date),
		d.nullTimeArg(w.StartedAt),
		d.nullTimeArg(w.CompletedAt),
		d.timeArg(updatedAt),
		w.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update workout: %w", classify(err))
	}
	if err := expectOne(result, w.ID); err != nil {
		return fmt.Errorf("update workout: %w", err)
	}

	w.UpdatedAt = updatedAt
	return nil
}

// DeleteWorkout removes a workout and all its exercises and sets (cascade delete).
func (d *DB) DeleteWorkout(ctx context.Context, idOrPrefix string) error {
	if err := d.deleteByID(ctx, TableWorkouts, idOrPrefix); err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}
	return nil
}

// scanWorkout scans a single row into a Workout struct.
func scanWorkout(row rowScanner) (*models.Workout, error) {
	var w models.Workout
	var date, startedAt, completedAt, createdAt, updatedAt dbTime

	err := row.Scan(&w.ID, &w.UserID, &w.Name, &date, &startedAt, &completedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan workout: %w", err)
	}

	w.Date = models.TruncateDate(date.Time)
	w.StartedAt = startedAt.ptr()
	w.CompletedAt = completedAt.ptr()
	w.CreatedAt = createdAt.Time
	w.UpdatedAt = updatedOrCreated(updatedAt, createdAt)

	return &w, nil
}

// scanWorkouts scans multiple rows into a slice of Workouts.
func scanWorkouts(rows *sql.Rows) ([]*models.Workout, error) {
	var workouts []*models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}
