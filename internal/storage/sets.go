// ABOUTME: Set CRUD operations.
// ABOUTME: Weights are normalized to NUMERIC(6,2) before they reach either dialect.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/shopspring/decimal"
)

const setColumns = `id, workout_exercise_id, set_number, weight, reps, completed, created_at, updated_at`

// AddSet stores a new set. The workout exercise must exist.
func (d *DB) AddSet(ctx context.Context, s *models.Set) error {
	weight, err := weightArg(s.Weight)
	if err != nil {
		return fmt.Errorf("add set: %w", err)
	}
	stampCreate(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	query := `
		INSERT INTO sets (id, workout_exercise_id, set_number, weight, reps, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = d.exec(ctx, query,
		s.ID.String(),
		s.WorkoutExerciseID.String(),
		s.SetNumber,
		weight,
		s.Reps,
		s.Completed,
		d.timeArg(s.CreatedAt),
		d.timeArg(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("add set: %w", classify(err))
	}
	return nil
}

// GetSet retrieves a set by ID or ID prefix.
func (d *DB) GetSet(ctx context.Context, idOrPrefix string) (*models.Set, error) {
	id, err := d.resolveID(ctx, TableSets, idOrPrefix)
	if err != nil {
		return nil, err
	}
	return scanSet(d.queryRow(ctx, `SELECT `+setColumns+` FROM sets WHERE id = ?`, id))
}

// ListSets returns the sets of a workout exercise by set number.
func (d *DB) ListSets(ctx context.Context, workoutExerciseID uuid.UUID) ([]*models.Set, error) {
	query := `
		SELECT ` + setColumns + `
		FROM sets
		WHERE workout_exercise_id = ?
		ORDER BY set_number ASC, created_at ASC
	`
	rows, err := d.query(ctx, query, workoutExerciseID.String())
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	defer rows.Close()

	return scanSets(rows)
}

// UpdateSet writes set_number, weight, reps and completed and advances updated_at.
func (d *DB) UpdateSet(ctx context.Context, s *models.Set) error {
	weight, err := weightArg(s.Weight)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}

	updatedAt, err := d.nextUpdatedAt(ctx, TableSets, s.ID)
	if err != nil {
		return fmt.Errorf("update set: %w", err)
	}

	query := `
		UPDATE sets
		SET set_number = ?, weight = ?, reps = ?, completed = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := d.exec(ctx, query,
		s.SetNumber,
		weight,
		s.Reps,
		s.Completed,
		d.timeArg(updatedAt),
		s.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update set: %w", classify(err))
	}
	if err := expectOne(result, s.ID); err != nil {
		return fmt.Errorf("update set: %w", err)
	}

	s.UpdatedAt = updatedAt
	return nil
}

// DeleteSet removes a single set.
func (d *DB) DeleteSet(ctx context.Context, idOrPrefix string) error {
	if err := d.deleteByID(ctx, TableSets, idOrPrefix); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	return nil
}

// weightArg normalizes an optional weight to its NUMERIC(6,2) text form.
func weightArg(w *decimal.Decimal) (any, error) {
	if w == nil {
		return nil, nil
	}
	normalized, err := models.NormalizeWeight(*w)
	if err != nil {
		return nil, err
	}
	return normalized.StringFixed(models.WeightScale), nil
}

func scanSet(row rowScanner) (*models.Set, error) {
	var s models.Set
	var weight decimal.NullDecimal
	var reps sql.NullInt64
	var completed sql.NullBool
	var createdAt, updatedAt dbTime

	err := row.Scan(&s.ID, &s.WorkoutExerciseID, &s.SetNumber, &weight, &reps, &completed, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan set: %w", err)
	}

	if weight.Valid {
		w := weight.Decimal
		s.Weight = &w
	}
	if reps.Valid {
		r := int(reps.Int64)
		s.Reps = &r
	}
	// NULL completed reads as the column default.
	s.Completed = !completed.Valid || completed.Bool
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedOrCreated(updatedAt, createdAt)
	return &s, nil
}

func scanSets(rows *sql.Rows) ([]*models.Set, error) {
	var sets []*models.Set
	for rows.Next() {
		s, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}
