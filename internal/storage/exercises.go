// ABOUTME: Exercise catalog CRUD operations.
// ABOUTME: Deleting an exercise cascades to every workout entry that used it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/harperreed/gymlog/internal/models"
)

const exerciseColumns = `id, name, created_at, updated_at`

// CreateExercise stores a new exercise.
func (d *DB) CreateExercise(ctx context.Context, e *models.Exercise) error {
	stampCreate(&e.ID, &e.CreatedAt, &e.UpdatedAt)

	query := `INSERT INTO exercises (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`
	_, err := d.exec(ctx, query, e.ID.String(), e.Name, d.timeArg(e.CreatedAt), d.timeArg(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create exercise: %w", classify(err))
	}
	return nil
}

// GetExercise retrieves an exercise by ID or ID prefix.
func (d *DB) GetExercise(ctx context.Context, idOrPrefix string) (*models.Exercise, error) {
	id, err := d.resolveID(ctx, TableExercises, idOrPrefix)
	if err != nil {
		return nil, err
	}
	return scanExercise(d.queryRow(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id))
}

// FindExerciseByName looks an exercise up by case-insensitive name.
// The oldest exercise wins when names collide.
func (d *DB) FindExerciseByName(ctx context.Context, name string) (*models.Exercise, error) {
	query := `
		SELECT ` + exerciseColumns + `
		FROM exercises
		WHERE ` + d.caseFold("name") + `
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	e, err := scanExercise(d.queryRow(ctx, query, name))
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: exercise %q", ErrNotFound, name)
	}
	return e, err
}

// ListExercises returns exercises sorted by name.
func (d *DB) ListExercises(ctx context.Context, limit int) ([]*models.Exercise, error) {
	query, args := limitClause(`SELECT `+exerciseColumns+` FROM exercises ORDER BY LOWER(name) ASC, id ASC`, nil, limit)

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []*models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, rows.Err()
}

// UpdateExercise renames an exercise and advances updated_at.
func (d *DB) UpdateExercise(ctx context.Context, e *models.Exercise) error {
	updatedAt, err := d.nextUpdatedAt(ctx, TableExercises, e.ID)
	if err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}

	result, err := d.exec(ctx, `UPDATE exercises SET name = ?, updated_at = ? WHERE id = ?`,
		e.Name, d.timeArg(updatedAt), e.ID.String())
	if err != nil {
		return fmt.Errorf("update exercise: %w", classify(err))
	}
	if err := expectOne(result, e.ID); err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}

	e.UpdatedAt = updatedAt
	return nil
}

// DeleteExercise removes an exercise and every workout exercise (and set) using it.
func (d *DB) DeleteExercise(ctx context.Context, idOrPrefix string) error {
	if err := d.deleteByID(ctx, TableExercises, idOrPrefix); err != nil {
		return fmt.Errorf("delete exercise: %w", err)
	}
	return nil
}

func scanExercise(row rowScanner) (*models.Exercise, error) {
	var e models.Exercise
	var createdAt, updatedAt dbTime

	if err := row.Scan(&e.ID, &e.Name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan exercise: %w", err)
	}

	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedOrCreated(updatedAt, createdAt)
	return &e, nil
}
