// ABOUTME: Repository interface for workout log storage.
// ABOUTME: Defines CRUD, eager-loading and export operations over the five tables.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
)

// WorkoutFilter narrows ListWorkouts. Zero values mean "no filter".
type WorkoutFilter struct {
	UserID *uuid.UUID
	From   *time.Time // inclusive calendar date
	To     *time.Time // inclusive calendar date
	Limit  int
}

// Repository defines the storage interface for workout data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, idOrPrefix string) (*models.User, error)
	GetUserByClerkID(ctx context.Context, clerkUserID string) (*models.User, error)
	EnsureUser(ctx context.Context, u *models.User) (*models.User, bool, error)
	ListUsers(ctx context.Context, limit int) ([]*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, idOrPrefix string) error

	// Exercise operations
	CreateExercise(ctx context.Context, e *models.Exercise) error
	GetExercise(ctx context.Context, idOrPrefix string) (*models.Exercise, error)
	FindExerciseByName(ctx context.Context, name string) (*models.Exercise, error)
	ListExercises(ctx context.Context, limit int) ([]*models.Exercise, error)
	UpdateExercise(ctx context.Context, e *models.Exercise) error
	DeleteExercise(ctx context.Context, idOrPrefix string) error

	// Workout operations
	CreateWorkout(ctx context.Context, w *models.Workout) error
	GetWorkout(ctx context.Context, idOrPrefix string) (*models.Workout, error)
	ListWorkouts(ctx context.Context, filter WorkoutFilter) ([]*models.Workout, error)
	UpdateWorkout(ctx context.Context, w *models.Workout) error
	DeleteWorkout(ctx context.Context, idOrPrefix string) error

	// Workout exercise operations
	AddWorkoutExercise(ctx context.Context, we *models.WorkoutExercise) error
	GetWorkoutExercise(ctx context.Context, idOrPrefix string) (*models.WorkoutExercise, error)
	ListWorkoutExercises(ctx context.Context, workoutID uuid.UUID) ([]*models.WorkoutExercise, error)
	UpdateWorkoutExercise(ctx context.Context, we *models.WorkoutExercise) error
	DeleteWorkoutExercise(ctx context.Context, idOrPrefix string) error

	// Set operations
	AddSet(ctx context.Context, s *models.Set) error
	GetSet(ctx context.Context, idOrPrefix string) (*models.Set, error)
	ListSets(ctx context.Context, workoutExerciseID uuid.UUID) ([]*models.Set, error)
	UpdateSet(ctx context.Context, s *models.Set) error
	DeleteSet(ctx context.Context, idOrPrefix string) error

	// Relationship loaders
	GetUserWithWorkouts(ctx context.Context, idOrPrefix string) (*models.User, error)
	GetWorkoutWithUser(ctx context.Context, idOrPrefix string) (*models.Workout, error)
	GetWorkoutDetail(ctx context.Context, idOrPrefix string) (*models.Workout, error)
	GetExerciseWithWorkoutExercises(ctx context.Context, idOrPrefix string) (*models.Exercise, error)
	GetWorkoutExerciseWithRelations(ctx context.Context, idOrPrefix string) (*models.WorkoutExercise, error)
	GetSetWithWorkoutExercise(ctx context.Context, idOrPrefix string) (*models.Set, error)

	// Introspection
	CountRows(ctx context.Context) (map[string]int, error)

	// Export/Import
	GetAllData(ctx context.Context) (*ExportData, error)
	ImportData(ctx context.Context, data *ExportData) error

	// Lifecycle
	Close() error
}
