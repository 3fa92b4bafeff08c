// ABOUTME: WorkoutExercise join model linking a workout to an exercise.
// ABOUTME: Order positions the exercise within the workout; sets hang off this row.
package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutExercise places one Exercise inside one Workout.
type WorkoutExercise struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	WorkoutID  uuid.UUID `json:"workout_id" yaml:"workout_id"`
	ExerciseID uuid.UUID `json:"exercise_id" yaml:"exercise_id"`
	Order      int       `json:"order" yaml:"order"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`

	Workout  *Workout  `json:"workout,omitempty" yaml:"workout,omitempty"`
	Exercise *Exercise `json:"exercise,omitempty" yaml:"exercise,omitempty"`
	Sets     []*Set    `json:"sets,omitempty" yaml:"sets,omitempty"`
}

// NewWorkoutExercise creates a new WorkoutExercise at order 0.
func NewWorkoutExercise(workoutID, exerciseID uuid.UUID) *WorkoutExercise {
	now := Now()
	return &WorkoutExercise{
		ID:         uuid.New(),
		WorkoutID:  workoutID,
		ExerciseID: exerciseID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// WithOrder sets the position within the workout.
func (we *WorkoutExercise) WithOrder(order int) *WorkoutExercise {
	we.Order = order
	return we
}

// NextOrder returns the order that places a new entry after all of entries.
func NextOrder(entries []*WorkoutExercise) int {
	next := 0
	for _, we := range entries {
		if we.Order >= next {
			next = we.Order + 1
		}
	}
	return next
}

// ExerciseName returns the loaded exercise's name, or an empty string.
func (we *WorkoutExercise) ExerciseName() string {
	if we.Exercise == nil {
		return ""
	}
	return we.Exercise.Name
}
