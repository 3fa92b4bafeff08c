// ABOUTME: Exercise model for the shared movement catalog.
// ABOUTME: Exercises are not owned by any user and are referenced by workout entries.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Exercise is a named movement such as "Bench Press".
type Exercise struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	WorkoutExercises []*WorkoutExercise `json:"workout_exercises,omitempty" yaml:"workout_exercises,omitempty"`
}

// NewExercise creates a new Exercise with generated UUID and current timestamps.
func NewExercise(name string) *Exercise {
	now := Now()
	return &Exercise{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
