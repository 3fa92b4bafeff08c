// ABOUTME: Set model for a single performed set within a workout exercise.
// ABOUTME: Weight is fixed-point with two fractional digits, at most 9999.99.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Weight column limits: NUMERIC(6,2).
const (
	WeightPrecision = 6
	WeightScale     = 2
)

// MaxWeight is the largest magnitude a weight column can hold.
var MaxWeight = decimal.New(999999, -WeightScale)

// ErrWeightOutOfRange is returned when a weight does not fit NUMERIC(6,2).
var ErrWeightOutOfRange = errors.New("weight out of range")

// Set is one set performed for a WorkoutExercise.
// Completed defaults to true only through NewSet and JSON decoding; a zero
// Set literal stores false.
type Set struct {
	ID                uuid.UUID        `json:"id" yaml:"id"`
	WorkoutExerciseID uuid.UUID        `json:"workout_exercise_id" yaml:"workout_exercise_id"`
	SetNumber         int              `json:"set_number" yaml:"set_number"`
	Weight            *decimal.Decimal `json:"weight,omitempty" yaml:"weight,omitempty"`
	Reps              *int             `json:"reps,omitempty" yaml:"reps,omitempty"`
	Completed         bool             `json:"completed" yaml:"completed"`
	CreatedAt         time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" yaml:"updated_at"`

	WorkoutExercise *WorkoutExercise `json:"workout_exercise,omitempty" yaml:"workout_exercise,omitempty"`
}

// NewSet creates a completed Set with the given number.
func NewSet(workoutExerciseID uuid.UUID, setNumber int) *Set {
	now := Now()
	return &Set{
		ID:                uuid.New(),
		WorkoutExerciseID: workoutExerciseID,
		SetNumber:         setNumber,
		Completed:         true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// NextSetNumber returns the number that follows the highest of sets, starting at 1.
func NextSetNumber(sets []*Set) int {
	next := 1
	for _, s := range sets {
		if s.SetNumber >= next {
			next = s.SetNumber + 1
		}
	}
	return next
}

// UnmarshalJSON decodes a set, treating a missing "completed" as true
// to match the column default.
func (s *Set) UnmarshalJSON(data []byte) error {
	type plain Set
	p := plain{Completed: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Set(p)
	return nil
}

// WithWeight sets the weight. Validation happens in NormalizeWeight at write time.
func (s *Set) WithWeight(w decimal.Decimal) *Set {
	s.Weight = &w
	return s
}

// WithReps sets the repetition count.
func (s *Set) WithReps(reps int) *Set {
	s.Reps = &reps
	return s
}

// WithCompleted marks the set as completed or skipped.
func (s *Set) WithCompleted(completed bool) *Set {
	s.Completed = completed
	return s
}

// Volume returns weight × reps, or zero when either is unset.
func (s *Set) Volume() decimal.Decimal {
	if s.Weight == nil || s.Reps == nil {
		return decimal.Zero
	}
	return s.Weight.Mul(decimal.NewFromInt(int64(*s.Reps)))
}

// NormalizeWeight rounds w to two fractional digits and checks it fits NUMERIC(6,2).
func NormalizeWeight(w decimal.Decimal) (decimal.Decimal, error) {
	rounded := w.Round(WeightScale)
	if rounded.Abs().GreaterThan(MaxWeight) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s exceeds %s", ErrWeightOutOfRange, w.String(), MaxWeight.StringFixed(WeightScale))
	}
	return rounded, nil
}

// ParseWeight parses a decimal string and normalizes it.
func ParseWeight(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid weight %q: %w", s, err)
	}
	return NormalizeWeight(d)
}
