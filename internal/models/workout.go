// ABOUTME: Workout model for a training session owned by a user.
// ABOUTME: Workouts hold an ordered list of exercises, each with its sets.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the storage and display format of a workout's calendar date.
const DateLayout = "2006-01-02"

// Workout represents a training session on a calendar date.
type Workout struct {
	ID          uuid.UUID  `json:"id" yaml:"id"`
	UserID      uuid.UUID  `json:"user_id" yaml:"user_id"`
	Name        string     `json:"name" yaml:"name"`
	Date        time.Time  `json:"date" yaml:"date"`
	StartedAt   *time.Time `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`

	User             *User              `json:"user,omitempty" yaml:"user,omitempty"`
	WorkoutExercises []*WorkoutExercise `json:"workout_exercises,omitempty" yaml:"workout_exercises,omitempty"`
}

// NewWorkout creates a new Workout for the user, dated today.
func NewWorkout(userID uuid.UUID, name string) *Workout {
	now := Now()
	return &Workout{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Date:      TruncateDate(now),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithDate sets the calendar date. Any time-of-day component is dropped.
func (w *Workout) WithDate(d time.Time) *Workout {
	w.Date = TruncateDate(d)
	return w
}

// WithStartedAt sets when the session started.
func (w *Workout) WithStartedAt(t time.Time) *Workout {
	w.StartedAt = &t
	return w
}

// WithCompletedAt sets when the session ended.
func (w *Workout) WithCompletedAt(t time.Time) *Workout {
	w.CompletedAt = &t
	return w
}

// Duration returns the elapsed session time, or zero if the workout has not
// both started and completed.
func (w *Workout) Duration() time.Duration {
	if w.StartedAt == nil || w.CompletedAt == nil {
		return 0
	}
	return w.CompletedAt.Sub(*w.StartedAt)
}

// DateString returns the calendar date in YYYY-MM-DD form.
func (w *Workout) DateString() string {
	return w.Date.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// TruncateDate drops the time-of-day, keeping the calendar date as seen in t's location.
func TruncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
