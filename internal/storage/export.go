// ABOUTME: Export and import functionality for workout data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportVersion is written into every export.
const ExportVersion = "1.0"

// ExportData is the full export format. Workouts are nested under their
// user, exercises entries under their workout and sets under their entry,
// mirroring the cascade tree.
type ExportData struct {
	Version    string             `json:"version" yaml:"version"`
	ExportedAt time.Time          `json:"exported_at" yaml:"exported_at"`
	Tool       string             `json:"tool" yaml:"tool"`
	Exercises  []*models.Exercise `json:"exercises" yaml:"exercises"`
	Users      []*models.User     `json:"users" yaml:"users"`
}

// GetAllData retrieves all data for export with four table scans.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	users, err := d.ListUsers(ctx, 0)
	if err != nil {
		return nil, err
	}
	exercises, err := d.ListExercises(ctx, 0)
	if err != nil {
		return nil, err
	}
	workouts, err := d.ListWorkouts(ctx, WorkoutFilter{})
	if err != nil {
		return nil, err
	}
	if err := d.attachAllEntries(ctx, workouts); err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID][]*models.Workout)
	for _, w := range workouts {
		byUser[w.UserID] = append(byUser[w.UserID], w)
	}
	for _, u := range users {
		u.Workouts = byUser[u.ID]
	}

	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Tool:       "gymlog",
		Exercises:  exercises,
		Users:      users,
	}, nil
}

// attachAllEntries loads every workout exercise and set and hangs them off workouts.
func (d *DB) attachAllEntries(ctx context.Context, workouts []*models.Workout) error {
	rows, err := d.query(ctx, `SELECT `+workoutExerciseColumns+` FROM workout_exercises ORDER BY "order" ASC, created_at ASC`)
	if err != nil {
		return fmt.Errorf("list workout exercises: %w", err)
	}
	entries, err := scanWorkoutExercises(rows)
	_ = rows.Close()
	if err != nil {
		return err
	}

	rows, err = d.query(ctx, `SELECT `+setColumns+` FROM sets ORDER BY set_number ASC, created_at ASC`)
	if err != nil {
		return fmt.Errorf("list sets: %w", err)
	}
	sets, err := scanSets(rows)
	_ = rows.Close()
	if err != nil {
		return err
	}

	setsByEntry := make(map[uuid.UUID][]*models.Set)
	for _, s := range sets {
		setsByEntry[s.WorkoutExerciseID] = append(setsByEntry[s.WorkoutExerciseID], s)
	}
	entriesByWorkout := make(map[uuid.UUID][]*models.WorkoutExercise)
	for _, we := range entries {
		we.Sets = setsByEntry[we.ID]
		entriesByWorkout[we.WorkoutID] = append(entriesByWorkout[we.WorkoutID], we)
	}
	for _, w := range workouts {
		w.WorkoutExercises = entriesByWorkout[w.ID]
	}
	return nil
}

// ImportData imports an export in a single transaction, parents before children.
// Rows keep their IDs, so importing into a store that already holds them fails
// with ErrAlreadyExists and nothing is written.
func (d *DB) ImportData(ctx context.Context, data *ExportData) error {
	return d.withTx(ctx, func(tx *DB) error {
		for _, e := range data.Exercises {
			if err := tx.CreateExercise(ctx, e); err != nil {
				return fmt.Errorf("import exercise: %w", err)
			}
		}

		for _, u := range data.Users {
			if err := tx.CreateUser(ctx, u); err != nil {
				return fmt.Errorf("import user: %w", err)
			}
			for _, w := range u.Workouts {
				w.UserID = u.ID
				if err := tx.CreateWorkout(ctx, w); err != nil {
					return fmt.Errorf("import workout: %w", err)
				}
				for _, we := range w.WorkoutExercises {
					we.WorkoutID = w.ID
					if err := tx.AddWorkoutExercise(ctx, we); err != nil {
						return fmt.Errorf("import workout exercise: %w", err)
					}
					for _, s := range we.Sets {
						s.WorkoutExerciseID = we.ID
						if err := tx.AddSet(ctx, s); err != nil {
							return fmt.Errorf("import set: %w", err)
						}
					}
				}
			}
		}
		return nil
	})
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func (d *DB) ImportJSON(ctx context.Context, data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return d.ImportData(ctx, &exportData)
}

type yamlSet struct {
	Number    int    `yaml:"set"`
	Weight    string `yaml:"weight,omitempty"`
	Reps      *int   `yaml:"reps,omitempty"`
	Completed bool   `yaml:"completed"`
}

type yamlEntry struct {
	Exercise string    `yaml:"exercise"`
	Order    int       `yaml:"order"`
	Sets     []yamlSet `yaml:"sets,omitempty"`
}

type yamlWorkout struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Date        string      `yaml:"date"`
	StartedAt   string      `yaml:"started_at,omitempty"`
	CompletedAt string      `yaml:"completed_at,omitempty"`
	Exercises   []yamlEntry `yaml:"exercises,omitempty"`
}

type yamlUser struct {
	ID          string        `yaml:"id"`
	ClerkUserID string        `yaml:"clerk_user_id"`
	Name        string        `yaml:"name"`
	Workouts    []yamlWorkout `yaml:"workouts,omitempty"`
}

// ExportYAML exports all data as human-readable YAML with exercise names
// resolved and IDs shortened.
func (d *DB) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(data.Exercises))
	exerciseNames := make([]string, 0, len(data.Exercises))
	for _, e := range data.Exercises {
		names[e.ID] = e.Name
		exerciseNames = append(exerciseNames, e.Name)
	}

	out := struct {
		Version    string     `yaml:"version"`
		ExportedAt string     `yaml:"exported_at"`
		Tool       string     `yaml:"tool"`
		Exercises  []string   `yaml:"exercises"`
		Users      []yamlUser `yaml:"users"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Exercises:  exerciseNames,
		Users:      make([]yamlUser, 0, len(data.Users)),
	}

	for _, u := range data.Users {
		yu := yamlUser{ID: u.ID.String()[:8], ClerkUserID: u.ClerkUserID, Name: u.DisplayName()}
		for _, w := range u.Workouts {
			yw := yamlWorkout{ID: w.ID.String()[:8], Name: w.Name, Date: w.DateString()}
			if w.StartedAt != nil {
				yw.StartedAt = w.StartedAt.Format(time.RFC3339)
			}
			if w.CompletedAt != nil {
				yw.CompletedAt = w.CompletedAt.Format(time.RFC3339)
			}
			for _, we := range w.WorkoutExercises {
				ye := yamlEntry{Exercise: names[we.ExerciseID], Order: we.Order}
				for _, s := range we.Sets {
					ys := yamlSet{Number: s.SetNumber, Reps: s.Reps, Completed: s.Completed}
					if s.Weight != nil {
						ys.Weight = s.Weight.StringFixed(models.WeightScale)
					}
					ye.Sets = append(ye.Sets, ys)
				}
				yw.Exercises = append(yw.Exercises, ye)
			}
			yu.Workouts = append(yu.Workouts, yw)
		}
		out.Users = append(out.Users, yu)
	}

	return yaml.Marshal(out)
}

// ExportMarkdown exports workouts as a Markdown training log, optionally
// limited to one user and to workouts dated on or after since.
func (d *DB) ExportMarkdown(ctx context.Context, userID *uuid.UUID, since *time.Time) (string, error) {
	workouts, err := d.ListWorkouts(ctx, WorkoutFilter{UserID: userID, From: since})
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Workout Log - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	if len(workouts) == 0 {
		sb.WriteString("No workouts.\n")
		return sb.String(), nil
	}

	if err := d.attachWorkoutDetails(ctx, workouts); err != nil {
		return "", err
	}

	for _, w := range workouts {
		sb.WriteString(fmt.Sprintf("## %s %s\n\n", w.DateString(), w.Name))
		sb.WriteString(fmt.Sprintf("User: %s\n", w.User.DisplayName()))
		if dur := w.Duration(); dur > 0 {
			sb.WriteString(fmt.Sprintf("Duration: %d min\n", int(dur.Minutes())))
		}
		sb.WriteString("\n")

		for _, we := range w.WorkoutExercises {
			sb.WriteString(fmt.Sprintf("### %s\n\n", we.ExerciseName()))
			sb.WriteString("| Set | Weight | Reps | Done |\n")
			sb.WriteString("|-----|--------|------|------|\n")
			for _, s := range we.Sets {
				sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
					s.SetNumber, formatWeight(s), formatReps(s), formatDone(s)))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}

func formatWeight(s *models.Set) string {
	if s.Weight == nil {
		return "-"
	}
	return s.Weight.StringFixed(models.WeightScale)
}

func formatReps(s *models.Set) string {
	if s.Reps == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *s.Reps)
}

func formatDone(s *models.Set) string {
	if s.Completed {
		return "yes"
	}
	return "no"
}
