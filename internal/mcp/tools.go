// ABOUTME: MCP tool implementations for the workout log.
// ABOUTME: Exercises, workouts, workout exercises and sets for the acting user.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_exercise",
		Description: "Define an exercise (e.g. Squat). Returns the existing one if the name is already known",
	}, s.handleAddExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_exercises",
		Description: "List known exercises alphabetically",
	}, s.handleListExercises)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_workout",
		Description: "Create a new workout session",
	}, s.handleAddWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List recent workouts, optionally within a date range",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_workout",
		Description: "Get a workout with its exercises and sets",
	}, s.handleGetWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_workout_exercise",
		Description: "Add an exercise to a workout, creating the exercise if it is new",
	}, s.handleAddWorkoutExercise)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_set",
		Description: "Log a set of an exercise within a workout",
	}, s.handleLogSet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_set",
		Description: "Change the weight, reps, number or completion of a set",
	}, s.handleUpdateSet)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_workout",
		Description: "Delete a workout with its exercises and sets",
	}, s.handleDeleteWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_set",
		Description: "Delete a single set",
	}, s.handleDeleteSet)
}

// Tool input/output types

type addExerciseInput struct {
	Name string `json:"name" jsonschema:"Exercise name, e.g. Back Squat"`
}

type exerciseOutput struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

type listExercisesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 100)"`
}

type exerciseSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listExercisesOutput struct {
	Exercises []exerciseSummary `json:"exercises"`
	Count     int               `json:"count"`
}

type addWorkoutInput struct {
	Name      string `json:"name" jsonschema:"Workout name, e.g. Leg Day"`
	Date      string `json:"date,omitempty" jsonschema:"Calendar date YYYY-MM-DD, defaults to today"`
	StartedAt string `json:"started_at,omitempty" jsonschema:"Start time (ISO 8601)"`
}

type workoutOutput struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

type listWorkoutsInput struct {
	From  string `json:"from,omitempty" jsonschema:"Earliest date YYYY-MM-DD"`
	To    string `json:"to,omitempty" jsonschema:"Latest date YYYY-MM-DD"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type workoutSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type listWorkoutsOutput struct {
	Workouts []workoutSummary `json:"workouts"`
	Count    int              `json:"count"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"ID or ID prefix"`
}

type setDetail struct {
	ID        string `json:"id"`
	SetNumber int    `json:"set_number"`
	Weight    string `json:"weight,omitempty"`
	Reps      *int   `json:"reps,omitempty"`
	Completed bool   `json:"completed"`
}

type workoutExerciseDetail struct {
	ID       string      `json:"id"`
	Exercise string      `json:"exercise"`
	Order    int         `json:"order"`
	Sets     []setDetail `json:"sets"`
}

type workoutDetail struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Date        string                  `json:"date"`
	StartedAt   string                  `json:"started_at,omitempty"`
	CompletedAt string                  `json:"completed_at,omitempty"`
	Exercises   []workoutExerciseDetail `json:"exercises"`
	Volume      string                  `json:"volume"`
}

type addWorkoutExerciseInput struct {
	WorkoutID string `json:"workout_id" jsonschema:"Workout ID or prefix"`
	Exercise  string `json:"exercise" jsonschema:"Exercise name or ID prefix"`
	Order     *int   `json:"order,omitempty" jsonschema:"Position in the workout, defaults to after the last exercise"`
}

type workoutExerciseOutput struct {
	ID       string `json:"id"`
	Exercise string `json:"exercise"`
	Order    int    `json:"order"`
	Message  string `json:"message"`
}

type logSetInput struct {
	WorkoutExerciseID string `json:"workout_exercise_id,omitempty" jsonschema:"Workout exercise ID or prefix; alternatively give workout_id and exercise"`
	WorkoutID         string `json:"workout_id,omitempty" jsonschema:"Workout ID or prefix"`
	Exercise          string `json:"exercise,omitempty" jsonschema:"Exercise name or ID prefix, added to the workout if missing"`
	SetNumber         int    `json:"set_number,omitempty" jsonschema:"Set number, defaults to the next one"`
	Weight            string `json:"weight,omitempty" jsonschema:"Weight as a decimal, at most 9999.99"`
	Reps              *int   `json:"reps,omitempty" jsonschema:"Repetitions"`
	Completed         *bool  `json:"completed,omitempty" jsonschema:"Whether the set was completed (default true)"`
}

type updateSetInput struct {
	ID        string `json:"id" jsonschema:"Set ID or prefix"`
	SetNumber int    `json:"set_number,omitempty" jsonschema:"New set number"`
	Weight    string `json:"weight,omitempty" jsonschema:"New weight as a decimal"`
	Reps      *int   `json:"reps,omitempty" jsonschema:"New repetitions"`
	Completed *bool  `json:"completed,omitempty" jsonschema:"New completion state"`
}

type setOutput struct {
	ID        string `json:"id"`
	SetNumber int    `json:"set_number"`
	Weight    string `json:"weight,omitempty"`
	Reps      *int   `json:"reps,omitempty"`
	Completed bool   `json:"completed"`
	Message   string `json:"message"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleAddExercise(ctx context.Context, req *mcp.CallToolRequest, input addExerciseInput) (*mcp.CallToolResult, exerciseOutput, error) {
	if input.Name == "" {
		return nil, exerciseOutput{}, fmt.Errorf("name is required")
	}

	existing, err := s.repo.FindExerciseByName(ctx, input.Name)
	if err == nil {
		return nil, exerciseOutput{
			ID:      shortID(existing.ID),
			Name:    existing.Name,
			Message: fmt.Sprintf("Exercise %s already exists (ID: %s)", existing.Name, shortID(existing.ID)),
		}, nil
	}
	if !storage.IsNotFound(err) {
		return nil, exerciseOutput{}, fmt.Errorf("failed to look up exercise: %w", err)
	}

	e := models.NewExercise(input.Name)
	if err := s.repo.CreateExercise(ctx, e); err != nil {
		return nil, exerciseOutput{}, fmt.Errorf("failed to create exercise: %w", err)
	}
	s.log.Debug("created exercise", "name", e.Name, "id", e.ID)

	return nil, exerciseOutput{
		ID:      shortID(e.ID),
		Name:    e.Name,
		Message: fmt.Sprintf("Added exercise %s (ID: %s)", e.Name, shortID(e.ID)),
	}, nil
}

func (s *Server) handleListExercises(ctx context.Context, req *mcp.CallToolRequest, input listExercisesInput) (*mcp.CallToolResult, listExercisesOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 100
	}

	exercises, err := s.repo.ListExercises(ctx, input.Limit)
	if err != nil {
		return nil, listExercisesOutput{}, fmt.Errorf("failed to list exercises: %w", err)
	}

	out := listExercisesOutput{Exercises: make([]exerciseSummary, 0, len(exercises))}
	for _, e := range exercises {
		out.Exercises = append(out.Exercises, exerciseSummary{ID: shortID(e.ID), Name: e.Name})
	}
	out.Count = len(out.Exercises)
	return nil, out, nil
}

func (s *Server) handleAddWorkout(ctx context.Context, req *mcp.CallToolRequest, input addWorkoutInput) (*mcp.CallToolResult, workoutOutput, error) {
	if input.Name == "" {
		return nil, workoutOutput{}, fmt.Errorf("name is required")
	}

	w := models.NewWorkout(s.user.ID, input.Name)
	if input.Date != "" {
		d, err := models.ParseDate(input.Date)
		if err != nil {
			return nil, workoutOutput{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", input.Date)
		}
		w.WithDate(d)
	}
	if input.StartedAt != "" {
		t, err := parseTimestamp(input.StartedAt)
		if err != nil {
			return nil, workoutOutput{}, err
		}
		w.WithStartedAt(t)
	}

	if err := s.repo.CreateWorkout(ctx, w); err != nil {
		return nil, workoutOutput{}, fmt.Errorf("failed to create workout: %w", err)
	}

	return nil, workoutOutput{
		ID:      shortID(w.ID),
		Name:    w.Name,
		Date:    w.DateString(),
		Message: fmt.Sprintf("Added workout %s on %s (ID: %s)", w.Name, w.DateString(), shortID(w.ID)),
	}, nil
}

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, listWorkoutsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	filter := storage.WorkoutFilter{UserID: &s.user.ID, Limit: input.Limit}
	if input.From != "" {
		d, err := models.ParseDate(input.From)
		if err != nil {
			return nil, listWorkoutsOutput{}, fmt.Errorf("invalid from date %q", input.From)
		}
		filter.From = &d
	}
	if input.To != "" {
		d, err := models.ParseDate(input.To)
		if err != nil {
			return nil, listWorkoutsOutput{}, fmt.Errorf("invalid to date %q", input.To)
		}
		filter.To = &d
	}

	workouts, err := s.repo.ListWorkouts(ctx, filter)
	if err != nil {
		return nil, listWorkoutsOutput{}, fmt.Errorf("failed to list workouts: %w", err)
	}

	out := listWorkoutsOutput{Workouts: make([]workoutSummary, 0, len(workouts))}
	for _, w := range workouts {
		out.Workouts = append(out.Workouts, workoutSummary{
			ID:        shortID(w.ID),
			Name:      w.Name,
			Date:      w.DateString(),
			Completed: w.CompletedAt != nil,
		})
	}
	out.Count = len(out.Workouts)
	return nil, out, nil
}

func (s *Server) handleGetWorkout(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, workoutDetail, error) {
	w, err := s.ownWorkout(ctx, input.ID)
	if err != nil {
		return nil, workoutDetail{}, err
	}

	detail, err := s.repo.GetWorkoutDetail(ctx, w.ID.String())
	if err != nil {
		return nil, workoutDetail{}, fmt.Errorf("failed to load workout: %w", err)
	}
	return nil, toWorkoutDetail(detail), nil
}

func (s *Server) handleAddWorkoutExercise(ctx context.Context, req *mcp.CallToolRequest, input addWorkoutExerciseInput) (*mcp.CallToolResult, workoutExerciseOutput, error) {
	w, err := s.ownWorkout(ctx, input.WorkoutID)
	if err != nil {
		return nil, workoutExerciseOutput{}, err
	}
	e, err := s.resolveExercise(ctx, input.Exercise)
	if err != nil {
		return nil, workoutExerciseOutput{}, err
	}

	we, err := s.appendWorkoutExercise(ctx, w, e, input.Order)
	if err != nil {
		return nil, workoutExerciseOutput{}, err
	}

	return nil, workoutExerciseOutput{
		ID:       shortID(we.ID),
		Exercise: e.Name,
		Order:    we.Order,
		Message:  fmt.Sprintf("Added %s to %s (ID: %s)", e.Name, w.Name, shortID(we.ID)),
	}, nil
}

func (s *Server) handleLogSet(ctx context.Context, req *mcp.CallToolRequest, input logSetInput) (*mcp.CallToolResult, setOutput, error) {
	we, err := s.resolveWorkoutExercise(ctx, input)
	if err != nil {
		return nil, setOutput{}, err
	}

	setNumber := input.SetNumber
	if setNumber <= 0 {
		existing, err := s.repo.ListSets(ctx, we.ID)
		if err != nil {
			return nil, setOutput{}, fmt.Errorf("failed to list sets: %w", err)
		}
		setNumber = models.NextSetNumber(existing)
	}

	set := models.NewSet(we.ID, setNumber)
	if input.Weight != "" {
		weight, err := models.ParseWeight(input.Weight)
		if err != nil {
			return nil, setOutput{}, err
		}
		set.WithWeight(weight)
	}
	if input.Reps != nil {
		set.WithReps(*input.Reps)
	}
	if input.Completed != nil {
		set.WithCompleted(*input.Completed)
	}

	if err := s.repo.AddSet(ctx, set); err != nil {
		return nil, setOutput{}, fmt.Errorf("failed to log set: %w", err)
	}

	out := toSetOutput(set)
	out.Message = fmt.Sprintf("Logged set %d: %s (ID: %s)", set.SetNumber, describeSet(set), shortID(set.ID))
	return nil, out, nil
}

func (s *Server) handleUpdateSet(ctx context.Context, req *mcp.CallToolRequest, input updateSetInput) (*mcp.CallToolResult, setOutput, error) {
	set, err := s.ownSet(ctx, input.ID)
	if err != nil {
		return nil, setOutput{}, err
	}

	if input.SetNumber > 0 {
		set.SetNumber = input.SetNumber
	}
	if input.Weight != "" {
		weight, err := models.ParseWeight(input.Weight)
		if err != nil {
			return nil, setOutput{}, err
		}
		set.WithWeight(weight)
	}
	if input.Reps != nil {
		set.WithReps(*input.Reps)
	}
	if input.Completed != nil {
		set.WithCompleted(*input.Completed)
	}

	if err := s.repo.UpdateSet(ctx, set); err != nil {
		return nil, setOutput{}, fmt.Errorf("failed to update set: %w", err)
	}

	out := toSetOutput(set)
	out.Message = fmt.Sprintf("Updated set %d: %s", set.SetNumber, describeSet(set))
	return nil, out, nil
}

func (s *Server) handleDeleteWorkout(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	w, err := s.ownWorkout(ctx, input.ID)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.repo.DeleteWorkout(ctx, w.ID.String()); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete workout: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted workout %s (%s)", w.Name, shortID(w.ID)),
	}, nil
}

func (s *Server) handleDeleteSet(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	set, err := s.ownSet(ctx, input.ID)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.repo.DeleteSet(ctx, set.ID.String()); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete set: %w", err)
	}

	return nil, simpleOutput{
		Message: fmt.Sprintf("Deleted set: %s", shortID(set.ID)),
	}, nil
}

// Helpers

// ownWorkout loads a workout and checks that it belongs to the acting user.
func (s *Server) ownWorkout(ctx context.Context, idOrPrefix string) (*models.Workout, error) {
	w, err := s.repo.GetWorkout(ctx, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("workout not found: %s: %w", idOrPrefix, err)
	}
	if w.UserID != s.user.ID {
		return nil, fmt.Errorf("workout not found: %s", idOrPrefix)
	}
	return w, nil
}

// ownSet loads a set and checks that its workout belongs to the acting user.
func (s *Server) ownSet(ctx context.Context, idOrPrefix string) (*models.Set, error) {
	set, err := s.repo.GetSetWithWorkoutExercise(ctx, idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("set not found: %s: %w", idOrPrefix, err)
	}
	if _, err := s.ownWorkout(ctx, set.WorkoutExercise.WorkoutID.String()); err != nil {
		return nil, fmt.Errorf("set not found: %s", idOrPrefix)
	}
	set.WorkoutExercise = nil
	return set, nil
}

// resolveExercise finds an exercise by ID prefix or name, creating it by
// name when nothing matches.
func (s *Server) resolveExercise(ctx context.Context, ref string) (*models.Exercise, error) {
	if ref == "" {
		return nil, fmt.Errorf("exercise is required")
	}

	e, err := s.repo.FindExerciseByName(ctx, ref)
	if err == nil {
		return e, nil
	}
	if !storage.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up exercise: %w", err)
	}

	if storage.IsIDReference(ref) {
		e, err = s.repo.GetExercise(ctx, ref)
		if err == nil {
			return e, nil
		}
		if errors.Is(err, storage.ErrAmbiguousPrefix) {
			return nil, err
		}
	}

	e = models.NewExercise(ref)
	if err := s.repo.CreateExercise(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create exercise: %w", err)
	}
	s.log.Debug("created exercise", "name", e.Name, "id", e.ID)
	return e, nil
}

// appendWorkoutExercise adds e to w. A nil order places it after the last entry.
func (s *Server) appendWorkoutExercise(ctx context.Context, w *models.Workout, e *models.Exercise, order *int) (*models.WorkoutExercise, error) {
	we := models.NewWorkoutExercise(w.ID, e.ID)
	if order != nil {
		we.WithOrder(*order)
	} else {
		entries, err := s.repo.ListWorkoutExercises(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list workout exercises: %w", err)
		}
		we.WithOrder(models.NextOrder(entries))
	}

	if err := s.repo.AddWorkoutExercise(ctx, we); err != nil {
		return nil, fmt.Errorf("failed to add exercise to workout: %w", err)
	}
	return we, nil
}

// resolveWorkoutExercise finds the entry a set is logged against. With a
// workout and exercise, the last matching entry is used, or one is added.
func (s *Server) resolveWorkoutExercise(ctx context.Context, input logSetInput) (*models.WorkoutExercise, error) {
	if input.WorkoutExerciseID != "" {
		we, err := s.repo.GetWorkoutExercise(ctx, input.WorkoutExerciseID)
		if err != nil {
			return nil, fmt.Errorf("workout exercise not found: %s: %w", input.WorkoutExerciseID, err)
		}
		if _, err := s.ownWorkout(ctx, we.WorkoutID.String()); err != nil {
			return nil, fmt.Errorf("workout exercise not found: %s", input.WorkoutExerciseID)
		}
		return we, nil
	}

	if input.WorkoutID == "" || input.Exercise == "" {
		return nil, fmt.Errorf("either workout_exercise_id or both workout_id and exercise are required")
	}

	w, err := s.ownWorkout(ctx, input.WorkoutID)
	if err != nil {
		return nil, err
	}
	e, err := s.resolveExercise(ctx, input.Exercise)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListWorkoutExercises(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workout exercises: %w", err)
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].ExerciseID == e.ID {
			return entries[i], nil
		}
	}
	return s.appendWorkoutExercise(ctx, w, e, nil)
}

func toWorkoutDetail(w *models.Workout) workoutDetail {
	out := workoutDetail{
		ID:        w.ID.String(),
		Name:      w.Name,
		Date:      w.DateString(),
		Exercises: make([]workoutExerciseDetail, 0, len(w.WorkoutExercises)),
	}
	if w.StartedAt != nil {
		out.StartedAt = w.StartedAt.Format(time.RFC3339)
	}
	if w.CompletedAt != nil {
		out.CompletedAt = w.CompletedAt.Format(time.RFC3339)
	}

	volume := decimal.Zero
	for _, we := range w.WorkoutExercises {
		entry := workoutExerciseDetail{
			ID:       shortID(we.ID),
			Exercise: we.ExerciseName(),
			Order:    we.Order,
			Sets:     make([]setDetail, 0, len(we.Sets)),
		}
		for _, set := range we.Sets {
			entry.Sets = append(entry.Sets, setDetail{
				ID:        shortID(set.ID),
				SetNumber: set.SetNumber,
				Weight:    formatWeight(set),
				Reps:      set.Reps,
				Completed: set.Completed,
			})
			if set.Completed {
				volume = volume.Add(set.Volume())
			}
		}
		out.Exercises = append(out.Exercises, entry)
	}
	out.Volume = volume.StringFixed(models.WeightScale)
	return out
}

func toSetOutput(set *models.Set) setOutput {
	return setOutput{
		ID:        shortID(set.ID),
		SetNumber: set.SetNumber,
		Weight:    formatWeight(set),
		Reps:      set.Reps,
		Completed: set.Completed,
	}
}

func formatWeight(set *models.Set) string {
	if set.Weight == nil {
		return ""
	}
	return set.Weight.StringFixed(models.WeightScale)
}

func describeSet(set *models.Set) string {
	desc := "bodyweight"
	if set.Weight != nil {
		desc = formatWeight(set)
	}
	if set.Reps != nil {
		desc = fmt.Sprintf("%s x %d", desc, *set.Reps)
	}
	if !set.Completed {
		desc += " (missed)"
	}
	return desc
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse("2006-01-02 15:04", s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: expected ISO 8601", s)
	}
	return t, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
