// ABOUTME: CLI commands for managing workouts.
// ABOUTME: Supports add, list, show, start, finish, exercise, and delete subcommands.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	workoutDate     string
	workoutStarted  string
	workoutFrom     string
	workoutTo       string
	workoutLimit    int
	workoutAllUsers bool
	workoutAt       string
	workoutOrder    int
)

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Manage workouts",
	Long: `Track workout sessions.

A workout is a dated session owned by a user. Exercises are added to a
workout in order, and sets are logged against each of those entries.

WORKFLOW:

  1. Create a workout:       gymlog workout add "Leg Day"
  2. Add an exercise to it:  gymlog workout exercise abc123 Squat
  3. Log sets:               gymlog set add def456 --weight 100 --reps 5
  4. View workout details:   gymlog workout show abc123

COMMANDS:

  add       Create a new workout
  list      List recent workouts
  show      View workout with exercises and sets
  start     Record when the workout started
  finish    Record when the workout finished
  exercise  Add an exercise to a workout
  delete    Delete a workout with its exercises and sets`,
}

var workoutAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new workout",
	Long: `Add a new workout for the acting user.

Examples:
  gymlog workout add "Leg Day"
  gymlog workout add "Push" --date 2024-01-02
  gymlog workout add "Pull" --started "2024-01-03 18:00"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		u, err := actingUser(ctx)
		if err != nil {
			return err
		}

		w := models.NewWorkout(u.ID, args[0])
		if workoutDate != "" {
			d, err := parseDate(workoutDate)
			if err != nil {
				return err
			}
			w.WithDate(d)
		}
		if workoutStarted != "" {
			t, err := parseTime(workoutStarted)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", workoutStarted)
			}
			w.WithStartedAt(t)
		}

		if err := repo.CreateWorkout(ctx, w); err != nil {
			return fmt.Errorf("failed to create workout: %w", err)
		}

		color.Green("✓ Added workout %s", w.Name)
		fmt.Printf("  ID: %s\n", shortID(w.ID))
		fmt.Printf("  Date: %s\n", w.DateString())
		return nil
	},
}

var workoutListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List workouts",
	Long: `List workouts, newest first.

Examples:
  gymlog workout list
  gymlog workout list --from 2024-01-01 --to 2024-01-31
  gymlog workout list --all-users -n 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		filter := storage.WorkoutFilter{Limit: workoutLimit}

		if !workoutAllUsers {
			u, err := actingUser(ctx)
			if err != nil {
				return err
			}
			filter.UserID = &u.ID
		}
		if workoutFrom != "" {
			d, err := parseDate(workoutFrom)
			if err != nil {
				return err
			}
			filter.From = &d
		}
		if workoutTo != "" {
			d, err := parseDate(workoutTo)
			if err != nil {
				return err
			}
			filter.To = &d
		}

		workouts, err := repo.ListWorkouts(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		if len(workouts) == 0 {
			fmt.Println("No workouts found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, w := range workouts {
			fmt.Printf("%s %s %s %s\n",
				faint.Sprint(shortID(w.ID)),
				faint.Sprint(w.DateString()),
				padRight(truncate(w.Name, 24), 24),
				formatDuration(w.Duration()))
		}
		return nil
	},
}

var workoutShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show workout details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := repo.GetWorkoutDetail(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get workout: %w", err)
		}

		fmt.Printf("Workout: %s\n", shortID(w.ID))
		fmt.Printf("Name: %s\n", w.Name)
		fmt.Printf("Date: %s\n", w.DateString())
		if w.StartedAt != nil {
			fmt.Printf("Started: %s\n", w.StartedAt.Local().Format("2006-01-02 15:04"))
		}
		if w.CompletedAt != nil {
			fmt.Printf("Finished: %s\n", w.CompletedAt.Local().Format("2006-01-02 15:04"))
		}
		if d := formatDuration(w.Duration()); d != "" {
			fmt.Printf("Duration: %s\n", d)
		}

		faint := color.New(color.Faint)
		volume := decimal.Zero
		for _, we := range w.WorkoutExercises {
			fmt.Printf("\n%s %s\n", faint.Sprint(shortID(we.ID)), color.New(color.Bold).Sprint(we.ExerciseName()))
			for _, s := range we.Sets {
				fmt.Printf("  %s set %d: %s\n", faint.Sprint(shortID(s.ID)), s.SetNumber, describeSet(s))
				if s.Completed {
					volume = volume.Add(s.Volume())
				}
			}
		}
		if len(w.WorkoutExercises) > 0 {
			fmt.Printf("\nVolume: %s\n", volume.StringFixed(models.WeightScale))
		}
		return nil
	},
}

var workoutStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Mark a workout as started",
	Long: `Record the start time of a workout (now unless --at is given).

Examples:
  gymlog workout start abc123
  gymlog workout start abc123 --at "2024-01-01 18:00"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return stampWorkout(cmd, args[0], func(w *models.Workout, t time.Time) {
			w.WithStartedAt(t)
		}, "Started")
	},
}

var workoutFinishCmd = &cobra.Command{
	Use:     "finish <id>",
	Aliases: []string{"done"},
	Short:   "Mark a workout as finished",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return stampWorkout(cmd, args[0], func(w *models.Workout, t time.Time) {
			w.WithCompletedAt(t)
		}, "Finished")
	},
}

func stampWorkout(cmd *cobra.Command, idOrPrefix string, apply func(*models.Workout, time.Time), verb string) error {
	ctx := cmd.Context()
	w, err := repo.GetWorkout(ctx, idOrPrefix)
	if err != nil {
		return fmt.Errorf("workout not found: %s", idOrPrefix)
	}

	at := models.Now()
	if workoutAt != "" {
		at, err = parseTime(workoutAt)
		if err != nil {
			return fmt.Errorf("invalid timestamp: %s", workoutAt)
		}
	}
	apply(w, at)

	if w.StartedAt != nil && w.CompletedAt != nil && w.CompletedAt.Before(*w.StartedAt) {
		return fmt.Errorf("workout cannot finish before it starts")
	}
	if err := repo.UpdateWorkout(ctx, w); err != nil {
		return fmt.Errorf("failed to update workout: %w", err)
	}

	color.Green("✓ %s %s", verb, w.Name)
	fmt.Printf("  %s\n", at.Local().Format("2006-01-02 15:04"))
	return nil
}

var workoutExerciseCmd = &cobra.Command{
	Use:   "exercise <workout-id> <exercise>",
	Short: "Add an exercise to a workout",
	Long: `Add an exercise to a workout. The exercise may be given by name or ID
prefix; unknown names are added to the catalog.

Examples:
  gymlog workout exercise abc123 Squat
  gymlog workout exercise abc123 "Bench Press" --order 1`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w, err := repo.GetWorkout(ctx, args[0])
		if err != nil {
			return fmt.Errorf("workout not found: %s", args[0])
		}

		e, err := findExercise(ctx, args[1])
		if err != nil {
			if !storage.IsNotFound(err) {
				return err
			}
			e = models.NewExercise(args[1])
			if err := repo.CreateExercise(ctx, e); err != nil {
				return fmt.Errorf("failed to create exercise: %w", err)
			}
			logger.Debug("created exercise", "name", e.Name)
		}

		we := models.NewWorkoutExercise(w.ID, e.ID)
		if workoutOrder >= 0 {
			we.WithOrder(workoutOrder)
		} else {
			entries, err := repo.ListWorkoutExercises(ctx, w.ID)
			if err != nil {
				return fmt.Errorf("failed to list workout exercises: %w", err)
			}
			we.WithOrder(models.NextOrder(entries))
		}

		if err := repo.AddWorkoutExercise(ctx, we); err != nil {
			return fmt.Errorf("failed to add exercise: %w", err)
		}

		color.Green("✓ Added %s to %s", e.Name, w.Name)
		fmt.Printf("  ID: %s\n", shortID(we.ID))
		fmt.Printf("  Order: %d\n", we.Order)
		return nil
	},
}

var workoutDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a workout",
	Long:    `Delete a workout by ID or ID prefix, with its exercises and sets.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w, err := repo.GetWorkout(ctx, args[0])
		if err != nil {
			return fmt.Errorf("workout not found: %s", args[0])
		}

		if err := repo.DeleteWorkout(ctx, w.ID.String()); err != nil {
			return fmt.Errorf("failed to delete workout: %w", err)
		}

		color.Yellow("✗ Deleted workout %s", w.Name)
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(shortID(w.ID)), w.DateString())
		return nil
	},
}

func init() {
	workoutAddCmd.Flags().StringVar(&workoutDate, "date", "", "calendar date (YYYY-MM-DD, default today)")
	workoutAddCmd.Flags().StringVar(&workoutStarted, "started", "", "start time (YYYY-MM-DD HH:MM)")

	workoutListCmd.Flags().StringVar(&workoutFrom, "from", "", "earliest date (YYYY-MM-DD)")
	workoutListCmd.Flags().StringVar(&workoutTo, "to", "", "latest date (YYYY-MM-DD)")
	workoutListCmd.Flags().IntVarP(&workoutLimit, "limit", "n", 20, "max number of results")
	workoutListCmd.Flags().BoolVar(&workoutAllUsers, "all-users", false, "list workouts of every user")

	workoutStartCmd.Flags().StringVar(&workoutAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
	workoutFinishCmd.Flags().StringVar(&workoutAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")

	workoutExerciseCmd.Flags().IntVar(&workoutOrder, "order", -1, "position in the workout (default: after the last exercise)")

	workoutCmd.AddCommand(workoutAddCmd)
	workoutCmd.AddCommand(workoutListCmd)
	workoutCmd.AddCommand(workoutShowCmd)
	workoutCmd.AddCommand(workoutStartCmd)
	workoutCmd.AddCommand(workoutFinishCmd)
	workoutCmd.AddCommand(workoutExerciseCmd)
	workoutCmd.AddCommand(workoutDeleteCmd)
	rootCmd.AddCommand(workoutCmd)
}
