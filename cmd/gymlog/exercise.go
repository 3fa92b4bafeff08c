// ABOUTME: CLI commands for managing the exercise catalog.
// ABOUTME: Supports add, list, show, rename, and delete subcommands.
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

var exerciseLimit int

var exerciseCmd = &cobra.Command{
	Use:     "exercise",
	Aliases: []string{"ex"},
	Short:   "Manage exercises",
	Long: `Manage the shared exercise catalog (Squat, Bench Press, ...).

Exercises can be referred to by name (case-insensitive) or by ID prefix.

COMMANDS:

  add      Add an exercise
  list     List exercises alphabetically
  show     Show where an exercise was used
  rename   Rename an exercise
  delete   Delete an exercise and every workout entry that used it`,
}

var exerciseAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if existing, err := repo.FindExerciseByName(ctx, args[0]); err == nil {
			return fmt.Errorf("exercise %s already exists (ID: %s)", existing.Name, shortID(existing.ID))
		}

		e := models.NewExercise(args[0])
		if err := repo.CreateExercise(ctx, e); err != nil {
			return fmt.Errorf("failed to create exercise: %w", err)
		}

		color.Green("✓ Added exercise %s", e.Name)
		fmt.Printf("  ID: %s\n", shortID(e.ID))
		return nil
	},
}

var exerciseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List exercises",
	RunE: func(cmd *cobra.Command, args []string) error {
		exercises, err := repo.ListExercises(cmd.Context(), exerciseLimit)
		if err != nil {
			return fmt.Errorf("failed to list exercises: %w", err)
		}

		if len(exercises) == 0 {
			fmt.Println("No exercises found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, e := range exercises {
			fmt.Printf("%s %s\n", faint.Sprint(shortID(e.ID)), e.Name)
		}
		return nil
	},
}

var exerciseShowCmd = &cobra.Command{
	Use:   "show <name-or-id>",
	Short: "Show an exercise and the workouts that used it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := findExercise(ctx, args[0])
		if err != nil {
			return err
		}
		e, err = repo.GetExerciseWithWorkoutExercises(ctx, e.ID.String())
		if err != nil {
			return fmt.Errorf("failed to load exercise: %w", err)
		}

		fmt.Printf("Exercise: %s\n", e.Name)
		fmt.Printf("ID: %s\n", shortID(e.ID))

		if len(e.WorkoutExercises) == 0 {
			fmt.Println("\nNot used in any workout yet.")
			return nil
		}

		fmt.Printf("\nUsed in %d workout(s):\n", len(e.WorkoutExercises))
		faint := color.New(color.Faint)
		for _, we := range e.WorkoutExercises {
			if we.Workout == nil {
				continue
			}
			fmt.Printf("  %s %s %s\n", faint.Sprint(shortID(we.Workout.ID)), we.Workout.DateString(), we.Workout.Name)
		}
		return nil
	},
}

var exerciseRenameCmd = &cobra.Command{
	Use:   "rename <name-or-id> <new-name>",
	Short: "Rename an exercise",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := findExercise(ctx, args[0])
		if err != nil {
			return err
		}

		old := e.Name
		e.Name = args[1]
		if err := repo.UpdateExercise(ctx, e); err != nil {
			return fmt.Errorf("failed to rename exercise: %w", err)
		}

		color.Green("✓ Renamed %s to %s", old, e.Name)
		return nil
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:     "delete <name-or-id>",
	Aliases: []string{"rm"},
	Short:   "Delete an exercise",
	Long: `Delete an exercise by name or ID prefix.

CAUTION:

  Every workout entry that used this exercise is deleted with it, along
  with the sets logged against those entries. Workouts themselves stay.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := findExercise(ctx, args[0])
		if err != nil {
			return err
		}

		if err := repo.DeleteExercise(ctx, e.ID.String()); err != nil {
			return fmt.Errorf("failed to delete exercise: %w", err)
		}

		color.Yellow("✗ Deleted exercise %s", e.Name)
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(shortID(e.ID)))
		return nil
	},
}

// findExercise looks an exercise up by name, then by ID prefix.
func findExercise(ctx context.Context, ref string) (*models.Exercise, error) {
	e, err := repo.FindExerciseByName(ctx, ref)
	if err == nil {
		return e, nil
	}
	if !storage.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up exercise: %w", err)
	}

	if !storage.IsIDReference(ref) {
		return nil, fmt.Errorf("exercise not found: %s: %w", ref, storage.ErrNotFound)
	}
	e, err = repo.GetExercise(ctx, ref)
	if err != nil {
		if errors.Is(err, storage.ErrAmbiguousPrefix) {
			return nil, err
		}
		return nil, fmt.Errorf("exercise not found: %s: %w", ref, storage.ErrNotFound)
	}
	return e, nil
}

func init() {
	exerciseListCmd.Flags().IntVarP(&exerciseLimit, "limit", "n", 0, "max number of results (0 for all)")

	exerciseCmd.AddCommand(exerciseAddCmd)
	exerciseCmd.AddCommand(exerciseListCmd)
	exerciseCmd.AddCommand(exerciseShowCmd)
	exerciseCmd.AddCommand(exerciseRenameCmd)
	exerciseCmd.AddCommand(exerciseDeleteCmd)
	rootCmd.AddCommand(exerciseCmd)
}
