// ABOUTME: CLI commands for logging sets against workout exercises.
// ABOUTME: Supports add, list, update, and delete subcommands.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/spf13/cobra"
)

var (
	setWeight string
	setReps   string
	setNumber int
	setMissed bool
	setDone   bool
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Log sets",
	Long: `Log the sets performed for an exercise in a workout.

Sets hang off a workout exercise (the ID printed by 'gymlog workout exercise'
and shown next to each exercise in 'gymlog workout show'). Weight is stored
with two decimal places, up to 9999.99. Leave it out for bodyweight sets.

COMMANDS:

  add      Log a set
  list     List the sets of a workout exercise
  update   Change a set
  delete   Delete a set`,
}

var setAddCmd = &cobra.Command{
	Use:     "add <workout-exercise-id>",
	Aliases: []string{"a"},
	Short:   "Log a set",
	Long: `Log a set. The set number defaults to the next one for the entry.

Examples:
  gymlog set add def456 --weight 100 --reps 5
  gymlog set add def456 --reps 12              # bodyweight
  gymlog set add def456 --weight 110 --reps 2 --missed`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		we, err := repo.GetWorkoutExercise(ctx, args[0])
		if err != nil {
			return fmt.Errorf("workout exercise not found: %s", args[0])
		}

		number := setNumber
		if number <= 0 {
			existing, err := repo.ListSets(ctx, we.ID)
			if err != nil {
				return fmt.Errorf("failed to list sets: %w", err)
			}
			number = models.NextSetNumber(existing)
		}

		s := models.NewSet(we.ID, number)
		if err := applySetFlags(s); err != nil {
			return err
		}

		if err := repo.AddSet(ctx, s); err != nil {
			return fmt.Errorf("failed to log set: %w", err)
		}

		color.Green("✓ Logged set %d", s.SetNumber)
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(shortID(s.ID)), describeSet(s))
		return nil
	},
}

var setListCmd = &cobra.Command{
	Use:     "list <workout-exercise-id>",
	Aliases: []string{"ls"},
	Short:   "List sets of a workout exercise",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		we, err := repo.GetWorkoutExerciseWithRelations(ctx, args[0])
		if err != nil {
			return fmt.Errorf("workout exercise not found: %s", args[0])
		}

		if we.Workout != nil {
			fmt.Printf("%s (%s %s)\n", we.ExerciseName(), we.Workout.DateString(), we.Workout.Name)
		}
		if len(we.Sets) == 0 {
			fmt.Println("No sets logged.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, s := range we.Sets {
			fmt.Printf("%s set %d: %s\n", faint.Sprint(shortID(s.ID)), s.SetNumber, describeSet(s))
		}
		return nil
	},
}

var setUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a set",
	Long: `Update a set. Only the given fields change.

Examples:
  gymlog set update 9f8e7d --weight 102.5
  gymlog set update 9f8e7d --reps 4 --missed
  gymlog set update 9f8e7d --weight none       # clear to bodyweight`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := repo.GetSet(ctx, args[0])
		if err != nil {
			return fmt.Errorf("set not found: %s", args[0])
		}

		if setNumber > 0 {
			s.SetNumber = setNumber
		}
		if err := applySetFlags(s); err != nil {
			return err
		}

		if err := repo.UpdateSet(ctx, s); err != nil {
			return fmt.Errorf("failed to update set: %w", err)
		}

		color.Green("✓ Updated set %d", s.SetNumber)
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(shortID(s.ID)), describeSet(s))
		return nil
	},
}

var setDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a set",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := repo.GetSet(ctx, args[0])
		if err != nil {
			return fmt.Errorf("set not found: %s", args[0])
		}

		if err := repo.DeleteSet(ctx, s.ID.String()); err != nil {
			return fmt.Errorf("failed to delete set: %w", err)
		}

		color.Yellow("✗ Deleted set %d", s.SetNumber)
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(shortID(s.ID)), describeSet(s))
		return nil
	},
}

// applySetFlags copies --weight, --reps, --missed and --done onto s.
func applySetFlags(s *models.Set) error {
	switch setWeight {
	case "":
	case "none":
		s.Weight = nil
	default:
		w, err := models.ParseWeight(setWeight)
		if err != nil {
			return err
		}
		s.WithWeight(w)
	}

	switch setReps {
	case "":
	case "none":
		s.Reps = nil
	default:
		reps, err := strconv.Atoi(setReps)
		if err != nil || reps < 0 {
			return fmt.Errorf("invalid reps: %s", setReps)
		}
		s.WithReps(reps)
	}

	if setMissed && setDone {
		return fmt.Errorf("--missed and --done are mutually exclusive")
	}
	if setMissed {
		s.WithCompleted(false)
	}
	if setDone {
		s.WithCompleted(true)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{setAddCmd, setUpdateCmd} {
		c.Flags().StringVarP(&setWeight, "weight", "w", "", "weight, up to two decimals (\"none\" for bodyweight)")
		c.Flags().StringVarP(&setReps, "reps", "r", "", "repetitions")
		c.Flags().IntVar(&setNumber, "number", 0, "set number (default: next)")
		c.Flags().BoolVar(&setMissed, "missed", false, "mark the set as not completed")
	}
	setUpdateCmd.Flags().BoolVar(&setDone, "done", false, "mark the set as completed")

	setCmd.AddCommand(setAddCmd)
	setCmd.AddCommand(setListCmd)
	setCmd.AddCommand(setUpdateCmd)
	setCmd.AddCommand(setDeleteCmd)
	rootCmd.AddCommand(setCmd)
}
