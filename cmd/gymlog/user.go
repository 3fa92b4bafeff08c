// ABOUTME: CLI commands for managing users.
// ABOUTME: Supports add, list, show, and delete subcommands.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

var (
	userEmail     string
	userUsername  string
	userFirstName string
	userLastName  string
	userLimit     int
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
	Long: `Manage the people whose workouts are stored.

A user is identified by an external clerk user ID. Workouts created from the
CLI belong to the user selected with --user (or GYMLOG_USER), which defaults
to "local" and is created on first use.

COMMANDS:

  add      Register a user
  list     List users
  show     Show a user and their workouts
  delete   Delete a user and all their workouts`,
}

var userAddCmd = &cobra.Command{
	Use:   "add <clerk-user-id>",
	Short: "Add a user",
	Long: `Add a user with an external identity.

Examples:
  gymlog user add user_2abc --email ada@example.com
  gymlog user add user_2def --first Ada --last Lovelace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u := models.NewUser(args[0])
		if userEmail != "" {
			u.WithEmail(userEmail)
		}
		if userUsername != "" {
			u.WithUsername(userUsername)
		}
		u.WithName(userFirstName, userLastName)

		if err := repo.CreateUser(cmd.Context(), u); err != nil {
			if errors.Is(err, storage.ErrDuplicateIdentity) {
				return fmt.Errorf("user %s already exists", args[0])
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		color.Green("✓ Added user %s", u.DisplayName())
		fmt.Printf("  ID: %s\n", shortID(u.ID))
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := repo.ListUsers(cmd.Context(), userLimit)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, u := range users {
			fmt.Printf("%s %s %s\n",
				faint.Sprint(shortID(u.ID)),
				padRight(u.ClerkUserID, 24),
				u.DisplayName())
		}
		return nil
	},
}

var userShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a user and their workouts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := repo.GetUserWithWorkouts(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		fmt.Printf("User: %s\n", shortID(u.ID))
		fmt.Printf("Clerk ID: %s\n", u.ClerkUserID)
		if u.Email != nil {
			fmt.Printf("Email: %s\n", *u.Email)
		}
		if u.Username != nil {
			fmt.Printf("Username: %s\n", *u.Username)
		}
		if u.FirstName != nil || u.LastName != nil {
			fmt.Printf("Name: %s\n", u.DisplayName())
		}
		fmt.Printf("Created: %s\n", u.CreatedAt.Local().Format("2006-01-02 15:04"))

		if len(u.Workouts) > 0 {
			fmt.Printf("\nWorkouts (%d):\n", len(u.Workouts))
			faint := color.New(color.Faint)
			for _, w := range u.Workouts {
				fmt.Printf("  %s %s %s\n", faint.Sprint(shortID(w.ID)), w.DateString(), w.Name)
			}
		}
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a user",
	Long: `Delete a user by ID or ID prefix.

CAUTION:

  This also deletes every workout the user owns, with their exercises
  and sets. There is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := repo.GetUser(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("user not found: %s", args[0])
		}

		if err := repo.DeleteUser(cmd.Context(), u.ID.String()); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		color.Yellow("✗ Deleted user %s", u.DisplayName())
		fmt.Printf("  %s\n", color.New(color.Faint).Sprint(shortID(u.ID)))
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userAddCmd.Flags().StringVar(&userUsername, "username", "", "username")
	userAddCmd.Flags().StringVar(&userFirstName, "first", "", "first name")
	userAddCmd.Flags().StringVar(&userLastName, "last", "", "last name")

	userListCmd.Flags().IntVarP(&userLimit, "limit", "n", 50, "max number of results")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userShowCmd)
	userCmd.AddCommand(userDeleteCmd)
	rootCmd.AddCommand(userCmd)
}
