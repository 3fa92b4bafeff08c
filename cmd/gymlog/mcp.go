// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/gymlog/internal/mcp"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and acts on behalf of the user
selected with --user (default "local"). Logs go to stderr.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "gymlog": {
        "command": "gymlog",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_exercise          Define an exercise
  list_exercises        List known exercises
  add_workout           Create a workout session
  list_workouts         List recent workouts
  get_workout           Get a workout with exercises and sets
  add_workout_exercise  Add an exercise to a workout
  log_set               Log a set
  update_set            Change a set
  delete_workout        Delete a workout
  delete_set            Delete a set

AVAILABLE RESOURCES:

  gymlog://recent       Last 5 workouts in full
  gymlog://exercises    Exercise catalog with usage
  gymlog://summary      7 and 30 day training summary`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		server, err := mcp.NewServer(ctx, repo, mcp.Options{
			ClerkUserID: cfg.GetUser(),
			Version:     version,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
