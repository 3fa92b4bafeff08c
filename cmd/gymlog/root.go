// ABOUTME: Root Cobra command for gymlog CLI.
// ABOUTME: Loads config, builds the logger, and opens storage via PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harperreed/gymlog/internal/config"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

// skipStore marks commands that run without an open store.
const skipStore = "skip-store"

var (
	dbPath      string
	backendFlag string
	databaseURL string
	userFlag    string
	verbose     bool

	cfg    *config.Config
	logger *log.Logger
	repo   *storage.DB
)

var rootCmd = &cobra.Command{
	Use:   "gymlog",
	Short: "Strength training log",
	Long: `Gymlog records strength training: users, exercises, workouts, the exercises
performed in each workout, and the individual sets.

QUICK START:

  $ gymlog workout add "Leg Day" --date 2024-01-01   # Create a workout
  $ gymlog workout exercise abc123 Squat             # Add an exercise to it
  $ gymlog set add def456 --weight 100 --reps 5      # Log a set
  $ gymlog workout show abc123                       # See the full session

STORAGE:

  SQLite (default)  ~/.local/share/gymlog/gymlog.db
  Postgres          --backend postgres --database-url postgres://...

  Deleting a user removes their workouts. Deleting a workout or exercise
  removes its workout exercises, and those remove their sets.

CONFIGURATION:

  ~/.config/gymlog/config.json, overridden by GYMLOG_* environment
  variables, overridden by flags.

MCP INTEGRATION:

  Run 'gymlog mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "gymlog": { "command": "gymlog", "args": ["mcp"] }
    }
  }`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cfg)

		logger, err = newLogger(cfg)
		if err != nil {
			return err
		}

		if cmd.Annotations[skipStore] != "" {
			return nil
		}

		// PostRun is skipped when a command fails.
		if repo != nil {
			_ = repo.Close()
		}

		repo, err = openStore(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

// applyFlags layers command-line flags over the loaded config.
func applyFlags(c *config.Config) {
	if backendFlag != "" {
		c.Backend = backendFlag
	}
	if databaseURL != "" {
		c.DatabaseURL = databaseURL
		if backendFlag == "" {
			c.Backend = config.BackendPostgres
		}
	}
	if userFlag != "" {
		c.User = userFlag
	}
	if verbose {
		c.LogLevel = "debug"
	}
}

func newLogger(c *config.Config) (*log.Logger, error) {
	level, err := c.GetLogLevel()
	if err != nil {
		return nil, err
	}
	l := log.NewWithOptions(os.Stderr, log.Options{
		Level:  level,
		Prefix: "gymlog",
	})
	return l, nil
}

func openStore(ctx context.Context) (*storage.DB, error) {
	if dbPath != "" && cfg.GetBackend() == config.BackendSQLite {
		return storage.Open(config.ExpandPath(dbPath), cfg.StorageOptions(logger))
	}
	return cfg.OpenStorage(ctx, logger)
}

// actingUser returns the configured user, creating it on first use.
func actingUser(ctx context.Context) (*models.User, error) {
	u, created, err := repo.EnsureUser(ctx, models.NewUser(cfg.GetUser()))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %s: %w", cfg.GetUser(), err)
	}
	if created {
		logger.Info("created user", "clerk_user_id", u.ClerkUserID)
	}
	return u, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default: ~/.local/share/gymlog/gymlog.db)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres connection URL")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "clerk user ID to act as (default: local)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
