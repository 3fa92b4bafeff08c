// ABOUTME: CLI commands for exporting and importing workout data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats and JSON import.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportUser   string
	exportSince  string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export workout data",
	Long: `Export workout data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore and import)
  yaml       YAML export (human-readable)
  markdown   Markdown tables per workout (for sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --user-id      Only include this user's workouts (markdown only)
  --since        Only include workouts on or after this date (markdown only)

EXAMPLES:

  gymlog export json                          # Export all data as JSON
  gymlog export json -o backup.json           # Save to file
  gymlog export yaml                          # Export as YAML
  gymlog export markdown --since 2024-01-01   # Workouts from 2024 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = repo.ExportJSON(ctx)
		case "yaml":
			data, err = repo.ExportYAML(ctx)
		case "markdown", "md":
			var userID *uuid.UUID
			if exportUser != "" {
				u, err := repo.GetUser(ctx, exportUser)
				if err != nil {
					return fmt.Errorf("user not found: %s", exportUser)
				}
				userID = &u.ID
			}
			var since *time.Time
			if exportSince != "" {
				d, err := parseDate(exportSince)
				if err != nil {
					return err
				}
				since = &d
			}
			md, mdErr := repo.ExportMarkdown(ctx, userID, since)
			data, err = []byte(md), mdErr
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import workout data from JSON",
	Long: `Import workout data from a JSON file written by 'gymlog export json'.

Rows keep their IDs and timestamps. The import runs in a single transaction:
if any row already exists, nothing is imported.

EXAMPLES:

  gymlog import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		if err := repo.ImportJSON(cmd.Context(), data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportUser, "user-id", "", "only include this user's workouts (markdown only)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include workouts since date (YYYY-MM-DD)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
