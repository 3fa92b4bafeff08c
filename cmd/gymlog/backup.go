// ABOUTME: CLI commands for Charm-backed snapshot backups.
// ABOUTME: Supports push, list, restore, and delete of full JSON exports.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/charm"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/spf13/cobra"
)

// snapshotter is the subset of the Charm client the backup commands use.
type snapshotter interface {
	PushSnapshot(export []byte, host string, counts map[string]int) (*charm.Snapshot, error)
	ListSnapshots() ([]charm.Snapshot, error)
	GetSnapshot(idPrefix string) (*charm.Snapshot, []byte, error)
	DeleteSnapshot(idPrefix string) error
	PruneSnapshots(keep int) (int, error)
	Close() error
}

// openSnapshots connects to Charm KV. Tests replace it with an in-memory store.
var openSnapshots = func() (snapshotter, error) {
	return charm.Open()
}

var backupKeep int

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up workout data to Charm Cloud",
	Long: `Store full JSON exports as snapshots in Charm KV.

Snapshots are E2E encrypted with your SSH key and synced through the Charm
server (CHARM_HOST, default charm.2389.dev). Each snapshot is a complete
export, so any one of them can rebuild an empty store.

COMMANDS:

  push      Take a snapshot of the open store
  list      List snapshots, newest first
  restore   Import a snapshot into the open store (which must be empty)
  delete    Delete a snapshot

EXAMPLES:

  gymlog backup push --keep 10
  gymlog backup list
  gymlog --db ./restored.db backup restore 01HQ3`,
}

var backupPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		data, err := repo.ExportJSON(ctx)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		counts, err := repo.CountRows(ctx)
		if err != nil {
			return fmt.Errorf("failed to count rows: %w", err)
		}
		host, _ := os.Hostname()

		client, err := openSnapshots()
		if err != nil {
			return fmt.Errorf("failed to open charm: %w", err)
		}
		defer client.Close()

		snap, err := client.PushSnapshot(data, host, counts)
		if err != nil {
			return err
		}
		color.Green("✓ Pushed snapshot %s", snap.ID)
		fmt.Printf("  %d workouts, %d sets, %d bytes\n",
			counts[storage.TableWorkouts], counts[storage.TableSets], snap.Size)

		if backupKeep > 0 {
			pruned, err := client.PruneSnapshots(backupKeep)
			if err != nil {
				return fmt.Errorf("failed to prune snapshots: %w", err)
			}
			if pruned > 0 {
				fmt.Printf("  Pruned %d old snapshot(s)\n", pruned)
			}
		}
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:         "list",
	Aliases:     []string{"ls"},
	Short:       "List snapshots",
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openSnapshots()
		if err != nil {
			return fmt.Errorf("failed to open charm: %w", err)
		}
		defer client.Close()

		snaps, err := client.ListSnapshots()
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("No snapshots found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, s := range snaps {
			fmt.Printf("%s %s %s %d workouts\n",
				s.ID,
				faint.Sprint(s.CreatedAt.Local().Format("2006-01-02 15:04")),
				padRight(s.Host, 16),
				s.Counts[storage.TableWorkouts])
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <snapshot-id>",
	Short: "Restore a snapshot into the open store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openSnapshots()
		if err != nil {
			return fmt.Errorf("failed to open charm: %w", err)
		}
		defer client.Close()

		snap, data, err := client.GetSnapshot(args[0])
		if err != nil {
			return err
		}
		if err := repo.ImportJSON(cmd.Context(), data); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		color.Green("✓ Restored snapshot %s", snap.ID)
		return nil
	},
}

var backupDeleteCmd = &cobra.Command{
	Use:         "delete <snapshot-id>",
	Aliases:     []string{"rm"},
	Short:       "Delete a snapshot",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipStore: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := openSnapshots()
		if err != nil {
			return fmt.Errorf("failed to open charm: %w", err)
		}
		defer client.Close()

		if err := client.DeleteSnapshot(args[0]); err != nil {
			return err
		}
		color.Yellow("✗ Deleted snapshot %s", args[0])
		return nil
	},
}

func init() {
	backupPushCmd.Flags().IntVar(&backupKeep, "keep", 0, "prune to the newest N snapshots after pushing (0 keeps all)")

	backupCmd.AddCommand(backupPushCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupDeleteCmd)
	rootCmd.AddCommand(backupCmd)
}
