// ABOUTME: Sync commands for the Charm snapshot archive
// ABOUTME: Provides status, push, pull, list, wipe, and keys management
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/provenance-standalone/internal/archive"
	"github.com/harper/provenance-standalone/internal/registry"
)

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Manage the Charm snapshot archive",
		Long: `Manage the cloud archive of registry snapshots.

Provenance uses Charm for cross-machine audit via SSH keys. Pushed
snapshots are keyed by session ID and can be pulled on any device
linked to the same Charm account.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncPushCmd())
	cmd.AddCommand(newSyncPullCmd())
	cmd.AddCommand(newSyncListCmd())
	cmd.AddCommand(newSyncDeleteCmd())
	cmd.AddCommand(newSyncNowCmd())
	cmd.AddCommand(newSyncWipeCmd())
	cmd.AddCommand(newSyncKeysCmd())
	cmd.AddCommand(newSyncUnlinkCmd())

	return cmd
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sync status and connection info",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := archive.GetClient()
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}

			id, err := client.ID()
			if err != nil {
				fmt.Println("Status: Not connected")
				fmt.Println("Run 'provenance sync keys' to check your SSH keys")
				return nil
			}

			fmt.Println("Status: Connected")
			fmt.Printf("User ID: %s\n", id)
			fmt.Printf("Host: %s\n", os.Getenv("CHARM_HOST"))

			return nil
		},
	}
}

func newSyncPushCmd() *cobra.Command {
	var snapshotPath string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push a snapshot file to the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := registry.LoadSnapshotFile(snapshotPath)
			if err != nil {
				return err
			}

			client, err := archive.GetClient()
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}

			if err := client.PushSnapshot(snap); err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Pushed snapshot for session %s (%d tool, %d derived)\n",
					snap.SessionID, len(snap.ToolFacts), len(snap.DerivedFacts))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "provenance.json", "Snapshot file to push")

	return cmd
}

func newSyncPullCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "pull <session-id>",
		Short: "Pull an archived snapshot by session ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := archive.GetClient()
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}

			snap, err := client.PullSnapshot(args[0])
			if err != nil {
				return err
			}

			if err := snap.SaveFile(outputPath); err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Pulled snapshot for session %s to %s (%d tool, %d derived)\n",
					snap.SessionID, outputPath, len(snap.ToolFacts), len(snap.DerivedFacts))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "provenance.json", "File to write the pulled snapshot")

	return cmd
}

func newSyncListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived snapshot sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := archive.GetClient()
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}

			sessions, err := client.ListSnapshots()
			if err != nil {
				return err
			}

			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots archived")
				return nil
			}

			for _, session := range sessions {
				fmt.Fprintln(cmd.OutOrStdout(), session)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d snapshot(s)\n", len(sessions))
			}
			return nil
		},
	}
}

func newSyncDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete an archived snapshot by session ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := archive.GetClient()
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}

			if err := client.DeleteSnapshot(args[0]); err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted archived snapshot for session %s\n", args[0])
			}
			return nil
		},
	}
}

func newSyncNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Force immediate sync with Charm cloud",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := archive.GetClient()
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}

			fmt.Println("Syncing...")
			if err := client.Sync(); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			fmt.Println("Sync complete")
			return nil
		},
	}
}

func newSyncWipeCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Wipe all local archive data (nuclear option)",
		Long: `Completely wipe all local Charm data.

WARNING: This deletes all locally cached data. Your cloud data
remains intact and will be re-synced on next access.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				fmt.Println("This will wipe ALL local archive data!")
				fmt.Println("Run with --confirm to proceed")
				return nil
			}

			client, err := archive.GetClient()
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}

			if err := client.Reset(); err != nil {
				return fmt.Errorf("failed to wipe data: %w", err)
			}

			fmt.Println("Local archive data wiped successfully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm the wipe operation")

	return cmd
}

func newSyncKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List authorized SSH keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := archive.GetClient()
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}

			keys, err := client.GetAuthorizedKeys()
			if err != nil {
				return fmt.Errorf("failed to get authorized keys: %w", err)
			}

			if keys == "" {
				fmt.Println("No authorized keys found")
				return nil
			}

			fmt.Println("Authorized SSH keys:")
			fmt.Println(keys)

			return nil
		},
	}
}

func newSyncUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <key>",
		Short: "Remove an authorized SSH key from the account",
		Long: `Remove an authorized SSH key from your Charm account.

Pass the public key exactly as shown by 'provenance sync keys'.
Devices using that key lose access to the archive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := archive.GetClient()
			if err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}

			if err := client.UnlinkKey(args[0]); err != nil {
				return fmt.Errorf("failed to unlink key: %w", err)
			}

			fmt.Println("Key unlinked")
			return nil
		},
	}
}
