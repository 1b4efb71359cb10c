// ABOUTME: Tests for the sync command group
// ABOUTME: Verifies command structure and flags without touching the network

package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestNewSyncCmd(t *testing.T) {
	cmd := NewSyncCmd()

	if cmd.Use != "sync" {
		t.Errorf("Use = %q, want %q", cmd.Use, "sync")
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if !contains(cmd.Long, "Charm") {
		t.Error("Long description should mention Charm")
	}
}

func TestSyncCmd_Subcommands(t *testing.T) {
	cmd := NewSyncCmd()

	expectedSubcommands := []string{
		"status",
		"push",
		"pull",
		"list",
		"delete",
		"now",
		"wipe",
		"keys",
		"unlink",
	}

	for _, subCmdName := range expectedSubcommands {
		t.Run(subCmdName, func(t *testing.T) {
			found := false
			for _, sub := range cmd.Commands() {
				if sub.Use == subCmdName || strings.HasPrefix(sub.Use, subCmdName+" ") {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Subcommand %q not found", subCmdName)
			}
		})
	}
}

func TestSyncCmd_PushFlags(t *testing.T) {
	cmd := NewSyncCmd()

	var pushCmd *cobra.Command
	for _, sub := range cmd.Commands() {
		if sub.Use == "push" {
			pushCmd = sub
			break
		}
	}
	if pushCmd == nil {
		t.Fatal("push subcommand not found")
	}

	flag := pushCmd.Flags().Lookup("snapshot")
	if flag == nil {
		t.Fatal("--snapshot flag not found on push")
	}
	if flag.DefValue != "provenance.json" {
		t.Errorf("--snapshot default = %q, want %q", flag.DefValue, "provenance.json")
	}
}

func TestSyncCmd_PullFlags(t *testing.T) {
	cmd := NewSyncCmd()

	var pullCmd *cobra.Command
	for _, sub := range cmd.Commands() {
		if strings.HasPrefix(sub.Use, "pull") {
			pullCmd = sub
			break
		}
	}
	if pullCmd == nil {
		t.Fatal("pull subcommand not found")
	}

	flag := pullCmd.Flags().Lookup("output")
	if flag == nil {
		t.Fatal("--output flag not found on pull")
	}
	if flag.DefValue != "provenance.json" {
		t.Errorf("--output default = %q, want %q", flag.DefValue, "provenance.json")
	}
}

func TestSyncCmd_WipeRequiresConfirm(t *testing.T) {
	cmd := NewSyncCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"wipe"})

	// Without --confirm the command refuses before touching the archive
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

func TestSyncCmd_DeleteRequiresSessionID(t *testing.T) {
	cmd := NewSyncCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"delete"})

	// Argument validation rejects the call before any archive connection
	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing session ID, got nil")
	}
}

func TestSyncCmd_UnlinkRequiresKey(t *testing.T) {
	cmd := NewSyncCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"unlink"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing key argument, got nil")
	}
}

func TestSyncCmd_PushMissingSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	cmd := NewSyncCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"push", "--snapshot", path})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing snapshot file, got nil")
	}
	if !contains(err.Error(), "failed to read snapshot") {
		t.Errorf("error = %q, want snapshot read failure", err.Error())
	}
}
