// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Snapshot load/save, journal opening, and display formatting
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/harper/provenance-standalone/internal/journal"
	"github.com/harper/provenance-standalone/internal/registry"
)

// loadRegistry restores a registry from a snapshot file, or returns a
// fresh registry when the file does not exist yet
func loadRegistry(path string) (*registry.Registry, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return registry.New(), nil
	}
	reg, err := registry.RestoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", path, err)
	}
	return reg, nil
}

// saveRegistry writes the registry state back to the snapshot file
func saveRegistry(reg *registry.Registry, path string) error {
	snap, err := reg.Snapshot()
	if err != nil {
		return fmt.Errorf("taking snapshot: %w", err)
	}
	if err := snap.SaveFile(path); err != nil {
		return fmt.Errorf("saving snapshot %s: %w", path, err)
	}
	return nil
}

// openJournal opens the scan journal at path, falling back to the
// XDG default location when path is empty
func openJournal(path string) (*journal.Journal, *journal.DB, error) {
	if path == "" {
		path = journal.DefaultDBPath()
	}
	db, err := journal.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	return journal.NewJournal(db), db, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		mins := int(diff.Minutes())
		return fmt.Sprintf("%dm ago", mins)
	} else if diff < 24*time.Hour {
		hours := int(diff.Hours())
		return fmt.Sprintf("%dh ago", hours)
	} else if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%dd ago", days)
	}
	return t.Format("2006-01-02")
}
