// ABOUTME: Registry snapshot archive keyed by session on Charm KV
// ABOUTME: Pushes, pulls, and lists provenance snapshots for cross-machine audit
package archive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/harper/provenance-standalone/internal/registry"
)

// SnapshotPrefix namespaces archived registry snapshots in the KV store
const SnapshotPrefix = "snapshot:"

// SnapshotKey generates the KV key for a session's snapshot
func SnapshotKey(sessionID string) string {
	return SnapshotPrefix + sessionID
}

// PushSnapshot archives a registry snapshot under its session ID.
// Pushing the same session again overwrites the previous archive entry;
// the snapshot itself is a point-in-time export, not registry state.
func (c *Client) PushSnapshot(snap *registry.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is required")
	}
	if snap.SessionID == "" {
		return fmt.Errorf("snapshot has no session ID")
	}
	if err := c.SetJSON(SnapshotKey(snap.SessionID), snap); err != nil {
		return fmt.Errorf("failed to push snapshot for session %s: %w", snap.SessionID, err)
	}
	return nil
}

// PullSnapshot retrieves an archived snapshot by session ID.
// Callers restore it with registry.Restore, which re-verifies every
// fact hash, so a tampered archive entry fails there rather than here.
func (c *Client) PullSnapshot(sessionID string) (*registry.Snapshot, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}
	var snap registry.Snapshot
	if err := c.GetJSON(SnapshotKey(sessionID), &snap); err != nil {
		return nil, fmt.Errorf("failed to pull snapshot for session %s: %w", sessionID, err)
	}
	return &snap, nil
}

// ListSnapshots returns the session IDs of all archived snapshots, sorted
func (c *Client) ListSnapshots() ([]string, error) {
	keys, err := c.ListKeys(SnapshotPrefix)
	if err != nil {
		return nil, err
	}

	sessions := make([]string, 0, len(keys))
	for _, key := range keys {
		sessions = append(sessions, strings.TrimPrefix(key, SnapshotPrefix))
	}
	sort.Strings(sessions)
	return sessions, nil
}

// DeleteSnapshot removes an archived snapshot by session ID
func (c *Client) DeleteSnapshot(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	return c.Delete(SnapshotKey(sessionID))
}
