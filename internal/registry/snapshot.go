// ABOUTME: JSON snapshot export and restore of a registry for audit
// ABOUTME: Restore re-derives every hash, so a tampered snapshot fails loudly
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/harper/provenance-standalone/internal/models"
)

// SnapshotSchemaVersion is bumped when the snapshot layout changes
const SnapshotSchemaVersion = 1

// Snapshot is a point-in-time JSON export of one registry, split by fact
// kind so it round-trips without polymorphic decoding. Snapshots exist for
// audit and for the CLI; a live registry never reads through one.
type Snapshot struct {
	SchemaVersion int                   `json:"schema_version"`
	SessionID     string                `json:"session_id,omitempty"`
	TakenAt       time.Time             `json:"taken_at"`
	ToolFacts     []*models.ToolFact    `json:"tool_facts,omitempty"`
	DerivedFacts  []*models.DerivedFact `json:"derived_facts,omitempty"`
}

// Snapshot exports every registered fact in sorted key order
func (r *Registry) Snapshot() (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.facts))
	for key := range r.facts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	snap := &Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		SessionID:     r.sessionID,
		TakenAt:       time.Now().UTC(),
	}
	for _, key := range keys {
		switch fact := r.facts[key].(type) {
		case *models.ToolFact:
			snap.ToolFacts = append(snap.ToolFacts, fact)
		case *models.DerivedFact:
			snap.DerivedFacts = append(snap.DerivedFacts, fact)
		default:
			return nil, fmt.Errorf("unknown fact kind %T for key %q", fact, key)
		}
	}
	return snap, nil
}

// Restore rebuilds a registry from a snapshot. Every hash is recomputed
// from the recorded fields and every derivation's parent chain and
// confidence bound are re-checked, so an edited or truncated snapshot is
// rejected instead of silently trusted.
func Restore(snap *Snapshot) (*Registry, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if snap.SchemaVersion != SnapshotSchemaVersion {
		return nil, fmt.Errorf("unsupported snapshot schema version %d (want %d)",
			snap.SchemaVersion, SnapshotSchemaVersion)
	}

	r := New()
	if snap.SessionID != "" {
		r.sessionID = snap.SessionID
	}

	for _, fact := range snap.ToolFacts {
		if !models.ValidKey(fact.Key) {
			return nil, fmt.Errorf("snapshot contains invalid key %q", fact.Key)
		}
		recomputed := ToolFactHash(fact.SourceTool, fact.Value, fact.Unit, fact.CreatedAt, fact.Nonce)
		if recomputed != fact.Hash {
			return nil, fmt.Errorf("hash mismatch for key %q: snapshot may be edited or truncated", fact.Key)
		}
		if _, ok := r.facts[fact.Key]; ok {
			return nil, fmt.Errorf("snapshot registers key %q twice: %w", fact.Key, ErrDuplicateKey)
		}
		r.facts[fact.Key] = fact
	}

	// Derivations may reference each other, so insert in dependency order:
	// repeat passes until a pass makes no progress.
	pending := append([]*models.DerivedFact(nil), snap.DerivedFacts...)
	for len(pending) > 0 {
		var next []*models.DerivedFact
		progressed := false

		for _, fact := range pending {
			ready := true
			for _, parentKey := range fact.DerivedFrom {
				if _, ok := r.facts[parentKey]; !ok {
					ready = false
					break
				}
			}
			if !ready {
				next = append(next, fact)
				continue
			}
			if err := r.restoreDerived(fact); err != nil {
				return nil, err
			}
			progressed = true
		}

		if !progressed {
			keys := make([]string, 0, len(next))
			for _, fact := range next {
				keys = append(keys, fact.Key)
			}
			return nil, fmt.Errorf("snapshot derivations have unresolved parents (%s): %w",
				strings.Join(keys, ", "), ErrUnknownParent)
		}
		pending = next
	}

	return r, nil
}

// restoreDerived re-checks one derivation whose parents are all present.
// Caller holds no lock; restore runs on a registry nothing else can see yet.
func (r *Registry) restoreDerived(fact *models.DerivedFact) error {
	if !models.ValidKey(fact.Key) {
		return fmt.Errorf("snapshot contains invalid key %q", fact.Key)
	}
	if len(fact.DerivedFrom) == 0 {
		return fmt.Errorf("snapshot derivation %q lists no parents: %w", fact.Key, ErrEmptyParents)
	}

	minConfidence := 1.0
	actualHashes := make([]string, 0, len(fact.DerivedFrom))
	for _, parentKey := range fact.DerivedFrom {
		parent := r.facts[parentKey]
		actualHashes = append(actualHashes, parent.FactHash())
		if c := parent.FactConfidence(); c < minConfidence {
			minConfidence = c
		}
	}
	sort.Strings(actualHashes)

	recorded := append([]string(nil), fact.ParentHashes...)
	sort.Strings(recorded)
	if !equalStrings(actualHashes, recorded) {
		return fmt.Errorf("parent hash chain mismatch for key %q: snapshot may be edited", fact.Key)
	}

	if fact.Confidence > minConfidence {
		return fmt.Errorf("snapshot derivation %q claims confidence %v above parent minimum %v: %w",
			fact.Key, fact.Confidence, minConfidence, ErrConfidenceOverclaim)
	}

	recomputed := DerivedFactHash(fact.Value, fact.Unit, fact.ParentHashes, fact.Formula)
	if recomputed != fact.Hash {
		return fmt.Errorf("hash mismatch for key %q: snapshot may be edited or truncated", fact.Key)
	}

	if _, ok := r.facts[fact.Key]; ok {
		return fmt.Errorf("snapshot registers key %q twice: %w", fact.Key, ErrDuplicateKey)
	}
	r.facts[fact.Key] = fact
	return nil
}

// SaveFile writes the snapshot as indented JSON, creating parent
// directories as needed
func (s *Snapshot) SaveFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshotFile reads a snapshot written by SaveFile
func LoadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return &snap, nil
}

// RestoreFile loads and restores a snapshot in one call
func RestoreFile(path string) (*Registry, error) {
	snap, err := LoadSnapshotFile(path)
	if err != nil {
		return nil, err
	}
	return Restore(snap)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
