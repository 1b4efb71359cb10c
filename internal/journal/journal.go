// ABOUTME: Append-only audit journal over SQLite for registrations and scans
// ABOUTME: Implements the gate's ScanRecorder; rows are never updated in place
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harper/provenance-standalone/internal/models"
)

// Journal persists fact registrations and scan events
type Journal struct {
	db *DB
}

// NewJournal creates a journal over an open database
func NewJournal(db *DB) *Journal {
	return &Journal{db: db}
}

// Registration is one journal row describing a successful registry write
type Registration struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	FactKey      string    `json:"fact_key"`
	Kind         string    `json:"kind"`
	Value        float64   `json:"value"`
	Unit         string    `json:"unit,omitempty"`
	Hash         string    `json:"hash"`
	Confidence   float64   `json:"confidence"`
	SourceTool   string    `json:"source_tool,omitempty"`
	Formula      string    `json:"formula,omitempty"`
	Parents      []string  `json:"parents,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// RecordRegistration appends one row for a fact the registry accepted
func (j *Journal) RecordRegistration(sessionID string, fact models.Fact) error {
	var (
		sourceTool string
		formula    string
		parents    []string
	)

	switch f := fact.(type) {
	case *models.ToolFact:
		sourceTool = f.SourceTool
	case *models.DerivedFact:
		formula = f.Formula
		parents = f.DerivedFrom
	default:
		return fmt.Errorf("unknown fact kind %T", fact)
	}

	parentsJSON, err := marshalStrings(parents)
	if err != nil {
		return fmt.Errorf("failed to encode parents: %w", err)
	}

	_, err = j.db.Exec(`
		INSERT INTO registrations (id, session_id, fact_key, kind, value, unit, hash, confidence, source_tool, formula, parents, registered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, generateRegistrationID(), sessionID, fact.FactKey(), string(fact.Kind()),
		fact.FactValue(), nullString(fact.FactUnit()), fact.FactHash(), fact.FactConfidence(),
		nullString(sourceTool), nullString(formula), parentsJSON, fact.FactCreatedAt())

	return err
}

// RecordScan appends one row per finalize call, pass or not
func (j *Journal) RecordScan(event models.ScanEvent) error {
	var leaksJSON sql.NullString
	if len(event.Leaks) > 0 {
		data, err := json.Marshal(event.Leaks)
		if err != nil {
			return fmt.Errorf("failed to encode leaks: %w", err)
		}
		leaksJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := j.db.Exec(`
		INSERT INTO scan_events (id, session_id, mode, verdict, leak_count, leaks, template_digest, output_digest, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, event.EventID, event.SessionID, event.Mode, string(event.Verdict),
		event.LeakCount, leaksJSON, event.TemplateDigest, event.OutputDigest, event.ScannedAt)

	return err
}

// Registrations retrieves registration rows, newest first. An empty
// sessionID returns rows across all sessions.
func (j *Journal) Registrations(sessionID string, limit int) ([]Registration, error) {
	query := `
		SELECT id, session_id, fact_key, kind, value, unit, hash, confidence, source_tool, formula, parents, registered_at
		FROM registrations
	`
	args := []interface{}{}
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY registered_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var regs []Registration
	for rows.Next() {
		var (
			reg         Registration
			unit        sql.NullString
			sourceTool  sql.NullString
			formula     sql.NullString
			parentsJSON sql.NullString
		)
		err := rows.Scan(&reg.ID, &reg.SessionID, &reg.FactKey, &reg.Kind, &reg.Value,
			&unit, &reg.Hash, &reg.Confidence, &sourceTool, &formula, &parentsJSON, &reg.RegisteredAt)
		if err != nil {
			return nil, err
		}
		reg.Unit = unit.String
		reg.SourceTool = sourceTool.String
		reg.Formula = formula.String
		if parentsJSON.Valid {
			if err := json.Unmarshal([]byte(parentsJSON.String), &reg.Parents); err != nil {
				return nil, fmt.Errorf("failed to decode parents for %s: %w", reg.ID, err)
			}
		}
		regs = append(regs, reg)
	}

	return regs, rows.Err()
}

// RecentScans retrieves scan events, newest first. An empty sessionID
// returns events across all sessions.
func (j *Journal) RecentScans(sessionID string, limit int) ([]models.ScanEvent, error) {
	query := `
		SELECT id, session_id, mode, verdict, leak_count, leaks, template_digest, output_digest, scanned_at
		FROM scan_events
	`
	args := []interface{}{}
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY scanned_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var events []models.ScanEvent
	for rows.Next() {
		var (
			event   models.ScanEvent
			verdict string
			leaks   sql.NullString
		)
		err := rows.Scan(&event.EventID, &event.SessionID, &event.Mode, &verdict,
			&event.LeakCount, &leaks, &event.TemplateDigest, &event.OutputDigest, &event.ScannedAt)
		if err != nil {
			return nil, err
		}
		event.Verdict = models.VerdictKind(verdict)
		if leaks.Valid {
			if err := json.Unmarshal([]byte(leaks.String), &event.Leaks); err != nil {
				return nil, fmt.Errorf("failed to decode leaks for %s: %w", event.EventID, err)
			}
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// Stats summarizes the journal contents
type Stats struct {
	ToolRegistrations    int64 `json:"tool_registrations"`
	DerivedRegistrations int64 `json:"derived_registrations"`
	ScanEvents           int64 `json:"scan_events"`
	Passes               int64 `json:"passes"`
	Blocked              int64 `json:"blocked"`
	ShadowLogged         int64 `json:"shadow_logged"`
	LeaksObserved        int64 `json:"leaks_observed"`
}

// Stats aggregates registration and scan counts across all sessions
func (j *Journal) Stats() (*Stats, error) {
	stats := &Stats{}
	if err := j.countRegistrations(stats); err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	if err := j.countScans(stats); err != nil {
		return nil, fmt.Errorf("failed to count scan events: %w", err)
	}
	return stats, nil
}

func (j *Journal) countRegistrations(stats *Stats) error {
	rows, err := j.db.Query(`SELECT kind, COUNT(*) FROM registrations GROUP BY kind`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return err
		}
		switch models.FactKind(kind) {
		case models.KindTool:
			stats.ToolRegistrations = count
		case models.KindDerived:
			stats.DerivedRegistrations = count
		}
	}
	return rows.Err()
}

func (j *Journal) countScans(stats *Stats) error {
	rows, err := j.db.Query(`SELECT verdict, COUNT(*), COALESCE(SUM(leak_count), 0) FROM scan_events GROUP BY verdict`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var verdict string
		var count, leakSum int64
		if err := rows.Scan(&verdict, &count, &leakSum); err != nil {
			return err
		}
		stats.ScanEvents += count
		stats.LeaksObserved += leakSum
		switch models.VerdictKind(verdict) {
		case models.VerdictPass:
			stats.Passes = count
		case models.VerdictBlocked:
			stats.Blocked = count
		case models.VerdictShadowLogged:
			stats.ShadowLogged = count
		}
	}
	return rows.Err()
}

// marshalStrings encodes a string slice as JSON, or NULL when empty
func marshalStrings(values []string) (sql.NullString, error) {
	if len(values) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// nullString converts an empty string to sql.NullString
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// generateRegistrationID creates a unique registration row ID
func generateRegistrationID() string {
	return fmt.Sprintf("reg_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
