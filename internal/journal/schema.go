// ABOUTME: SQLite schema for the provenance audit journal
// ABOUTME: Registrations and scan events are append-only; nothing updates in place
package journal

// Schema contains all SQL statements for journal initialization
const Schema = `
-- Fact registrations (one row per successful registry write)
CREATE TABLE IF NOT EXISTS registrations (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    fact_key TEXT NOT NULL,
    kind TEXT NOT NULL,
    value REAL NOT NULL,
    unit TEXT,
    hash TEXT NOT NULL,
    confidence REAL DEFAULT 1.0,
    source_tool TEXT,
    formula TEXT,
    parents TEXT,
    registered_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Scan events (one row per finalize call, pass or not)
CREATE TABLE IF NOT EXISTS scan_events (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    mode TEXT NOT NULL,
    verdict TEXT NOT NULL,
    leak_count INTEGER DEFAULT 0,
    leaks TEXT,
    template_digest TEXT NOT NULL,
    output_digest TEXT NOT NULL,
    scanned_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_registrations_session ON registrations(session_id);
CREATE INDEX IF NOT EXISTS idx_registrations_key ON registrations(fact_key);
CREATE INDEX IF NOT EXISTS idx_scans_session ON scan_events(session_id);
CREATE INDEX IF NOT EXISTS idx_scans_verdict ON scan_events(verdict);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
