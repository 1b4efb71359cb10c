// ABOUTME: Leak candidate and scan event types produced by the gate
// ABOUTME: ScanEvent is the journal row shape for shadow-mode calibration
package models

import "time"

// LeakCandidate is a numeric literal found outside every provenance-safe
// span. Context carries a short excerpt around the literal for reporting.
type LeakCandidate struct {
	Literal string `json:"literal"`
	Span    Span   `json:"span"`
	Context string `json:"context,omitempty"`
}

// ScanEvent records one finalize pass for the audit journal. Template and
// output are stored as digests, not text, so a blocked draft never leaks
// into the journal; the leak literals themselves are kept because they are
// the signal shadow-mode calibration exists to collect.
type ScanEvent struct {
	EventID        string          `json:"event_id"`
	SessionID      string          `json:"session_id"`
	Mode           string          `json:"mode"`
	Verdict        VerdictKind     `json:"verdict"`
	LeakCount      int             `json:"leak_count"`
	Leaks          []LeakCandidate `json:"leaks,omitempty"`
	TemplateDigest string          `json:"template_digest"`
	OutputDigest   string          `json:"output_digest"`
	ScannedAt      time.Time       `json:"scanned_at"`
}
