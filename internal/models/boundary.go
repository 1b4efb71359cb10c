// ABOUTME: Boundary tuples consumed from the tool-invocation and derivation callers
// ABOUTME: ToolReading mirrors a completed tool call, DerivationRequest a computed value
package models

import (
	"fmt"
	"strings"
	"time"
)

// ToolReading is the tuple the tool-invocation boundary hands over for each
// completed tool call. The registry key is chosen by the caller at
// registration time and is deliberately not part of the reading.
type ToolReading struct {
	SourceTool   string    `json:"source_tool"`
	Value        float64   `json:"value"`
	Unit         string    `json:"unit,omitempty"`
	RawOutputRef string    `json:"raw_output_ref,omitempty"`
	Timestamp    time.Time `json:"timestamp,omitempty"`

	// Confidence is nil unless the tool reports one; registration defaults
	// a nil confidence to 1.0.
	Confidence *float64 `json:"confidence,omitempty"`
}

// DerivationRequest describes a value computed from already-registered facts.
// Confidence is nil when the caller wants the conservative default, the
// minimum over the parent confidences.
type DerivationRequest struct {
	Key         string            `json:"key"`
	Value       float64           `json:"value"`
	Unit        string            `json:"unit,omitempty"`
	Parents     []string          `json:"parents"`
	Formula     string            `json:"formula"`
	Method      string            `json:"method,omitempty"`
	Assumptions map[string]string `json:"assumptions,omitempty"`
	Confidence  *float64          `json:"confidence,omitempty"`
}

// Validate checks the request shape: key grammar, finite value, formula
// presence, parent key grammar, and confidence range. Parent existence and
// confidence overclaim are registry-level checks and are not performed here.
func (r DerivationRequest) Validate() error {
	if !ValidKey(r.Key) {
		return fmt.Errorf("invalid key %q: keys must be non-empty and match [A-Za-z0-9_.]+", r.Key)
	}
	if err := validateValue(r.Value); err != nil {
		return err
	}
	if strings.TrimSpace(r.Formula) == "" {
		return fmt.Errorf("formula cannot be empty")
	}
	seen := make(map[string]bool, len(r.Parents))
	for _, parent := range r.Parents {
		if !ValidKey(parent) {
			return fmt.Errorf("invalid parent key %q: keys must be non-empty and match [A-Za-z0-9_.]+", parent)
		}
		if seen[parent] {
			return fmt.Errorf("duplicate parent key %q", parent)
		}
		seen[parent] = true
	}
	if r.Confidence != nil {
		if err := validateConfidence(*r.Confidence); err != nil {
			return err
		}
	}
	return nil
}
