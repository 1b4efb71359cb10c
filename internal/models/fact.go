// ABOUTME: Fact is the closed union of provenance records held by a registry
// ABOUTME: ToolFact captures tool outputs, DerivedFact captures explicit derivations
package models

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FactKind discriminates the two concrete fact types
type FactKind string

const (
	// KindTool - value produced directly by an external tool call
	KindTool FactKind = "tool"

	// KindDerived - value computed from already-registered facts
	KindDerived FactKind = "derived"
)

// Fact is the closed interface over ToolFact and DerivedFact. Only types in
// this package can implement it; code that formats or audits facts must
// type-switch over both concrete types and treat anything else as an error.
type Fact interface {
	Kind() FactKind
	FactKey() string
	FactValue() float64
	FactUnit() string
	FactHash() string
	FactConfidence() float64
	FactCreatedAt() time.Time

	isFact()
}

// FactCore holds the fields shared by both fact kinds
type FactCore struct {
	Key        string    `json:"key"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit,omitempty"`
	Hash       string    `json:"hash"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// FactKey returns the registry key
func (c FactCore) FactKey() string { return c.Key }

// FactValue returns the numeric value
func (c FactCore) FactValue() float64 { return c.Value }

// FactUnit returns the unit string (may be empty for dimensionless values)
func (c FactCore) FactUnit() string { return c.Unit }

// FactHash returns the content-addressed identity hash
func (c FactCore) FactHash() string { return c.Hash }

// FactConfidence returns the confidence in [0,1]
func (c FactCore) FactConfidence() float64 { return c.Confidence }

// FactCreatedAt returns the registration timestamp
func (c FactCore) FactCreatedAt() time.Time { return c.CreatedAt }

// ToolFact records a numeric value produced by a single external tool call
type ToolFact struct {
	FactCore
	SourceTool   string `json:"source_tool"`
	RawOutputRef string `json:"raw_output_ref,omitempty"`
	Nonce        string `json:"nonce"`
}

// Kind returns KindTool
func (f *ToolFact) Kind() FactKind { return KindTool }

func (f *ToolFact) isFact() {}

// DerivedFact records a value computed from existing facts via an explicit,
// caller-supplied formula. The formula is audit metadata and is never evaluated.
type DerivedFact struct {
	FactCore
	DerivedFrom  []string          `json:"derived_from"`
	ParentHashes []string          `json:"parent_hashes"`
	Formula      string            `json:"formula"`
	Method       string            `json:"method,omitempty"`
	Assumptions  map[string]string `json:"assumptions,omitempty"`
}

// Kind returns KindDerived
func (f *DerivedFact) Kind() FactKind { return KindDerived }

func (f *DerivedFact) isFact() {}

// NewToolFact creates a ToolFact from a registry key and a tool reading.
// The identity hash and nonce are assigned by the registry at registration
// time; everything else is validated and filled here.
func NewToolFact(key string, reading ToolReading) (*ToolFact, error) {
	if !ValidKey(key) {
		return nil, fmt.Errorf("invalid key %q: keys must be non-empty and match [A-Za-z0-9_.]+", key)
	}
	if strings.TrimSpace(reading.SourceTool) == "" {
		return nil, fmt.Errorf("source tool cannot be empty")
	}
	if err := validateValue(reading.Value); err != nil {
		return nil, err
	}

	confidence := 1.0
	if reading.Confidence != nil {
		confidence = *reading.Confidence
	}
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}

	createdAt := reading.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &ToolFact{
		FactCore: FactCore{
			Key:        key,
			Value:      reading.Value,
			Unit:       strings.TrimSpace(reading.Unit),
			Confidence: confidence,
			CreatedAt:  createdAt.UTC(),
		},
		SourceTool:   reading.SourceTool,
		RawOutputRef: reading.RawOutputRef,
	}, nil
}

// ValidKey reports whether key is usable as a registry key and inside a
// placeholder token: non-empty, ASCII letters, digits, underscore, or dot.
func ValidKey(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		if !IsKeyByte(key[i]) {
			return false
		}
	}
	return true
}

// IsKeyByte reports whether c may appear in a registry key
func IsKeyByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '.'
}

// FormatValue renders a fact value the way the renderer substitutes it into
// text and the way the identity layer encodes it for hashing. The shortest
// round-trip form keeps 2.92 as "2.92" rather than a padded decimal.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Describe returns a multi-line human-readable audit description of a fact.
// It matches exhaustively over the closed union so a new fact kind cannot be
// silently dropped from audit output.
func Describe(f Fact) (string, error) {
	switch fact := f.(type) {
	case *ToolFact:
		var b strings.Builder
		fmt.Fprintf(&b, "tool fact %s = %s", fact.Key, valueWithUnit(fact.Value, fact.Unit))
		fmt.Fprintf(&b, "\n  source: %s", fact.SourceTool)
		if fact.RawOutputRef != "" {
			fmt.Fprintf(&b, " (ref %s)", fact.RawOutputRef)
		}
		fmt.Fprintf(&b, "\n  confidence: %.2f", fact.Confidence)
		fmt.Fprintf(&b, "\n  hash: %s", fact.Hash)
		fmt.Fprintf(&b, "\n  created: %s", fact.CreatedAt.Format(time.RFC3339))
		return b.String(), nil
	case *DerivedFact:
		var b strings.Builder
		fmt.Fprintf(&b, "derived fact %s = %s", fact.Key, valueWithUnit(fact.Value, fact.Unit))
		fmt.Fprintf(&b, "\n  formula: %s", fact.Formula)
		if fact.Method != "" {
			fmt.Fprintf(&b, "\n  method: %s", fact.Method)
		}
		fmt.Fprintf(&b, "\n  parents: %s", strings.Join(fact.DerivedFrom, ", "))
		for _, kv := range sortedAssumptions(fact.Assumptions) {
			fmt.Fprintf(&b, "\n  assumes %s = %s", kv[0], kv[1])
		}
		fmt.Fprintf(&b, "\n  confidence: %.2f", fact.Confidence)
		fmt.Fprintf(&b, "\n  hash: %s", fact.Hash)
		fmt.Fprintf(&b, "\n  created: %s", fact.CreatedAt.Format(time.RFC3339))
		return b.String(), nil
	default:
		return "", fmt.Errorf("unknown fact kind %T for key %q", f, f.FactKey())
	}
}

func valueWithUnit(v float64, unit string) string {
	if unit == "" {
		return FormatValue(v)
	}
	return FormatValue(v) + " " + unit
}

func sortedAssumptions(assumptions map[string]string) [][2]string {
	if len(assumptions) == 0 {
		return nil
	}
	keys := make([]string, 0, len(assumptions))
	for k := range assumptions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, assumptions[k]})
	}
	return out
}

func validateValue(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("value must be a finite number, got %v", v)
	}
	return nil
}

func validateConfidence(c float64) error {
	if c < 0.0 || c > 1.0 {
		return fmt.Errorf("confidence must be 0.0-1.0, got %v", c)
	}
	return nil
}
