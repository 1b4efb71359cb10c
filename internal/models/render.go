// ABOUTME: Render output types: resolved text, provenance-safe spans, warnings
// ABOUTME: Spans are half-open byte ranges into the rendered output string
package models

// Span is a half-open [Start, End) byte range into a rendered string
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether other lies fully inside s
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Len returns the number of bytes the span covers
func (s Span) Len() int {
	return s.End - s.Start
}

// RenderWarning reports a malformed placeholder that was passed through
// verbatim under a warn policy. Span locates the passed-through token in the
// rendered output, so anything numeric inside it remains scannable.
type RenderWarning struct {
	Token  string `json:"token"`
	Span   Span   `json:"span"`
	Reason string `json:"reason"`
}

// RenderResult is the output of placeholder resolution: the rendered text,
// the registry keys that were resolved (first-appearance order, deduplicated),
// and the output spans that carry provenance.
type RenderResult struct {
	Text         string          `json:"text"`
	ResolvedKeys []string        `json:"resolved_keys,omitempty"`
	SafeSpans    []Span          `json:"safe_spans,omitempty"`
	Warnings     []RenderWarning `json:"warnings,omitempty"`
}
