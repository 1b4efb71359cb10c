// ABOUTME: Sentinel errors for render-time referencing failures
// ABOUTME: These are author errors, distinct from leaks, which are verdicts
package gate

import "errors"

var (
	// ErrUnknownKey - a placeholder referenced a key that was never
	// registered. The author pointed at a fact that does not exist; this is
	// always fatal and never degrades into a leak candidate.
	ErrUnknownKey = errors.New("unknown key")

	// ErrMalformedPlaceholder - placeholder delimiters present but the key
	// body fails the grammar. Fatal or warning depending on policy.
	ErrMalformedPlaceholder = errors.New("malformed placeholder")
)
