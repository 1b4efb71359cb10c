// ABOUTME: Sentinel errors for the registration error taxonomy
// ABOUTME: Callers match with errors.Is; messages add key context via wrapping
package registry

import "errors"

var (
	// ErrDuplicateKey - a key was re-registered with different content.
	// The registry is left untouched; identical re-registration is a no-op
	// and does not produce this error.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrEmptyParents - a derivation listed no parent keys
	ErrEmptyParents = errors.New("empty parents")

	// ErrUnknownParent - a derivation referenced a key that is not registered.
	// Requiring parents to exist first is what keeps the provenance graph
	// acyclic: a fact can never point at one registered after it.
	ErrUnknownParent = errors.New("unknown parent")

	// ErrConfidenceOverclaim - a derived confidence above the parent minimum
	ErrConfidenceOverclaim = errors.New("confidence overclaim")
)
