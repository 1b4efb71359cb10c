// ABOUTME: Gate verdict types and detection counters
// ABOUTME: A detected leak is a verdict to dispose of, never a Go error
package models

// VerdictKind represents the gate's disposition of one finalized output
type VerdictKind string

const (
	// VerdictPass - no leak candidates; text is safe to show
	VerdictPass VerdictKind = "pass"

	// VerdictBlocked - leaks found in enforce mode; text must not reach a consumer
	VerdictBlocked VerdictKind = "blocked"

	// VerdictShadowLogged - leaks found in shadow mode; text passes, event recorded
	VerdictShadowLogged VerdictKind = "shadow_logged"
)

// GateVerdict is the gate's decision for one finalize call
type GateVerdict struct {
	Kind    VerdictKind `json:"kind"`
	Reasons []string    `json:"reasons,omitempty"`
}

// PassVerdict returns the verdict for a clean output
func PassVerdict() GateVerdict {
	return GateVerdict{Kind: VerdictPass}
}

// BlockedVerdict returns the enforce-mode verdict for a leaking output
func BlockedVerdict(reasons []string) GateVerdict {
	return GateVerdict{Kind: VerdictBlocked, Reasons: reasons}
}

// ShadowVerdict returns the shadow-mode verdict for a leaking output
func ShadowVerdict(reasons []string) GateVerdict {
	return GateVerdict{Kind: VerdictShadowLogged, Reasons: reasons}
}

// GateMetrics are the controller's cumulative detection counters.
// TotalScanned and TotalBlocked count finalize calls; TotalShadowLeaks
// counts individual leak candidates observed in shadow mode, the number
// calibration cares about.
type GateMetrics struct {
	TotalScanned     int64 `json:"total_scanned"`
	TotalBlocked     int64 `json:"total_blocked"`
	TotalShadowLeaks int64 `json:"total_shadow_leaks"`
}
