// ABOUTME: Shadow/enforce controller that renders, scans, and rules on output
// ABOUTME: Owns the detection counters and emits one scan event per finalize
package gate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harper/provenance-standalone/internal/models"
	"github.com/harper/provenance-standalone/internal/registry"
)

// Mode selects how the gate disposes of detected leaks
type Mode string

const (
	// ModeShadow records leaks and lets the text through; used for calibration
	ModeShadow Mode = "shadow"

	// ModeEnforce blocks any output carrying a leak candidate
	ModeEnforce Mode = "enforce"
)

// ParseMode validates a mode string from config or flags. Empty defaults
// to shadow so a fresh deployment observes before it blocks.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeShadow, nil
	case ModeShadow, ModeEnforce:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid gate mode %q (want shadow or enforce)", s)
	}
}

// Policy configures one gate instance
type Policy struct {
	Mode      Mode
	Malformed MalformedPolicy
	Scan      ScanConfig
}

// ScanRecorder receives one event per finalize call. The journal implements
// it; a nil recorder disables recording without changing verdicts.
type ScanRecorder interface {
	RecordScan(event models.ScanEvent) error
}

// Gate is the render-time controller. All unprovenanced numeric output
// funnels through Finalize; nothing else in the system decides what ships.
type Gate struct {
	registry *registry.Registry
	renderer *Renderer
	scanner  *Scanner
	mode     Mode
	recorder ScanRecorder

	mu      sync.Mutex
	metrics models.GateMetrics
}

// NewGate creates a gate over the given registry. An empty malformed
// policy follows the mode: shadow warns and passes the bytes through to
// the scanner, enforce fails the render outright.
func NewGate(reg *registry.Registry, policy Policy, recorder ScanRecorder) (*Gate, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	mode, err := ParseMode(string(policy.Mode))
	if err != nil {
		return nil, err
	}
	malformed := policy.Malformed
	if malformed == "" {
		if mode == ModeEnforce {
			malformed = MalformedFatal
		} else {
			malformed = MalformedWarn
		}
	}
	return &Gate{
		registry: reg,
		renderer: NewRenderer(reg, malformed),
		scanner:  NewScanner(policy.Scan),
		mode:     mode,
		recorder: recorder,
	}, nil
}

// Mode returns the gate's configured mode
func (g *Gate) Mode() Mode {
	return g.mode
}

// GateResult carries everything one finalize call produced. Text is always
// populated, including under a blocked verdict: the caller needs it for
// reporting and calibration, and every shipped surface checks the verdict
// before showing text to a consumer.
type GateResult struct {
	Text     string                 `json:"text"`
	Verdict  models.GateVerdict     `json:"verdict"`
	Leaks    []models.LeakCandidate `json:"leaks,omitempty"`
	Warnings []models.RenderWarning `json:"warnings,omitempty"`
}

// Finalize renders the template, scans the rendered text, and rules on it.
// A render failure returns an error and counts nothing; a detected leak is
// never an error, it is a verdict.
func (g *Gate) Finalize(template string) (*GateResult, error) {
	rendered, err := g.renderer.Render(template)
	if err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	leaks := g.scanner.Scan(rendered.Text, rendered.SafeSpans)

	var verdict models.GateVerdict
	switch {
	case len(leaks) == 0:
		verdict = models.PassVerdict()
	case g.mode == ModeEnforce:
		verdict = models.BlockedVerdict(leakReasons(leaks))
	default:
		verdict = models.ShadowVerdict(leakReasons(leaks))
		log.Printf("Warning: shadow gate observed %d unprovenanced literal(s) in session %s", len(leaks), g.registry.SessionID())
	}

	g.mu.Lock()
	g.metrics.TotalScanned++
	switch verdict.Kind {
	case models.VerdictBlocked:
		g.metrics.TotalBlocked++
	case models.VerdictShadowLogged:
		g.metrics.TotalShadowLeaks += int64(len(leaks))
	}
	g.mu.Unlock()

	event := models.ScanEvent{
		EventID:        generateScanID(),
		SessionID:      g.registry.SessionID(),
		Mode:           string(g.mode),
		Verdict:        verdict.Kind,
		LeakCount:      len(leaks),
		Leaks:          leaks,
		TemplateDigest: textDigest(template),
		OutputDigest:   textDigest(rendered.Text),
		ScannedAt:      time.Now().UTC(),
	}
	if g.recorder != nil {
		if err := g.recorder.RecordScan(event); err != nil {
			log.Printf("Warning: failed to record scan event %s: %v", event.EventID, err)
		}
	}

	return &GateResult{
		Text:     rendered.Text,
		Verdict:  verdict,
		Leaks:    leaks,
		Warnings: rendered.Warnings,
	}, nil
}

// Metrics returns a snapshot of the cumulative detection counters
func (g *Gate) Metrics() models.GateMetrics {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.metrics
}

func leakReasons(leaks []models.LeakCandidate) []string {
	reasons := make([]string, 0, len(leaks))
	for _, l := range leaks {
		reasons = append(reasons, fmt.Sprintf("unprovenanced numeric literal %q at bytes [%d,%d)", l.Literal, l.Span.Start, l.Span.End))
	}
	return reasons
}

// textDigest returns the SHA-256 hex digest used to reference template and
// output text in scan events without storing the text itself
func textDigest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// generateScanID creates a unique scan event ID with a timestamp prefix
func generateScanID() string {
	return fmt.Sprintf("scan_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
