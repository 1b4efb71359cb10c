// ABOUTME: Tests for the shadow/enforce controller, counters, and scan events
// ABOUTME: Exercises the battery-voltage flow end to end through Finalize
package gate

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/harper/provenance-standalone/internal/models"
	"github.com/harper/provenance-standalone/internal/registry"
)

type recorderStub struct {
	events []models.ScanEvent
	err    error
}

func (r *recorderStub) RecordScan(event models.ScanEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func voltageSession(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	readings := []struct {
		key   string
		value float64
	}{
		{"mace_energy_licoo2", -21.96},
		{"mace_energy_coo2", -17.14},
		{"mace_energy_li", -1.90},
	}
	for _, r := range readings {
		if _, err := reg.RegisterToolFact(r.key, r.value, "eV", "mace", ""); err != nil {
			t.Fatalf("RegisterToolFact(%s) error = %v", r.key, err)
		}
	}
	_, err := reg.RegisterDerivedValue(models.DerivationRequest{
		Key:     "derived_voltage_licoo2",
		Value:   2.92,
		Unit:    "V",
		Parents: []string{"mace_energy_licoo2", "mace_energy_coo2", "mace_energy_li"},
		Formula: "V = -(E_CoO2 + E_Li - E_LiCoO2)",
	})
	if err != nil {
		t.Fatalf("RegisterDerivedValue() error = %v", err)
	}
	return reg
}

func TestGate_EnforcePassesProvenancedOutput(t *testing.T) {
	reg := voltageSession(t)
	gate, err := NewGate(reg, Policy{Mode: ModeEnforce}, nil)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	got, err := gate.Finalize("Estimated voltage: <<T:derived_voltage_licoo2>> V (from <<T:mace_energy_licoo2>> eV).")
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if got.Verdict.Kind != models.VerdictPass {
		t.Errorf("Finalize() verdict = %s, want pass", got.Verdict.Kind)
	}
	if got.Text != "Estimated voltage: 2.92 V (from -21.96 eV)." {
		t.Errorf("Finalize() text = %q", got.Text)
	}
	if len(got.Leaks) != 0 {
		t.Errorf("Finalize() leaks = %v, want none", got.Leaks)
	}
}

func TestGate_EnforceBlocksUnprovenancedNumber(t *testing.T) {
	reg := voltageSession(t)
	gate, err := NewGate(reg, Policy{Mode: ModeEnforce}, nil)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	got, err := gate.Finalize("Voltage: approximately 3.0 V.")
	if err != nil {
		t.Fatalf("Finalize() error = %v, a leak is a verdict not an error", err)
	}
	if got.Verdict.Kind != models.VerdictBlocked {
		t.Fatalf("Finalize() verdict = %s, want blocked", got.Verdict.Kind)
	}
	if len(got.Leaks) != 1 || got.Leaks[0].Literal != "3.0" {
		t.Errorf("Finalize() leaks = %v, want the 3.0 claim flagged", got.Leaks)
	}
	if len(got.Verdict.Reasons) != 1 || !strings.Contains(got.Verdict.Reasons[0], `"3.0"`) {
		t.Errorf("Finalize() reasons = %v, want the literal named", got.Verdict.Reasons)
	}
	// The boundary still returns the text; surfaces withhold it on blocked.
	if got.Text != "Voltage: approximately 3.0 V." {
		t.Errorf("Finalize() text = %q, want the rendered draft for reporting", got.Text)
	}
}

func TestGate_ShadowLogsAndPasses(t *testing.T) {
	reg := voltageSession(t)
	rec := &recorderStub{}
	gate, err := NewGate(reg, Policy{Mode: ModeShadow}, rec)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	got, err := gate.Finalize("Voltage: approximately 3.0 V.")
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if got.Verdict.Kind != models.VerdictShadowLogged {
		t.Errorf("Finalize() verdict = %s, want shadow_logged", got.Verdict.Kind)
	}
	if len(got.Leaks) != 1 || got.Leaks[0].Literal != "3.0" {
		t.Errorf("Finalize() leaks = %v, want the same detection as enforce", got.Leaks)
	}
	if len(rec.events) != 1 {
		t.Fatalf("recorded events = %d, want 1", len(rec.events))
	}
	event := rec.events[0]
	if event.Verdict != models.VerdictShadowLogged || event.LeakCount != 1 {
		t.Errorf("event = %+v, want shadow_logged with one leak", event)
	}
}

func TestGate_ModeChangesDispositionNotDetection(t *testing.T) {
	template := "Capacity fell to 148 mAh/g after <<T:derived_voltage_licoo2>> V cycling."

	var leaks [2][]models.LeakCandidate
	for i, mode := range []Mode{ModeShadow, ModeEnforce} {
		gate, err := NewGate(voltageSession(t), Policy{Mode: mode}, nil)
		if err != nil {
			t.Fatalf("NewGate(%s) error = %v", mode, err)
		}
		got, err := gate.Finalize(template)
		if err != nil {
			t.Fatalf("Finalize(%s) error = %v", mode, err)
		}
		leaks[i] = got.Leaks
	}

	if fmt.Sprintf("%v", leaks[0]) != fmt.Sprintf("%v", leaks[1]) {
		t.Errorf("shadow leaks %v != enforce leaks %v", leaks[0], leaks[1])
	}
	if len(leaks[0]) != 1 || leaks[0][0].Literal != "148" {
		t.Errorf("leaks = %v, want the capacity figure flagged in both modes", leaks[0])
	}
}

func TestGate_MetricsEnforce(t *testing.T) {
	gate, err := NewGate(voltageSession(t), Policy{Mode: ModeEnforce}, nil)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	if _, err := gate.Finalize("Voltage: <<T:derived_voltage_licoo2>> V"); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if _, err := gate.Finalize("Voltage: about 3.0 V and 148 mAh/g"); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	// A render failure counts nothing.
	if _, err := gate.Finalize("<<T:未knownkey>>"); err == nil {
		t.Fatal("Finalize() with malformed template should error in enforce")
	}

	m := gate.Metrics()
	if m.TotalScanned != 2 {
		t.Errorf("TotalScanned = %d, want 2", m.TotalScanned)
	}
	if m.TotalBlocked != 1 {
		t.Errorf("TotalBlocked = %d, want 1", m.TotalBlocked)
	}
	if m.TotalShadowLeaks != 0 {
		t.Errorf("TotalShadowLeaks = %d, want 0", m.TotalShadowLeaks)
	}
}

func TestGate_MetricsShadowCountLeaks(t *testing.T) {
	gate, err := NewGate(voltageSession(t), Policy{Mode: ModeShadow}, nil)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	if _, err := gate.Finalize("clean summary with no figures"); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if _, err := gate.Finalize("about 3.0 V and 148 mAh/g over 50 cycles"); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	m := gate.Metrics()
	if m.TotalScanned != 2 {
		t.Errorf("TotalScanned = %d, want 2", m.TotalScanned)
	}
	if m.TotalBlocked != 0 {
		t.Errorf("TotalBlocked = %d, want 0 in shadow mode", m.TotalBlocked)
	}
	if m.TotalShadowLeaks != 3 {
		t.Errorf("TotalShadowLeaks = %d, want 3 individual literals", m.TotalShadowLeaks)
	}
}

func TestGate_RecordsEveryFinalize(t *testing.T) {
	reg := voltageSession(t)
	rec := &recorderStub{}
	gate, err := NewGate(reg, Policy{Mode: ModeEnforce}, rec)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	clean := "Voltage: <<T:derived_voltage_licoo2>> V"
	leaky := "Voltage: about 3.0 V"
	if _, err := gate.Finalize(clean); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if _, err := gate.Finalize(leaky); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if len(rec.events) != 2 {
		t.Fatalf("recorded events = %d, want 2 (pass events are recorded too)", len(rec.events))
	}
	pass, blocked := rec.events[0], rec.events[1]
	if pass.Verdict != models.VerdictPass || pass.LeakCount != 0 {
		t.Errorf("first event = %+v, want a pass with no leaks", pass)
	}
	if blocked.Verdict != models.VerdictBlocked || blocked.LeakCount != 1 {
		t.Errorf("second event = %+v, want blocked with one leak", blocked)
	}
	for i, event := range rec.events {
		if !strings.HasPrefix(event.EventID, "scan_") {
			t.Errorf("event %d ID = %q, want scan_ prefix", i, event.EventID)
		}
		if event.SessionID != reg.SessionID() {
			t.Errorf("event %d session = %q, want %q", i, event.SessionID, reg.SessionID())
		}
		if event.Mode != "enforce" {
			t.Errorf("event %d mode = %q, want enforce", i, event.Mode)
		}
		if len(event.TemplateDigest) != 64 || len(event.OutputDigest) != 64 {
			t.Errorf("event %d digests = %q / %q, want sha256 hex", i, event.TemplateDigest, event.OutputDigest)
		}
	}
	if pass.EventID == blocked.EventID {
		t.Error("event IDs should be unique")
	}
	if pass.TemplateDigest == blocked.TemplateDigest {
		t.Error("different templates should digest differently")
	}
}

func TestGate_RecorderFailureKeepsVerdict(t *testing.T) {
	rec := &recorderStub{err: fmt.Errorf("journal closed")}
	gate, err := NewGate(voltageSession(t), Policy{Mode: ModeEnforce}, rec)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	got, err := gate.Finalize("Voltage: about 3.0 V")
	if err != nil {
		t.Fatalf("Finalize() error = %v, recorder failure must not fail the call", err)
	}
	if got.Verdict.Kind != models.VerdictBlocked {
		t.Errorf("Finalize() verdict = %s, want blocked regardless of recorder", got.Verdict.Kind)
	}
}

func TestGate_MalformedDefaultFollowsMode(t *testing.T) {
	template := "value <<T:>> here"

	shadow, err := NewGate(voltageSession(t), Policy{Mode: ModeShadow}, nil)
	if err != nil {
		t.Fatalf("NewGate(shadow) error = %v", err)
	}
	got, err := shadow.Finalize(template)
	if err != nil {
		t.Fatalf("shadow Finalize() error = %v, want warn-and-continue", err)
	}
	if len(got.Warnings) != 1 {
		t.Errorf("shadow Finalize() warnings = %v, want one", got.Warnings)
	}

	enforce, err := NewGate(voltageSession(t), Policy{Mode: ModeEnforce}, nil)
	if err != nil {
		t.Fatalf("NewGate(enforce) error = %v", err)
	}
	if _, err := enforce.Finalize(template); !errors.Is(err, ErrMalformedPlaceholder) {
		t.Errorf("enforce Finalize() error = %v, want ErrMalformedPlaceholder", err)
	}

	relaxed, err := NewGate(voltageSession(t), Policy{Mode: ModeEnforce, Malformed: MalformedWarn}, nil)
	if err != nil {
		t.Fatalf("NewGate(relaxed) error = %v", err)
	}
	if _, err := relaxed.Finalize(template); err != nil {
		t.Errorf("explicit warn override Finalize() error = %v, want none", err)
	}
}

func TestGate_AllowListThreadsThrough(t *testing.T) {
	policy := Policy{
		Mode: ModeEnforce,
		Scan: ScanConfig{AllowListMarkers: true, AllowLiterals: []string{"2026"}},
	}
	gate, err := NewGate(voltageSession(t), policy, nil)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}

	got, err := gate.Finalize("Findings for 2026:\n1. voltage <<T:derived_voltage_licoo2>> V\n2. stable lattice")
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if got.Verdict.Kind != models.VerdictPass {
		t.Errorf("Finalize() verdict = %s (leaks %v), want pass with allowances applied", got.Verdict.Kind, got.Leaks)
	}
}

func TestGate_UnknownKeyFailsRender(t *testing.T) {
	gate, err := NewGate(voltageSession(t), Policy{Mode: ModeShadow}, nil)
	if err != nil {
		t.Fatalf("NewGate() error = %v", err)
	}
	if _, err := gate.Finalize("<<T:voltage_nacoo2>>"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Finalize() error = %v, want ErrUnknownKey (author error, not a leak)", err)
	}
}

func TestNewGate_Validation(t *testing.T) {
	if _, err := NewGate(nil, Policy{}, nil); err == nil {
		t.Error("NewGate(nil registry) expected error")
	}
	if _, err := NewGate(registry.New(), Policy{Mode: "audit"}, nil); err == nil || !strings.Contains(err.Error(), "invalid gate mode") {
		t.Errorf("NewGate(audit) error = %v, want invalid gate mode", err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Mode
		wantErr bool
	}{
		{name: "shadow", input: "shadow", want: ModeShadow},
		{name: "enforce", input: "enforce", want: ModeEnforce},
		{name: "empty defaults to shadow", input: "", want: ModeShadow},
		{name: "unknown", input: "strict", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseMode(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
