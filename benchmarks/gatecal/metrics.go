// ABOUTME: Detection metrics for gate calibration runs
// ABOUTME: Compares flagged literal multisets against scenario ground truth

package gatecal

import (
	"fmt"
	"time"

	"github.com/harper/provenance-standalone/internal/gate"
	"github.com/harper/provenance-standalone/internal/models"
)

// ScenarioResult is the evaluated outcome of one calibration scenario
type ScenarioResult struct {
	ScenarioID string             `json:"scenario_id"`
	Name       string             `json:"name"`
	Verdict    models.VerdictKind `json:"verdict"`

	Injected int `json:"injected"`
	Detected int `json:"detected"`

	// Missed literals were expected but never flagged; unexpected ones
	// were flagged without being in the ground truth.
	Missed     []string `json:"missed,omitempty"`
	Unexpected []string `json:"unexpected,omitempty"`

	Warnings int `json:"warnings"`

	// Strict results hold the exact multiset contract; composed drafts
	// are only held to catching the planted literals.
	Strict bool   `json:"strict"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// DetectionReport aggregates a full calibration run
type DetectionReport struct {
	Timestamp         string           `json:"timestamp"`
	Scenarios         int              `json:"scenarios"`
	Passed            int              `json:"passed"`
	Failed            int              `json:"failed"`
	Injected          int              `json:"injected"`
	Detected          int              `json:"detected"`
	Missed            int              `json:"missed"`
	FalsePositives    int              `json:"false_positives"`
	DetectionRate     float64          `json:"detection_rate"`
	FalsePositiveRate float64          `json:"false_positive_rate"`
	Results           []ScenarioResult `json:"results"`
}

// EvaluateScenario scores one finalized draft against the scenario's
// expected leak multiset. For composed drafts only the planted literals
// are binding; extra detections are recorded but do not fail the run.
func EvaluateScenario(scenario Scenario, result *gate.GateResult, composed bool) ScenarioResult {
	expected := scenario.ExpectedLeaks
	if composed {
		expected = scenario.InjectLiterals
	}

	detected := make([]string, 0, len(result.Leaks))
	for _, leak := range result.Leaks {
		detected = append(detected, leak.Literal)
	}

	missed, unexpected := diffMultisets(expected, detected)

	sr := ScenarioResult{
		ScenarioID: scenario.ID,
		Name:       scenario.Name,
		Verdict:    result.Verdict.Kind,
		Injected:   len(expected),
		Detected:   len(expected) - len(missed),
		Missed:     missed,
		Unexpected: unexpected,
		Warnings:   len(result.Warnings),
		Strict:     !composed,
	}

	switch {
	case len(missed) > 0:
		sr.Status = "FAIL"
		sr.Detail = fmt.Sprintf("missed literals: %v", missed)
	case sr.Strict && len(unexpected) > 0:
		sr.Status = "FAIL"
		sr.Detail = fmt.Sprintf("unexpected detections: %v", unexpected)
	case sr.Strict && scenario.ExpectedWarnings != sr.Warnings:
		sr.Status = "FAIL"
		sr.Detail = fmt.Sprintf("warnings = %d, expected %d", sr.Warnings, scenario.ExpectedWarnings)
	default:
		sr.Status = "PASS"
		if len(unexpected) > 0 {
			sr.Detail = fmt.Sprintf("composed draft carried extra detections: %v", unexpected)
		}
	}

	return sr
}

// BuildReport aggregates scenario results into a calibration report
func BuildReport(results []ScenarioResult) DetectionReport {
	report := DetectionReport{
		Timestamp: time.Now().Format(time.RFC3339),
		Scenarios: len(results),
		Results:   results,
	}

	strictLeaks := 0
	for _, r := range results {
		if r.Status == "PASS" {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Injected += r.Injected
		report.Detected += r.Detected
		report.Missed += len(r.Missed)
		if r.Strict {
			report.FalsePositives += len(r.Unexpected)
			strictLeaks += r.Injected
		}
	}

	if report.Injected > 0 {
		report.DetectionRate = float64(report.Detected) / float64(report.Injected)
	} else {
		report.DetectionRate = 1.0
	}
	if strictLeaks > 0 {
		report.FalsePositiveRate = float64(report.FalsePositives) / float64(strictLeaks)
	}

	return report
}

// diffMultisets returns expected entries never detected and detected
// entries never expected, honoring multiplicity on both sides
func diffMultisets(expected, detected []string) (missed, unexpected []string) {
	counts := make(map[string]int, len(expected))
	for _, lit := range expected {
		counts[lit]++
	}

	for _, lit := range detected {
		if counts[lit] > 0 {
			counts[lit]--
			continue
		}
		unexpected = append(unexpected, lit)
	}

	for _, lit := range expected {
		if counts[lit] > 0 {
			counts[lit]--
			missed = append(missed, lit)
		}
	}

	return missed, unexpected
}
