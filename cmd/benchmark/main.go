// ABOUTME: Command-line runner for gate calibration benchmarks
// ABOUTME: Executes detection scenarios and outputs a JSON calibration report

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harper/provenance-standalone/benchmarks/gatecal"
	"github.com/joho/godotenv"
)

func main() {
	// Command-line flags
	scenarioID := flag.String("scenario", "", "Run a single scenario by ID. If empty, runs the full pack.")
	outputPath := flag.String("output", "gate_calibration.json", "Output path for the JSON report")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	useLLM := flag.Bool("llm", false, "Compose drafts through OpenAI for composable scenarios")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}

	apiKey := ""
	if *useLLM {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			log.Fatal("OPENAI_API_KEY environment variable is required with -llm")
		}
	}

	// Print header
	fmt.Println("========================================")
	fmt.Println("Provenance Gate Calibration")
	fmt.Println("========================================")
	fmt.Println()

	runner, err := gatecal.NewRunner(apiKey, *verbose)
	if err != nil {
		log.Fatalf("Failed to create calibration runner: %v", err)
	}

	// Run scenarios
	var results []gatecal.ScenarioResult

	if *scenarioID == "" {
		fmt.Println("Running all calibration scenarios...")
		fmt.Println()

		results, err = runner.RunAll()
		if err != nil {
			log.Fatalf("Calibration failed: %v", err)
		}
	} else {
		scenario, found := findScenario(*scenarioID)
		if !found {
			log.Fatalf("Unknown scenario ID: %s (see -scenario with one of %v)", *scenarioID, scenarioIDs())
		}

		fmt.Printf("Running scenario: %s\n\n", scenario.Name)

		result, err := runner.RunScenario(scenario)
		if err != nil {
			log.Fatalf("Scenario failed: %v", err)
		}

		results = []gatecal.ScenarioResult{result}
	}

	report := gatecal.BuildReport(results)

	// Print summary
	fmt.Println("\n========================================")
	fmt.Println("CALIBRATION SUMMARY")
	fmt.Println("========================================")

	for _, result := range report.Results {
		fmt.Printf("\n%s: %s\n", result.ScenarioID, result.Name)
		fmt.Printf("  Detected: %d/%d\n", result.Detected, result.Injected)
		if len(result.Missed) > 0 {
			fmt.Printf("  Missed: %v\n", result.Missed)
		}
		if len(result.Unexpected) > 0 {
			fmt.Printf("  Unexpected: %v\n", result.Unexpected)
		}
		fmt.Printf("  Status: %s\n", result.Status)
	}

	fmt.Println("\n========================================")
	fmt.Printf("Scenarios: %d\n", report.Scenarios)
	fmt.Printf("Passed: %d\n", report.Passed)
	fmt.Printf("Failed: %d\n", report.Failed)
	fmt.Printf("Detection rate: %.2f\n", report.DetectionRate)
	fmt.Printf("False positive rate: %.2f\n", report.FalsePositiveRate)
	fmt.Println("========================================")

	// Export results
	if err := runner.ExportResults(report, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	// Exit with error code if any scenario failed
	if report.Failed > 0 {
		os.Exit(1)
	}
}

func findScenario(id string) (gatecal.Scenario, bool) {
	for _, scenario := range gatecal.GetAllScenarios() {
		if scenario.ID == id {
			return scenario, true
		}
	}
	return gatecal.Scenario{}, false
}

func scenarioIDs() []string {
	scenarios := gatecal.GetAllScenarios()
	ids := make([]string, 0, len(scenarios))
	for _, scenario := range scenarios {
		ids = append(ids, scenario.ID)
	}
	return ids
}
