// ABOUTME: CLI command to register a tool-produced fact
// ABOUTME: Parses the value and metadata, then appends to a snapshot file
package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/provenance-standalone/internal/models"
)

var (
	recordSnapshot   string
	recordUnit       string
	recordSource     string
	recordRawRef     string
	recordConfidence float64
	recordTimestamp  string
)

// NewRecordCmd creates the record command
func NewRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <key> <value>",
		Short: "Register a tool-produced fact",
		Long: `Register a numeric value produced by a tool.

Keys are write-once: registering the same key again succeeds only when
source, value, and unit are identical. Reference the registered value
in drafts as <<T:key>>.

Examples:
  provenance record sample_count 148 --source xrd_loader
  provenance record mace_energy_licoo2 --unit eV --source mace -- -21.96
  provenance record cell_temp 295.4 --unit K --source thermocouple --confidence 0.98`,
		Args: cobra.ExactArgs(2),
		RunE: runRecord,
	}

	cmd.Flags().StringVar(&recordSnapshot, "snapshot", "provenance.json", "Snapshot file to update")
	cmd.Flags().StringVar(&recordUnit, "unit", "", "Unit for the value (e.g. eV, V, K)")
	cmd.Flags().StringVar(&recordSource, "source", "", "Tool that produced the value (required)")
	cmd.Flags().StringVar(&recordRawRef, "raw-ref", "", "Reference to the raw tool output")
	cmd.Flags().Float64Var(&recordConfidence, "confidence", 1.0, "Confidence in [0,1]")
	cmd.Flags().StringVar(&recordTimestamp, "timestamp", "", "Measurement time (RFC3339, defaults to now)")

	return cmd
}

func runRecord(cmd *cobra.Command, args []string) error {
	key := args[0]
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[1], err)
	}

	reg, err := loadRegistry(recordSnapshot)
	if err != nil {
		return err
	}

	reading := models.ToolReading{
		SourceTool:   recordSource,
		Value:        value,
		Unit:         recordUnit,
		RawOutputRef: recordRawRef,
	}
	if cmd.Flags().Changed("confidence") {
		conf := recordConfidence
		reading.Confidence = &conf
	}
	if recordTimestamp != "" {
		ts, err := time.Parse(time.RFC3339, recordTimestamp)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", recordTimestamp, err)
		}
		reading.Timestamp = ts
	}

	fact, err := reg.RegisterReading(key, reading)
	if err != nil {
		return fmt.Errorf("registering %s: %w", key, err)
	}

	if err := saveRegistry(reg, recordSnapshot); err != nil {
		return err
	}

	if !quiet {
		unitSuffix := ""
		if fact.Unit != "" {
			unitSuffix = " " + fact.Unit
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered %s = %v%s (hash %s)\n",
			fact.Key, fact.Value, unitSuffix, truncate(fact.Hash, 15))
		fmt.Fprintf(cmd.OutOrStdout(), "  Placeholder: <<T:%s>>\n", fact.Key)
	}
	return nil
}
