// ABOUTME: CLI command to register a derived value with parent lineage
// ABOUTME: Validates parents and formula, then appends to a snapshot file
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/provenance-standalone/internal/models"
)

var (
	deriveSnapshot    string
	deriveUnit        string
	deriveParents     []string
	deriveFormula     string
	deriveMethod      string
	deriveAssumptions []string
	deriveConfidence  float64
)

// NewDeriveCmd creates the derive command
func NewDeriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive <key> <value>",
		Short: "Register a value derived from registered facts",
		Long: `Register a value computed from already-registered facts.

Every parent must already exist in the snapshot, and the stated
confidence may not exceed the smallest parent confidence. When no
confidence is given the derivation inherits that minimum.

Examples:
  provenance derive voltage_licoo2 2.92 --unit V \
    --parents mace_energy_licoo2,mace_energy_coo2,mace_energy_li \
    --formula "V = -(E_CoO2 + E_Li - E_LiCoO2)"
  provenance derive capacity_est 148.2 --parents sample_count \
    --formula "Q = n * F / M" --assume electrode=LiCoO2 --assume cycle=first`,
		Args: cobra.ExactArgs(2),
		RunE: runDerive,
	}

	cmd.Flags().StringVar(&deriveSnapshot, "snapshot", "provenance.json", "Snapshot file to update")
	cmd.Flags().StringVar(&deriveUnit, "unit", "", "Unit for the derived value")
	cmd.Flags().StringSliceVar(&deriveParents, "parents", []string{}, "Parent fact keys (comma-separated)")
	cmd.Flags().StringVar(&deriveFormula, "formula", "", "Formula relating parents to the value (required)")
	cmd.Flags().StringVar(&deriveMethod, "method", "", "Method or code path used")
	cmd.Flags().StringSliceVar(&deriveAssumptions, "assume", []string{}, "Assumption as key=value (repeatable)")
	cmd.Flags().Float64Var(&deriveConfidence, "confidence", 1.0, "Confidence in [0,1]")

	return cmd
}

func runDerive(cmd *cobra.Command, args []string) error {
	key := args[0]
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[1], err)
	}

	assumptions, err := parseAssumptions(deriveAssumptions)
	if err != nil {
		return err
	}

	reg, err := loadRegistry(deriveSnapshot)
	if err != nil {
		return err
	}

	req := models.DerivationRequest{
		Key:         key,
		Value:       value,
		Unit:        deriveUnit,
		Parents:     deriveParents,
		Formula:     deriveFormula,
		Method:      deriveMethod,
		Assumptions: assumptions,
	}
	if cmd.Flags().Changed("confidence") {
		conf := deriveConfidence
		req.Confidence = &conf
	}

	fact, err := reg.RegisterDerivedValue(req)
	if err != nil {
		return fmt.Errorf("deriving %s: %w", key, err)
	}

	if err := saveRegistry(reg, deriveSnapshot); err != nil {
		return err
	}

	if !quiet {
		unitSuffix := ""
		if fact.Unit != "" {
			unitSuffix = " " + fact.Unit
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Derived %s = %v%s from %s (hash %s, confidence %.2f)\n",
			fact.Key, fact.Value, unitSuffix,
			strings.Join(fact.DerivedFrom, ", "), truncate(fact.Hash, 15), fact.Confidence)
		fmt.Fprintf(cmd.OutOrStdout(), "  Placeholder: <<T:%s>>\n", fact.Key)
	}
	return nil
}

// parseAssumptions converts key=value strings into a map
func parseAssumptions(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	assumptions := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid assumption %q: want key=value", pair)
		}
		assumptions[name] = value
	}
	return assumptions, nil
}
