// ABOUTME: CLI command to list the facts in a snapshot
// ABOUTME: Shows key, kind, value, confidence, and lineage as a table or JSON
package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/provenance-standalone/internal/models"
)

var (
	factsSnapshot string
)

// NewFactsCmd creates the facts command
func NewFactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "List registered facts",
		Long: `List the facts registered in a snapshot.

Examples:
  provenance facts
  provenance facts --snapshot session.json
  provenance facts --format json`,
		RunE: runFacts,
	}

	cmd.Flags().StringVar(&factsSnapshot, "snapshot", "provenance.json", "Snapshot file to read")

	return cmd
}

func runFacts(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry(factsSnapshot)
	if err != nil {
		return err
	}

	facts := reg.Facts()
	if len(facts) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No facts registered\n")
		}
		return nil
	}

	if outputFormat == "json" {
		snap, err := reg.Snapshot()
		if err != nil {
			return fmt.Errorf("taking snapshot: %w", err)
		}
		jsonData, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KEY\tKIND\tVALUE\tUNIT\tCONF\tHASH\tCREATED\n")
	fmt.Fprintf(w, "---\t----\t-----\t----\t----\t----\t-------\n")

	for _, fact := range facts {
		unit := fact.FactUnit()
		if unit == "" {
			unit = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%v\t%s\t%.2f\t%s\t%s\n",
			truncate(fact.FactKey(), 30),
			fact.Kind(),
			fact.FactValue(),
			unit,
			fact.FactConfidence(),
			truncate(fact.FactHash(), 15),
			formatTime(fact.FactCreatedAt()))
	}
	w.Flush()

	if verbose {
		for _, fact := range facts {
			if derived, ok := fact.(*models.DerivedFact); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s = %s\n", derived.Key, derived.Formula)
				fmt.Fprintf(cmd.OutOrStdout(), "  parents: %s\n", strings.Join(derived.DerivedFrom, ", "))
			}
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nSession: %s, %d fact(s)\n", reg.SessionID(), len(facts))
	}

	return nil
}
