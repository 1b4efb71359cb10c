// ABOUTME: CLI command to show scan journal aggregates
// ABOUTME: Summarizes registrations and scan verdicts, with recent scans when verbose
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	statsJournal string
	statsSession string
	statsLimit   int
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show journal aggregates",
		Long: `Summarize the scan journal: registrations by kind, scan events
by verdict, and the total leak candidates observed.

Examples:
  provenance stats
  provenance stats --journal scans.db --format json
  provenance stats -v --session sess_20260823_101500_a1b2c3d4`,
		RunE: runStats,
	}

	cmd.Flags().StringVar(&statsJournal, "journal", "", "Journal database (default XDG data dir)")
	cmd.Flags().StringVar(&statsSession, "session", "", "Limit recent scans to one session")
	cmd.Flags().IntVar(&statsLimit, "limit", 10, "Recent scans to list with --verbose")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsLimit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", statsLimit)
	}

	jnl, db, err := openJournal(statsJournal)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := jnl.Stats()
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Journal: %s\n\n", db.Path())
	fmt.Fprintf(out, "Registrations:\n")
	fmt.Fprintf(out, "  Tool:    %d\n", stats.ToolRegistrations)
	fmt.Fprintf(out, "  Derived: %d\n", stats.DerivedRegistrations)
	fmt.Fprintf(out, "Scan events: %d\n", stats.ScanEvents)
	fmt.Fprintf(out, "  Pass:          %d\n", stats.Passes)
	fmt.Fprintf(out, "  Blocked:       %d\n", stats.Blocked)
	fmt.Fprintf(out, "  Shadow logged: %d\n", stats.ShadowLogged)
	fmt.Fprintf(out, "Leaks observed: %d\n", stats.LeaksObserved)

	if verbose {
		scans, err := jnl.RecentScans(statsSession, statsLimit)
		if err != nil {
			return fmt.Errorf("reading recent scans: %w", err)
		}
		if len(scans) > 0 {
			fmt.Fprintf(out, "\nRecent scans:\n")
			for _, scan := range scans {
				fmt.Fprintf(out, "  %s  %s  %s  %d leak(s)  %s\n",
					formatTime(scan.ScannedAt), scan.Mode, scan.Verdict,
					scan.LeakCount, truncate(scan.SessionID, 30))
			}
		}
	}

	return nil
}
