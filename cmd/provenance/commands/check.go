// ABOUTME: CLI command to finalize a draft through the numeric leak gate
// ABOUTME: Renders placeholders, scans for bare numerals, and disposes by mode
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/provenance-standalone/internal/gate"
	"github.com/harper/provenance-standalone/internal/models"
)

var (
	checkSnapshot    string
	checkMode        string
	checkMalformed   string
	checkAllow       []string
	checkListMarkers bool
	checkJournal     string
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [template-file]",
		Short: "Gate a draft against the snapshot",
		Long: `Finalize a draft template through the numeric leak gate.

Substitutes <<T:key>> placeholders from the snapshot, then scans the
rendered text for numeric literals outside the substituted spans. In
enforce mode a leaking draft is blocked: each literal is reported and
the command exits nonzero without printing the text. In shadow mode
leaks are logged and the text is printed anyway.

Reads the template from the file argument, or stdin when omitted.

Examples:
  provenance check draft.txt
  provenance check draft.txt --mode enforce
  cat draft.txt | provenance check --mode shadow --journal scans.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().StringVar(&checkSnapshot, "snapshot", "provenance.json", "Snapshot file with registered facts")
	cmd.Flags().StringVar(&checkMode, "mode", "", "Gate mode: shadow or enforce (default GATE_MODE or shadow)")
	cmd.Flags().StringVar(&checkMalformed, "malformed", "", "Malformed placeholder policy: warn or fatal")
	cmd.Flags().StringSliceVar(&checkAllow, "allow", []string{}, "Literals to exempt from detection (comma-separated)")
	cmd.Flags().BoolVar(&checkListMarkers, "allow-list-markers", false, "Exempt leading list markers like \"1.\"")
	cmd.Flags().StringVar(&checkJournal, "journal", "", "Record the scan event to this journal database")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	var text string
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading template: %w", err)
		}
		text = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	reg, err := loadRegistry(checkSnapshot)
	if err != nil {
		return err
	}

	modeStr := checkMode
	if modeStr == "" {
		modeStr = os.Getenv("GATE_MODE")
	}
	mode, err := gate.ParseMode(modeStr)
	if err != nil {
		return err
	}

	// Journal recording is best-effort: a broken audit trail must not
	// change the gate's disposition
	var recorder gate.ScanRecorder
	if checkJournal != "" {
		jnl, db, err := openJournal(checkJournal)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		} else {
			recorder = jnl
			defer db.Close()
		}
	}

	g, err := gate.NewGate(reg, gate.Policy{
		Mode:      mode,
		Malformed: gate.MalformedPolicy(checkMalformed),
		Scan: gate.ScanConfig{
			AllowLiterals:    checkAllow,
			AllowListMarkers: checkListMarkers,
		},
	}, recorder)
	if err != nil {
		return err
	}

	result, err := g.Finalize(text)
	if err != nil {
		return fmt.Errorf("finalizing draft: %w", err)
	}

	if outputFormat == "json" {
		return printCheckJSON(cmd, result)
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: malformed placeholder %q (%s)\n", warning.Token, warning.Reason)
	}

	switch result.Verdict.Kind {
	case models.VerdictBlocked:
		fmt.Fprintf(cmd.ErrOrStderr(), "✗ Blocked: %d unprovenanced numeric literal(s)\n", len(result.Leaks))
		for _, reason := range result.Verdict.Reasons {
			fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", reason)
		}
		return fmt.Errorf("draft blocked by the gate")

	case models.VerdictShadowLogged:
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "Shadow: %d unprovenanced numeric literal(s) logged\n", len(result.Leaks))
			for _, reason := range result.Verdict.Reasons {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", reason)
			}
		}
		printGatedText(cmd, result.Text)

	default:
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Clean: no unprovenanced numerals\n")
		}
		printGatedText(cmd, result.Text)
	}

	return nil
}

func printGatedText(cmd *cobra.Command, text string) {
	fmt.Fprint(cmd.OutOrStdout(), text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(cmd.OutOrStdout())
	}
}

// printCheckJSON emits the gate result as JSON. The rendered text is
// withheld whenever the verdict is blocked.
func printCheckJSON(cmd *cobra.Command, result *gate.GateResult) error {
	payload := map[string]interface{}{
		"verdict":    result.Verdict.Kind,
		"leak_count": len(result.Leaks),
	}
	if len(result.Verdict.Reasons) > 0 {
		payload["reasons"] = result.Verdict.Reasons
	}
	if len(result.Leaks) > 0 {
		payload["leaks"] = result.Leaks
	}
	if len(result.Warnings) > 0 {
		payload["warnings"] = result.Warnings
	}
	if result.Verdict.Kind != models.VerdictBlocked {
		payload["text"] = result.Text
	}

	jsonData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)

	if result.Verdict.Kind == models.VerdictBlocked {
		return fmt.Errorf("draft blocked by the gate")
	}
	return nil
}
