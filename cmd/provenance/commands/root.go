// ABOUTME: Root command wiring global flags and all subcommands
// ABOUTME: Defines the verbose, quiet, and format flags shared across the CLI
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = ` ██████╗  █████╗ ████████╗███████╗
██╔════╝ ██╔══██╗╚══██╔══╝██╔════╝
██║  ███╗███████║   ██║   █████╗
██║   ██║██╔══██║   ██║   ██╔══╝
╚██████╔╝██║  ██║   ██║   ███████╗
 ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚══════╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provenance",
		Short: "Append-only fact registry with a render-time numeric leak gate",
		Long: banner + `

Provenance registers every numeric quantity a discovery session produces,
derives new values with explicit parent lineage, and gates finalized text
so no number reaches a reader without a registered origin.

Facts are write-once: a key, once bound to a value, never changes. Drafts
reference values through <<T:key>> placeholders; the gate substitutes the
registered values and flags every other numeric literal it finds.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewRecordCmd())
	cmd.AddCommand(NewDeriveCmd())
	cmd.AddCommand(NewFactsCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
