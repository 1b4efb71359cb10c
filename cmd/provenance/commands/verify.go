// ABOUTME: CLI command to verify a claimed fact hash
// ABOUTME: Checks a key and hash pair against the snapshot's registry
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verifySnapshot string
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <key> <hash>",
		Short: "Verify a claimed fact hash",
		Long: `Verify that a claimed hash matches the registered fact for a key.

Exits nonzero when the key is unregistered or the hash does not match,
so scripts can assert provenance before citing a value.

Examples:
  provenance verify voltage_licoo2 9f8a2c...
  provenance verify mace_energy_licoo2 $(jq -r '.tool_facts[0].hash' provenance.json)`,
		Args: cobra.ExactArgs(2),
		RunE: runVerify,
	}

	cmd.Flags().StringVar(&verifySnapshot, "snapshot", "provenance.json", "Snapshot file to read")

	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	key, claimedHash := args[0], args[1]

	reg, err := loadRegistry(verifySnapshot)
	if err != nil {
		return err
	}

	if _, ok := reg.Get(key); !ok {
		return fmt.Errorf("no fact registered under key %q", key)
	}
	if !reg.Verify(key, claimedHash) {
		return fmt.Errorf("hash mismatch for key %q", key)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Verified %s\n", key)
	}
	return nil
}
