// ABOUTME: Tests for the record command
// ABOUTME: Covers flag defaults, registration, write-once conflicts, and value parsing

package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/provenance-standalone/internal/registry"
)

func TestNewRecordCmd(t *testing.T) {
	cmd := NewRecordCmd()

	if !strings.HasPrefix(cmd.Use, "record") {
		t.Errorf("Use = %q, want it to start with %q", cmd.Use, "record")
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if cmd.RunE == nil {
		t.Error("RunE should be set")
	}
}

func TestRecordCmd_Flags(t *testing.T) {
	cmd := NewRecordCmd()

	tests := []struct {
		flagName string
		defValue string
	}{
		{"snapshot", "provenance.json"},
		{"unit", ""},
		{"source", ""},
		{"raw-ref", ""},
		{"confidence", "1"},
		{"timestamp", ""},
	}

	for _, tt := range tests {
		t.Run(tt.flagName, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Fatalf("--%s flag not found", tt.flagName)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestRecordCmd_RegistersFact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.json")

	cmd := NewRecordCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetArgs([]string{"--snapshot", path, "--unit", "eV", "--source", "dft_scan", "band_gap", "2.7"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := output.String()
	if !contains(got, "✓ Registered band_gap") {
		t.Errorf("output = %q, want registration confirmation", got)
	}
	if !contains(got, "<<T:band_gap>>") {
		t.Errorf("output = %q, want placeholder hint", got)
	}

	reg, err := registry.RestoreFile(path)
	if err != nil {
		t.Fatalf("RestoreFile() error = %v", err)
	}
	fact, ok := reg.Get("band_gap")
	if !ok {
		t.Fatal("fact not found in snapshot")
	}
	if fact.FactValue() != 2.7 {
		t.Errorf("value = %v, want 2.7", fact.FactValue())
	}
	if fact.FactUnit() != "eV" {
		t.Errorf("unit = %q, want %q", fact.FactUnit(), "eV")
	}
}

func TestRecordCmd_NegativeValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.json")

	cmd := NewRecordCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--snapshot", path, "--unit", "eV", "--source", "mace", "--", "total_energy", "-21.96"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	reg, err := registry.RestoreFile(path)
	if err != nil {
		t.Fatalf("RestoreFile() error = %v", err)
	}
	fact, ok := reg.Get("total_energy")
	if !ok {
		t.Fatal("fact not found in snapshot")
	}
	if fact.FactValue() != -21.96 {
		t.Errorf("value = %v, want -21.96", fact.FactValue())
	}
}

func TestRecordCmd_IdenticalReRegister(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.json")
	args := []string{"--snapshot", path, "--source", "xrd_loader", "sample_count", "148"}

	for i := 0; i < 2; i++ {
		cmd := NewRecordCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs(args)
		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() run %d error = %v", i+1, err)
		}
	}
}

func TestRecordCmd_ConflictingReRegister(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.json")

	cmd := NewRecordCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--snapshot", path, "--source", "xrd_loader", "sample_count", "148"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}

	cmd = NewRecordCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--snapshot", path, "--source", "xrd_loader", "sample_count", "149"})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for conflicting re-registration, got nil")
	}
	if !contains(err.Error(), "duplicate key") {
		t.Errorf("error = %q, want it to mention duplicate key", err.Error())
	}
}

func TestRecordCmd_InvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.json")

	cmd := NewRecordCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--snapshot", path, "--source", "dft_scan", "band_gap", "not-a-number"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for non-numeric value, got nil")
	}
	if !contains(err.Error(), "invalid value") {
		t.Errorf("error = %q, want it to mention invalid value", err.Error())
	}
}
