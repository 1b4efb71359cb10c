// ABOUTME: Tests for DerivationRequest shape validation
// ABOUTME: Registry-level checks (parent existence, overclaim) are out of scope here
package models

import (
	"strings"
	"testing"
)

func TestDerivationRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     DerivationRequest
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid request",
			req: DerivationRequest{
				Key:     "derived_voltage_licoo2",
				Value:   2.92,
				Unit:    "V",
				Parents: []string{"mace_energy_licoo2", "mace_energy_coo2", "mace_energy_li"},
				Formula: "V = -(E_CoO2 + E_Li - E_LiCoO2)",
			},
			wantErr: false,
		},
		{
			name: "valid request with explicit confidence",
			req: DerivationRequest{
				Key:        "x",
				Value:      1.0,
				Parents:    []string{"a"},
				Formula:    "x = a",
				Confidence: floatPtr(0.5),
			},
			wantErr: false,
		},
		{
			name: "empty parents pass shape validation",
			req: DerivationRequest{
				Key:     "x",
				Value:   1.0,
				Formula: "x = 1",
			},
			wantErr: false,
		},
		{
			name: "invalid key",
			req: DerivationRequest{
				Key:     "bad key",
				Value:   1.0,
				Parents: []string{"a"},
				Formula: "x = a",
			},
			wantErr: true,
			errMsg:  "invalid key",
		},
		{
			name: "empty formula",
			req: DerivationRequest{
				Key:     "x",
				Value:   1.0,
				Parents: []string{"a"},
				Formula: "   ",
			},
			wantErr: true,
			errMsg:  "formula cannot be empty",
		},
		{
			name: "invalid parent key",
			req: DerivationRequest{
				Key:     "x",
				Value:   1.0,
				Parents: []string{"a", "bad parent"},
				Formula: "x = a",
			},
			wantErr: true,
			errMsg:  "invalid parent key",
		},
		{
			name: "duplicate parent key",
			req: DerivationRequest{
				Key:     "x",
				Value:   1.0,
				Parents: []string{"a", "b", "a"},
				Formula: "x = a + b",
			},
			wantErr: true,
			errMsg:  "duplicate parent key",
		},
		{
			name: "confidence out of range",
			req: DerivationRequest{
				Key:        "x",
				Value:      1.0,
				Parents:    []string{"a"},
				Formula:    "x = a",
				Confidence: floatPtr(1.2),
			},
			wantErr: true,
			errMsg:  "confidence must be 0.0-1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()

			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %q, want to contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}
