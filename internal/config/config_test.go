// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies environment variable parsing and validation
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear environment to test defaults
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify defaults
	if cfg.GateMode != "shadow" {
		t.Errorf("GateMode = %s, want shadow", cfg.GateMode)
	}
	if cfg.MalformedPolicy != "" {
		t.Errorf("MalformedPolicy = %s, want empty (follow mode)", cfg.MalformedPolicy)
	}
	if cfg.AllowLiterals != nil {
		t.Errorf("AllowLiterals = %v, want nil", cfg.AllowLiterals)
	}
	if cfg.AllowListMarkers {
		t.Error("AllowListMarkers = true, want false")
	}
	if cfg.JournalPath != "" {
		t.Errorf("JournalPath = %s, want empty (XDG default)", cfg.JournalPath)
	}
	if cfg.CharmHost != "cloud.charm.sh" {
		t.Errorf("CharmHost = %s, want cloud.charm.sh", cfg.CharmHost)
	}
	if cfg.CharmDBName != "provenance" {
		t.Errorf("CharmDBName = %s, want provenance", cfg.CharmDBName)
	}
	if !cfg.AutoSync {
		t.Error("AutoSync = false, want true")
	}
	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("ChatModel = %s, want gpt-4o-mini", cfg.ChatModel)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	// Set custom environment variables
	os.Clearenv()
	os.Setenv("GATE_MODE", "enforce")
	os.Setenv("GATE_MALFORMED", "warn")
	os.Setenv("GATE_ALLOW_LITERALS", "1, 2,3 ,")
	os.Setenv("GATE_ALLOW_LIST_MARKERS", "true")
	os.Setenv("GATE_JOURNAL_PATH", "/tmp/journal.db")
	os.Setenv("CHARM_HOST", "custom.charm.sh")
	os.Setenv("CHARM_DB", "test_db")
	os.Setenv("CHARM_AUTO_SYNC", "false")
	os.Setenv("OPENAI_API_KEY", "test-key")
	os.Setenv("GATE_OPENAI_MODEL", "gpt-4")
	os.Setenv("OPENAI_TIMEOUT", "60s")
	os.Setenv("OPENAI_MAX_RETRIES", "5")
	os.Setenv("OPENAI_RETRY_DELAY", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify custom values
	if cfg.GateMode != "enforce" {
		t.Errorf("GateMode = %s, want enforce", cfg.GateMode)
	}
	if cfg.MalformedPolicy != "warn" {
		t.Errorf("MalformedPolicy = %s, want warn", cfg.MalformedPolicy)
	}
	if len(cfg.AllowLiterals) != 3 || cfg.AllowLiterals[0] != "1" || cfg.AllowLiterals[2] != "3" {
		t.Errorf("AllowLiterals = %v, want [1 2 3]", cfg.AllowLiterals)
	}
	if !cfg.AllowListMarkers {
		t.Error("AllowListMarkers = false, want true")
	}
	if cfg.JournalPath != "/tmp/journal.db" {
		t.Errorf("JournalPath = %s, want /tmp/journal.db", cfg.JournalPath)
	}
	if cfg.CharmHost != "custom.charm.sh" {
		t.Errorf("CharmHost = %s, want custom.charm.sh", cfg.CharmHost)
	}
	if cfg.CharmDBName != "test_db" {
		t.Errorf("CharmDBName = %s, want test_db", cfg.CharmDBName)
	}
	if cfg.AutoSync {
		t.Error("AutoSync = true, want false")
	}
	if cfg.OpenAIKey != "test-key" {
		t.Errorf("OpenAIKey = %s, want test-key", cfg.OpenAIKey)
	}
	if cfg.ChatModel != "gpt-4" {
		t.Errorf("ChatModel = %s, want gpt-4", cfg.ChatModel)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 3*time.Second {
		t.Errorf("RetryDelay = %v, want 3s", cfg.RetryDelay)
	}
}

func TestValidate_InvalidGateMode(t *testing.T) {
	os.Clearenv()
	os.Setenv("GATE_MODE", "audit")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail for an unknown gate mode")
	}
}

func TestValidate_InvalidMalformedPolicy(t *testing.T) {
	cfg := &Config{
		GateMode:        "shadow",
		MalformedPolicy: "ignore",
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should fail for an unknown malformed policy")
	}
}

func TestValidate_InvalidMaxRetries(t *testing.T) {
	cfg := &Config{
		GateMode:   "shadow",
		MaxRetries: 15,
	}

	err := cfg.Validate()
	if err == nil {
		t.Error("Validate() should fail for MaxRetries > 10")
	}

	cfg.MaxRetries = -1
	err = cfg.Validate()
	if err == nil {
		t.Error("Validate() should fail for MaxRetries < 0")
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		defaultVal bool
		want       bool
	}{
		{"empty uses default true", "", true, true},
		{"empty uses default false", "", false, false},
		{"true", "true", false, true},
		{"1", "1", false, true},
		{"false", "false", true, false},
		{"0", "0", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv("TEST_BOOL", tt.value)
			}
			got := getEnvBool("TEST_BOOL", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvStrings(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 0},
		{"single", "1", 1},
		{"spaced list drops empties", " 1 , 2 ,, 3 ", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv("TEST_STRINGS", tt.value)
			}
			got := getEnvStrings("TEST_STRINGS")
			if len(got) != tt.want {
				t.Errorf("getEnvStrings() = %v, want %d entries", got, tt.want)
			}
		})
	}
}
