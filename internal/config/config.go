// ABOUTME: Centralized configuration for the provenance gate and its surfaces
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the provenance system
type Config struct {
	// Gate settings
	GateMode         string
	MalformedPolicy  string
	AllowLiterals    []string
	AllowListMarkers bool

	// Journal settings
	JournalPath string

	// Charm settings (snapshot archive)
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings (calibration draft generation)
	OpenAIKey  string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults: shadow first, enforce is an explicit decision
		GateMode:         getEnv("GATE_MODE", "shadow"),
		MalformedPolicy:  os.Getenv("GATE_MALFORMED"),
		AllowLiterals:    getEnvStrings("GATE_ALLOW_LITERALS"),
		AllowListMarkers: getEnvBool("GATE_ALLOW_LIST_MARKERS", false),
		JournalPath:      os.Getenv("GATE_JOURNAL_PATH"),
		CharmHost:        getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:      getEnv("CHARM_DB", "provenance"),
		AutoSync:         getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		ChatModel:        getEnv("GATE_OPENAI_MODEL", "gpt-4o-mini"),
		Timeout:          getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:       getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:       getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.GateMode != "shadow" && c.GateMode != "enforce" {
		return fmt.Errorf("GATE_MODE must be shadow or enforce, got %q", c.GateMode)
	}
	if c.MalformedPolicy != "" && c.MalformedPolicy != "warn" && c.MalformedPolicy != "fatal" {
		return fmt.Errorf("GATE_MALFORMED must be warn or fatal, got %q", c.MalformedPolicy)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvStrings parses a comma-separated list, dropping empty entries
func getEnvStrings(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
