// ABOUTME: Tests for MCP server command
// ABOUTME: Verifies command structure and MCP-specific properties

package commands

import (
	"strings"
	"testing"
)

func TestNewMCPCmd(t *testing.T) {
	cmd := NewMCPCmd()

	if cmd.Use != "mcp" {
		t.Errorf("Use = %q, want %q", cmd.Use, "mcp")
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if !strings.Contains(cmd.Short, "MCP") {
		t.Error("Short description should mention MCP")
	}

	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}

	if !strings.Contains(cmd.Long, "Model Context Protocol") {
		t.Error("Long description should explain MCP acronym")
	}

	if !strings.Contains(cmd.Long, "stdio") {
		t.Error("Long description should mention stdio transport")
	}

	if cmd.RunE == nil {
		t.Error("RunE should be set")
	}
}

func TestMCPCmd_Example(t *testing.T) {
	cmd := NewMCPCmd()

	if cmd.Example == "" {
		t.Error("Example should not be empty")
	}

	if !strings.Contains(cmd.Example, "provenance mcp") {
		t.Error("Example should show basic usage")
	}

	if !strings.Contains(cmd.Example, "claude_desktop_config.json") {
		t.Error("Example should mention Claude Desktop configuration")
	}
}

func TestMCPCmd_NoArgsRequired(t *testing.T) {
	cmd := NewMCPCmd()

	// Args validator stays nil so the server starts bare
	if cmd.Args != nil {
		t.Error("mcp command should not require positional arguments")
	}
}
