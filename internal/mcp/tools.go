// ABOUTME: MCP tool definitions and registration for the provenance server
// ABOUTME: Defines JSON schemas for all 7 tools exposed to the assistant
package mcp

import (
	"github.com/harper/provenance-standalone/internal/gate"
	"github.com/harper/provenance-standalone/internal/journal"
	"github.com/harper/provenance-standalone/internal/registry"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, reg *registry.Registry, g *gate.Gate, j *journal.Journal) *Handlers {
	// Initialize handlers
	handlers := &Handlers{
		registry: reg,
		gate:     g,
		journal:  j,
	}

	// 1. record_tool_fact - Register a numeric value produced by a tool call
	server.AddTool(mcp.Tool{
		Name:        "record_tool_fact",
		Description: "Register a numeric value produced by a tool call. Returns the fact's content hash and the placeholder token to embed in report templates instead of the number itself.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Registry key for the fact (letters, digits, underscore, dot)",
				},
				"value": map[string]interface{}{
					"type":        "number",
					"description": "Numeric value exactly as the tool reported it",
				},
				"unit": map[string]interface{}{
					"type":        "string",
					"description": "Physical unit, e.g. 'eV' or 'V'",
				},
				"source_tool": map[string]interface{}{
					"type":        "string",
					"description": "Name of the tool that produced the value",
				},
				"raw_output_ref": map[string]interface{}{
					"type":        "string",
					"description": "Optional reference to the raw tool output (file path, run ID)",
				},
				"confidence": map[string]interface{}{
					"type":        "number",
					"description": "Confidence 0-1 (default: 1.0)",
				},
				"timestamp": map[string]interface{}{
					"type":        "string",
					"description": "Optional RFC3339 capture time (default: now)",
				},
			},
			Required: []string{"key", "value", "source_tool"},
		},
	}, handlers.RecordToolFact)

	// 2. record_derivation - Register a value computed from registered facts
	server.AddTool(mcp.Tool{
		Name:        "record_derivation",
		Description: "Register a value computed from already-registered facts. Parents must exist; confidence may not exceed the minimum parent confidence.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Registry key for the derived fact",
				},
				"value": map[string]interface{}{
					"type":        "number",
					"description": "Computed numeric value",
				},
				"unit": map[string]interface{}{
					"type":        "string",
					"description": "Physical unit of the result",
				},
				"parents": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Keys of the facts this value was computed from",
				},
				"formula": map[string]interface{}{
					"type":        "string",
					"description": "Human-readable formula, e.g. 'V = -(E_CoO2 + E_Li - E_LiCoO2)'",
				},
				"method": map[string]interface{}{
					"type":        "string",
					"description": "Optional method label, e.g. 'dft_reaction_energy'",
				},
				"assumptions": map[string]interface{}{
					"type":        "object",
					"description": "Optional assumption map, e.g. {\"temperature\": \"0K\"}",
				},
				"confidence": map[string]interface{}{
					"type":        "number",
					"description": "Confidence 0-1 (default: minimum over parents)",
				},
			},
			Required: []string{"key", "value", "parents", "formula"},
		},
	}, handlers.RecordDerivation)

	// 3. verify_fact - Check a claimed hash against the registry
	server.AddTool(mcp.Tool{
		Name:        "verify_fact",
		Description: "Check whether a claimed content hash matches the registered fact under a key. Use this to reject provenance claims smuggled in via prompt text.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Registry key to check",
				},
				"hash": map[string]interface{}{
					"type":        "string",
					"description": "Claimed content hash",
				},
			},
			Required: []string{"key", "hash"},
		},
	}, handlers.VerifyFact)

	// 4. get_fact - Retrieve one registered fact with its provenance
	server.AddTool(mcp.Tool{
		Name:        "get_fact",
		Description: "Retrieve a registered fact with its full provenance: value, unit, hash, confidence, and source or derivation chain.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"key": map[string]interface{}{
					"type":        "string",
					"description": "Registry key to look up",
				},
			},
			Required: []string{"key"},
		},
	}, handlers.GetFact)

	// 5. list_facts - List every fact registered in this session
	server.AddTool(mcp.Tool{
		Name:        "list_facts",
		Description: "List all facts registered in the current session with their keys, kinds, values, and hashes.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListFacts)

	// 6. finalize_report - Render a template and scan it for leaks
	server.AddTool(mcp.Tool{
		Name:        "finalize_report",
		Description: "Render a report template by resolving <<T:key>> placeholders, then scan the output for numeric literals without provenance. Blocked output is withheld.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"template": map[string]interface{}{
					"type":        "string",
					"description": "Report text with <<T:key>> placeholders for every numeric claim",
				},
			},
			Required: []string{"template"},
		},
	}, handlers.FinalizeReport)

	// 7. gate_metrics - Report detection counters and journal totals
	server.AddTool(mcp.Tool{
		Name:        "gate_metrics",
		Description: "Report the gate's mode and cumulative detection counters, plus journal totals when a journal is attached.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GateMetrics)

	return handlers
}
