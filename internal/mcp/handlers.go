// ABOUTME: MCP tool handler implementations for the provenance server
// ABOUTME: Registry and gate errors surface as tool errors, never as protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/harper/provenance-standalone/internal/gate"
	"github.com/harper/provenance-standalone/internal/journal"
	"github.com/harper/provenance-standalone/internal/models"
	"github.com/harper/provenance-standalone/internal/registry"
	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	registry *registry.Registry
	gate     *gate.Gate
	journal  *journal.Journal // Optional; nil disables audit rows
}

// RecordToolFact handles the record_tool_fact tool
func (h *Handlers) RecordToolFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key argument is required and must be a string"), nil
	}
	value, ok := getFloatArg(request, "value")
	if !ok {
		return mcp.NewToolResultError("value argument is required and must be a number"), nil
	}
	sourceTool, err := request.RequireString("source_tool")
	if err != nil {
		return mcp.NewToolResultError("source_tool argument is required and must be a string"), nil
	}

	reading := models.ToolReading{
		SourceTool:   sourceTool,
		Value:        value,
		Unit:         request.GetString("unit", ""),
		RawOutputRef: request.GetString("raw_output_ref", ""),
	}
	if confidence, ok := getFloatArg(request, "confidence"); ok {
		reading.Confidence = &confidence
	}
	if ts := request.GetString("timestamp", ""); ts != "" {
		parsed, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid timestamp: %v", err)), nil
		}
		reading.Timestamp = parsed
	}

	fact, err := h.registry.RegisterReading(key, reading)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("registration failed: %v", err)), nil
	}
	h.recordRegistration(fact)

	response := map[string]interface{}{
		"key":         fact.Key,
		"hash":        fact.Hash,
		"value":       fact.Value,
		"unit":        fact.Unit,
		"confidence":  fact.Confidence,
		"placeholder": fmt.Sprintf("<<T:%s>>", fact.Key),
		"created_at":  fact.CreatedAt.Format(time.RFC3339),
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// RecordDerivation handles the record_derivation tool
func (h *Handlers) RecordDerivation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key argument is required and must be a string"), nil
	}
	value, ok := getFloatArg(request, "value")
	if !ok {
		return mcp.NewToolResultError("value argument is required and must be a number"), nil
	}
	formula, err := request.RequireString("formula")
	if err != nil {
		return mcp.NewToolResultError("formula argument is required and must be a string"), nil
	}
	parents := getStringArray(request, "parents")
	if len(parents) == 0 {
		return mcp.NewToolResultError("parents argument is required and must be a non-empty array of keys"), nil
	}

	req := models.DerivationRequest{
		Key:         key,
		Value:       value,
		Unit:        request.GetString("unit", ""),
		Parents:     parents,
		Formula:     formula,
		Method:      request.GetString("method", ""),
		Assumptions: getStringMap(request, "assumptions"),
	}
	if confidence, ok := getFloatArg(request, "confidence"); ok {
		req.Confidence = &confidence
	}

	fact, err := h.registry.RegisterDerivedValue(req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("derivation failed: %v", err)), nil
	}
	h.recordRegistration(fact)

	response := map[string]interface{}{
		"key":          fact.Key,
		"hash":         fact.Hash,
		"value":        fact.Value,
		"unit":         fact.Unit,
		"confidence":   fact.Confidence,
		"derived_from": fact.DerivedFrom,
		"placeholder":  fmt.Sprintf("<<T:%s>>", fact.Key),
		"created_at":   fact.CreatedAt.Format(time.RFC3339),
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// VerifyFact handles the verify_fact tool
func (h *Handlers) VerifyFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key argument is required and must be a string"), nil
	}
	hash, err := request.RequireString("hash")
	if err != nil {
		return mcp.NewToolResultError("hash argument is required and must be a string"), nil
	}

	response := map[string]interface{}{
		"key":      key,
		"verified": h.registry.Verify(key, hash),
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// GetFact handles the get_fact tool
func (h *Handlers) GetFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key argument is required and must be a string"), nil
	}

	fact, ok := h.registry.Get(key)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no fact registered under key %q", key)), nil
	}

	response, err := factResponse(fact)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// ListFacts handles the list_facts tool
func (h *Handlers) ListFacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	facts := h.registry.Facts()

	entries := make([]map[string]interface{}, 0, len(facts))
	for _, fact := range facts {
		entry, err := factResponse(fact)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		entries = append(entries, entry)
	}

	response := map[string]interface{}{
		"session_id": h.registry.SessionID(),
		"count":      len(entries),
		"facts":      entries,
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// FinalizeReport handles the finalize_report tool
func (h *Handlers) FinalizeReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	template, err := request.RequireString("template")
	if err != nil {
		return mcp.NewToolResultError("template argument is required and must be a string"), nil
	}

	result, err := h.gate.Finalize(template)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("finalize failed: %v", err)), nil
	}

	response := map[string]interface{}{
		"verdict":    string(result.Verdict.Kind),
		"leak_count": len(result.Leaks),
	}
	if len(result.Verdict.Reasons) > 0 {
		response["reasons"] = result.Verdict.Reasons
	}
	if len(result.Warnings) > 0 {
		response["warnings"] = result.Warnings
	}

	// Blocked text never reaches the caller. The leak details do: the
	// literals came from the caller's own draft, and they are what the
	// author needs to fix the template.
	if result.Verdict.Kind == models.VerdictBlocked {
		response["leaks"] = result.Leaks
		response["note"] = "output withheld: replace each flagged literal with a registered fact placeholder"
	} else {
		response["text"] = result.Text
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// GateMetrics handles the gate_metrics tool
func (h *Handlers) GateMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	metrics := h.gate.Metrics()

	response := map[string]interface{}{
		"mode":               string(h.gate.Mode()),
		"session_id":         h.registry.SessionID(),
		"total_scanned":      metrics.TotalScanned,
		"total_blocked":      metrics.TotalBlocked,
		"total_shadow_leaks": metrics.TotalShadowLeaks,
	}
	if h.journal != nil {
		stats, err := h.journal.Stats()
		if err != nil {
			log.Printf("Warning: journal stats failed: %v", err)
		} else {
			response["journal"] = stats
		}
	}

	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}

	return mcp.NewToolResultText(string(responseJSON)), nil
}

// recordRegistration appends an audit row; failures are logged, not fatal
func (h *Handlers) recordRegistration(fact models.Fact) {
	if h.journal == nil {
		return
	}
	if err := h.journal.RecordRegistration(h.registry.SessionID(), fact); err != nil {
		log.Printf("Warning: failed to journal registration of %s: %v", fact.FactKey(), err)
	}
}

// factResponse renders one fact for tool output, including its provenance
func factResponse(fact models.Fact) (map[string]interface{}, error) {
	entry := map[string]interface{}{
		"key":        fact.FactKey(),
		"kind":       string(fact.Kind()),
		"value":      fact.FactValue(),
		"unit":       fact.FactUnit(),
		"hash":       fact.FactHash(),
		"confidence": fact.FactConfidence(),
		"created_at": fact.FactCreatedAt().Format(time.RFC3339),
	}
	switch f := fact.(type) {
	case *models.ToolFact:
		entry["source_tool"] = f.SourceTool
		if f.RawOutputRef != "" {
			entry["raw_output_ref"] = f.RawOutputRef
		}
	case *models.DerivedFact:
		entry["derived_from"] = f.DerivedFrom
		entry["parent_hashes"] = f.ParentHashes
		entry["formula"] = f.Formula
		if f.Method != "" {
			entry["method"] = f.Method
		}
		if len(f.Assumptions) > 0 {
			entry["assumptions"] = f.Assumptions
		}
	default:
		return nil, fmt.Errorf("unknown fact kind %T for key %q", fact, fact.FactKey())
	}
	return entry, nil
}

// getFloatArg reads a numeric argument from the raw arguments map
func getFloatArg(request mcp.CallToolRequest, key string) (float64, bool) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return 0, false
	}
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// getStringArray reads a string-array argument from the raw arguments map
func getStringArray(request mcp.CallToolRequest, key string) []string {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	arr, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, item := range arr {
		if str, ok := item.(string); ok {
			result = append(result, str)
		}
	}
	return result
}

// getStringMap reads an object argument with string values from the raw arguments map
func getStringMap(request mcp.CallToolRequest, key string) map[string]string {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	obj, ok := args[key].(map[string]interface{})
	if !ok {
		return nil
	}
	result := make(map[string]string, len(obj))
	for k, v := range obj {
		if str, ok := v.(string); ok {
			result[k] = str
		}
	}
	return result
}
