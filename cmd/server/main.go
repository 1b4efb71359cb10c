// ABOUTME: Main entry point for the provenance MCP server with stdio transport
// ABOUTME: Initializes the registry, journal, and gate, then serves tools to agents
package main

import (
	"log"

	"github.com/harper/provenance-standalone/internal/config"
	"github.com/harper/provenance-standalone/internal/gate"
	"github.com/harper/provenance-standalone/internal/journal"
	"github.com/harper/provenance-standalone/internal/mcp"
	"github.com/harper/provenance-standalone/internal/registry"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func main() {
	// Load .env file if it exists (for gate and archive settings)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	mode, err := gate.ParseMode(cfg.GateMode)
	if err != nil {
		log.Fatalf("Invalid gate mode: %v", err)
	}

	// Each server process is one discovery session with a fresh registry
	reg := registry.New()

	// Journal recording is best-effort: a broken audit trail must not
	// change the gate's disposition
	var jnl *journal.Journal
	var recorder gate.ScanRecorder
	journalPath := cfg.JournalPath
	if journalPath == "" {
		journalPath = journal.DefaultDBPath()
	}
	db, err := journal.Open(journalPath)
	if err != nil {
		log.Printf("Warning: scan journal unavailable: %v", err)
	} else {
		defer func() { _ = db.Close() }()
		jnl = journal.NewJournal(db)
		recorder = jnl
	}

	g, err := gate.NewGate(reg, gate.Policy{
		Mode:      mode,
		Malformed: gate.MalformedPolicy(cfg.MalformedPolicy),
		Scan: gate.ScanConfig{
			AllowLiterals:    cfg.AllowLiterals,
			AllowListMarkers: cfg.AllowListMarkers,
		},
	}, recorder)
	if err != nil {
		log.Fatalf("Failed to initialize gate: %v", err)
	}

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Provenance Gate",
		"0.1.0",
	)

	// Register MCP tools
	mcp.RegisterTools(server, reg, g, jnl)

	// Start server with stdio transport
	log.Printf("Provenance MCP server starting on stdio (session %s, %s mode)...", reg.SessionID(), mode)
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
