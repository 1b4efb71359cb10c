// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Exposes fact registration and the finalize gate to LLM agents over stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/provenance-standalone/internal/config"
	"github.com/harper/provenance-standalone/internal/gate"
	"github.com/harper/provenance-standalone/internal/mcp"
	"github.com/harper/provenance-standalone/internal/registry"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs the provenance registry and finalize gate as a Model Context Protocol
server over stdio. Agents register tool facts and derivations during a
discovery session, then finalize drafts through the numeric leak gate
before any text reaches a reader.

Configure in Claude Desktop's config file to enable the tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an agent runtime)
  provenance mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "provenance": {
  #       "command": "provenance",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for gate and archive settings)
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	mode, err := gate.ParseMode(cfg.GateMode)
	if err != nil {
		return err
	}

	// Each server process is one discovery session with a fresh registry
	reg := registry.New()

	// The journal is best-effort: a broken audit trail must not keep the
	// gate from running
	var recorder gate.ScanRecorder
	jnl, jdb, jerr := openJournal(cfg.JournalPath)
	if jerr != nil {
		log.Printf("Warning: scan journal unavailable: %v", jerr)
		jnl = nil
	} else {
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
		return err
	}

	// Create MCP server
	server := mcpserver.NewMCPServer(
		"Provenance Gate",
		"0.1.0",
	)

	// Register MCP tools
	mcp.RegisterTools(server, reg, g, jnl)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Printf("Provenance MCP server starting on stdio (session %s, %s mode)...",
			reg.SessionID(), mode)
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}

		if jdb != nil {
			if err := jdb.Close(); err != nil {
				log.Printf("Warning: Error closing journal: %v", err)
			}
		}

		if !quiet {
			log.Println("Shutdown complete")
		}

	case err := <-serverErr:
		if jdb != nil {
			_ = jdb.Close()
		}
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
