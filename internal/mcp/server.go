package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"sidenotes/internal/reconcile"
	"sidenotes/internal/service"
)

// Server exposes the notepad library over MCP so agents can read and
// edit notes through the same services the UI uses.
type Server struct {
	mcp      *server.MCPServer
	emitter  service.EventEmitter
	prompt   reconcile.Prompt
	notepads *service.NotepadService
	transfer *service.TransferService
	log      *logrus.Entry
}

// Deps holds all dependencies passed from the app layer.
type Deps struct {
	Emitter  service.EventEmitter
	Prompt   reconcile.Prompt
	Notepads *service.NotepadService
	Transfer *service.TransferService
}

// New creates and configures an MCP server with all notepad tools.
func New(ctx context.Context, deps Deps) *Server {
	s := &Server{
		emitter:  deps.Emitter,
		prompt:   deps.Prompt,
		notepads: deps.Notepads,
		transfer: deps.Transfer,
		log:      logrus.WithField("component", "mcp"),
	}

	s.mcp = server.NewMCPServer(
		"sidenotes-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerNotepadTools()
	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info("starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}
