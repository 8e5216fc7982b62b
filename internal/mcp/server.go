// Package mcp exposes the engine as Model Context Protocol tools over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pauljbernard/headelf/internal/engine"
)

// Config holds MCP server configuration.
type Config struct {
	Version string
	Logger  *zap.Logger
}

// Server wraps the MCP SDK server around an Engine.
type Server struct {
	mcpServer *mcpsdk.Server
	engine    *engine.Engine
	logger    *zap.Logger
}

// New creates an MCP server with all headelf tools registered.
func New(eng *engine.Engine, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{engine: eng, logger: logger}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "headelf",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all headelf tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "headelf_detect",
		Description: "Score text, business metrics, a domain and compliance frameworks against industry verticals. Returns industries above the confidence threshold, highest first.",
	}, s.handleDetect)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "headelf_route",
		Description: "Route an executive decision to the industry handlers selected by the routing rules. Each handler result is reported separately, including failures.",
	}, s.handleRoute)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "headelf_analyze",
		Description: "Ask industry handlers to analyze a business context. Defaults to all active industries.",
	}, s.handleAnalyze)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "headelf_compliance",
		Description: "List compliance requirements that apply to a business context per industry.",
	}, s.handleCompliance)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "headelf_industries",
		Description: "List registered and active industries, optionally activating or deactivating some first.",
	}, s.handleIndustries)
}
