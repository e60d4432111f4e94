package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/openlh/lighthoused/pkg/lighthouse"
)

// Registration is the SteamVR registration surface used by the tools.
type Registration interface {
	Register() error
	Unregister() error
	Status() (bool, error)
}

// Server wraps the MCP server with base station control functionality
type Server struct {
	mcpServer  *server.MCPServer
	controller lighthouse.Controller
	bridge     Registration
}

// NewServer creates a new MCP server for base station control
func NewServer(controller lighthouse.Controller, bridge Registration) *Server {
	s := &Server{
		controller: controller,
		bridge:     bridge,
	}

	// Create MCP server
	s.mcpServer = server.NewMCPServer(
		"lighthoused",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Register all tools
	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
