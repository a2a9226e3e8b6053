package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewProdcheckMCPServer creates an MCP server with the prodcheck tools and
// resources registered. configPath names the configuration file every call
// loads; a missing file means the defaults.
func NewProdcheckMCPServer(configPath string) *server.MCPServer {
	s := server.NewMCPServer(
		"prodcheck",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, configPath)
	registerResources(s, configPath)

	return s
}
