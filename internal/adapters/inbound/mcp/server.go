package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/a11yfix/a11yfix/internal/domain"
)

// NewA11yfixMCPServer creates an MCP server with all a11yfix tools and
// resources registered. projectPath is the source tree the tools work on.
// Nothing registered here writes to the tree.
func NewA11yfixMCPServer(projectPath string, cfg domain.Config) *server.MCPServer {
	s := server.NewMCPServer(
		"a11yfix",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, cfg)
	registerResources(s, projectPath, cfg)

	return s
}
