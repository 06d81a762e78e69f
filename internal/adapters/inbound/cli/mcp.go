package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/a11yfix/a11yfix/internal/adapters/inbound/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the a11yfix MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(a))
	return cmd
}

func newMCPServeCmd(a *app) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a11yfix MCP server (stdio)",
		Long: "Start the a11yfix MCP server using stdio transport. This lets AI coding assistants " +
			"locate markup in the project and plan patches from audit reports without writing files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = "."
			}
			a.log.Info("starting mcp server")
			s := mcpadapter.NewA11yfixMCPServer(projectPath, a.cfg)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}
