package cli

import (
	mcpadapter "github.com/openkraft/prodcheck/internal/adapters/inbound/mcp"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/config"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the prodcheck MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start prodcheck MCP server (stdio)",
		Long:  "Start the prodcheck MCP server using stdio transport. Clients can run the checklist, list sections and validate environment files.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := mcpadapter.NewProdcheckMCPServer(configPath)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultFileName, "Path to the configuration file")

	return cmd
}
