// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio for desktop agent integration
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/crmsync/handlers"
	"github.com/harperreed/crmsync/session"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, ws *session.Workspace, version string, logger *zap.Logger) error {
	logger.Info("starting CRM MCP server", zap.String("version", version))
	server := handlers.NewServer(ws, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
