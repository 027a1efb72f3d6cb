package main

import (
	"context"

	"github.com/spf13/cobra"

	"driftwatch/internal/logging"
	mcpserver "driftwatch/internal/mcp"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var serveFlags struct {
	signatures  string
	historyPath string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the decomposition,
anomaly, and diagnosis tools to agent frontends.

The server monitors for parent process death. When the client
disconnects or restarts, the server self-terminates to prevent zombie
processes.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.signatures, "signatures", "", "Co-movement signature YAML (default embedded table)")
	f.StringVar(&serveFlags.historyPath, "history", "", "Diagnosis history DB path (enables precedent lookups)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv, err := mcpserver.NewServer(mcpserver.Options{
		SignaturesPath: serveFlags.signatures,
		HistoryPath:    serveFlags.historyPath,
		Version:        version,
	})
	if err != nil {
		return err
	}
	defer srv.Shutdown()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting driftwatch MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
