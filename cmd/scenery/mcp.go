package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/scenery/internal/cli"
	"github.com/aretw0/scenery/internal/logging"
	"github.com/aretw0/scenery/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [dir]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the project's conversation as MCP tools so agents can talk to it.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Stdout carries JSON-RPC, so logs always go to stderr.
		logger := logging.New(slog.LevelInfo)
		if opts.Debug {
			logger = logging.New(slog.LevelDebug)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		project := cli.NewProject(opts, logger)
		g, err := project.LoadGraph(sigCtx)
		if err != nil {
			return err
		}
		bot, closeStore, err := project.NewBot(g)
		if err != nil {
			return err
		}
		defer closeStore()

		srv := mcp.NewServer(bot, mcp.WithLogger(logger))
		switch transport {
		case "stdio":
			logger.Info("starting MCP server", "transport", transport)
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting MCP server", "transport", transport, "port", port)
			if err := srv.ServeSSE(sigCtx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
