package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parleybot/parley/internal/cli"
	"github.com/parleybot/parley/internal/logging"
	"github.com/parleybot/parley/pkg/adapters/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the bot as an MCP Server.
This allows AI agents (like Claude Desktop) to hold conversations with the bot as tool calls.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		redisURL, _ := cmd.Flags().GetString("redis")

		// Logs must stay off Stdout; stdio transport speaks JSON-RPC there.
		logger := logging.New(slog.LevelInfo)
		slog.SetDefault(logger)

		bot, cleanup, err := cli.BuildBot(configPath, redisURL, logger)
		if err != nil {
			log.Fatalf("Error initializing bot: %v", err)
		}
		defer cleanup()

		srv := mcp.NewServer(bot)

		switch transport {
		case "stdio":
			log.SetOutput(os.Stderr)
			slog.Info("Starting Parley MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				slog.Error("MCP Server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			slog.Info("Starting Parley MCP Server (SSE)", "port", port)

			// Create a context that cancels on interrupt signal
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				// Ignore server closed error if it was caused by context cancellation
				if err != http.ErrServerClosed {
					slog.Error("MCP Server execution failed", "err", err)
					os.Exit(1)
				}
			}
			slog.Info("MCP Server stopped gracefully")
		default:
			log.Fatalf("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("redis", "", "Redis URL for session persistence")
}
