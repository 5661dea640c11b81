package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/simbleau/convo/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <file>",
	Short: "Run a Model Context Protocol server for a dialogue tree",
	Long: `Starts an MCP server so AI agents can walk the dialogue tree as tools:
starting and resuming walks, making choices, peeking at the current
node, and validating the tree.

Transports:
- stdio (default): JSON-RPC over standard input/output.
- sse: Server-Sent Events over HTTP, for remote agents.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		if err := serveMCP(cmd.Context(), args[0], transport, port); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "transport to use: stdio or sse")
	mcpCmd.Flags().Int("port", 8080, "port to listen on (sse only)")
}

func serveMCP(parent context.Context, path, transport string, port int) error {
	logger := newLogger()

	t, err := loadTree(path)
	if err != nil {
		return err
	}

	manager, closeStore, err := newManager()
	if err != nil {
		return err
	}
	defer closeStore()

	srv := mcp.NewServer(t, manager)

	switch transport {
	case "stdio":
		// Stdout carries JSON-RPC; everything else must go to stderr.
		log.SetOutput(os.Stderr)
		logger.Info("mcp server listening on stdio", "file", path)
		return srv.ServeStdio()

	case "sse":
		ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("mcp server listening", "transport", "sse", "port", port, "file", path)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("mcp server stopped")
		return nil

	default:
		return fmt.Errorf("unknown transport %q (expected stdio or sse)", transport)
	}
}
