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

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/cli"
	"github.com/aretw0/tendril/internal/config"
	"github.com/aretw0/tendril/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [dir]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the dialogue runtime as an MCP server, so AI agents can play
sessions as tools: start, tick, select, confirm, save and load.

Supported transports:
- stdio (default): standard input/output, for local process integration.
- sse: Server-Sent Events over HTTP, for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			repoPath = args[0]
		}
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("port") {
			port = cfg.Server.MCPPort
		}
		logger := cli.NewLogger(debug)

		store, closeStore, err := cli.OpenStore(cfg.Store, repoPath)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		engine, err := tendril.New(repoPath,
			tendril.WithLogger(logger),
			tendril.WithStore(store),
		)
		if err != nil {
			return fmt.Errorf("error initializing tendril: %w", err)
		}

		srv := mcp.NewServer(engine, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Logs must not corrupt JSON-RPC on stdout.
			log.SetOutput(os.Stderr)
			return srv.ServeStdio()

		case "sse":
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, fmt.Sprintf("%d", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (SSE only)")
}
