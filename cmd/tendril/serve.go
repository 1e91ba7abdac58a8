package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/tendril"
	"github.com/aretw0/tendril/internal/cli"
	"github.com/aretw0/tendril/internal/config"
	httpAdapter "github.com/aretw0/tendril/pkg/adapters/http"
	wsAdapter "github.com/aretw0/tendril/pkg/adapters/ws"
	"github.com/aretw0/tendril/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Serve the dialogue runtime over HTTP",
	Long:  `Hosts sessions over a REST API with SSE streaming, live play over WebSocket at /ws, and Prometheus metrics at /metrics.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath, _ := cmd.Flags().GetString("dir")
		if !cmd.Flags().Changed("dir") && len(args) > 0 {
			repoPath = args[0]
		}
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if addr == "" {
			addr = cfg.Server.Address
		}
		logger := cli.NewLogger(debug)

		store, closeStore, err := cli.OpenStore(cfg.Store, repoPath)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics := observability.NewMetrics(reg)

		engine, err := tendril.New(repoPath,
			tendril.WithLogger(logger),
			tendril.WithStore(store),
			tendril.WithHooks(observability.Chain(metrics.Hooks(), observability.LogHooks(logger))),
		)
		if err != nil {
			return fmt.Errorf("error initializing tendril: %w", err)
		}

		apiHandler, err := httpAdapter.NewHandler(engine, httpAdapter.WithLogger(logger))
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		mux.Handle("/ws", wsAdapter.NewHandler(engine, wsAdapter.WithLogger(logger)))
		mux.Handle("/", apiHandler)

		srv := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		serverErrors := make(chan error, 1)
		go func() {
			fmt.Printf("Starting Tendril server on %s\n", srv.Addr)
			fmt.Printf("Serving script %q from: %s\n", engine.ScriptID(), repoPath)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Println("Tendril server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
}
