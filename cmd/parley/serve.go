package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/parleybot/parley"
	httpAdapter "github.com/parleybot/parley/internal/adapters/http"
	"github.com/parleybot/parley/internal/cli"
	"github.com/parleybot/parley/internal/logging"
	"github.com/parleybot/parley/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long:  `Starts the bot as an HTTP service, exposing POST /chat plus health, session and Prometheus metrics endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetString("port")
		redisURL, _ := cmd.Flags().GetString("redis")

		logger := logging.New(slog.LevelInfo)

		m := metrics.New(prometheus.DefaultRegisterer)
		bot, cleanup, err := cli.BuildBot(configPath, redisURL, logger, parley.WithHooks(m.Hooks()))
		if err != nil {
			fmt.Printf("Error initializing bot: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		handler := httpAdapter.NewHandler(bot, httpAdapter.WithLogger(logger))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Parley Server on %s\n", srv.Addr)
			fmt.Printf("Serving bot: %s\n", bot.Name())
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Parley Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis URL for session persistence (e.g. redis://localhost:6379/0)")
}
