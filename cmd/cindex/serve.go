package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gianged/cindex/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the index over the Model Context Protocol on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := flagDBPath
		if dbPath == "" {
			dbPath = os.Getenv("CINDEX_DB_PATH")
		}

		// stdout carries the protocol; everything else goes to stderr
		logger.Info("starting MCP server", "version", version, "driver", "sqlite")

		server, err := mcp.NewServer(dbPath)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		errChan := make(chan error, 1)
		go func() {
			logger.Info("MCP server ready, listening on stdio")
			errChan <- server.Serve(ctx)
		}()

		select {
		case sig := <-sigChan:
			logger.Info("shutting down", "signal", sig)
			cancel()
			return nil
		case err := <-errChan:
			return err
		}
	},
}
