package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelforge/internal/api"
	"reelforge/internal/app"
	"reelforge/pkg/config"
)

const apiVersion = "0.1.0"

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend HTTP API",
	Long:  `Start the backend process that owns the workflow and the project folders.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.ListenAddr = serveAddr
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	server := api.NewServer(api.ServerConfig{
		ListenAddr:   cfg.Server.ListenAddr,
		Version:      apiVersion,
		StartTime:    time.Now(),
		Orchestrator: app.NewOrchestrator(service),
		Sessions:     service.Sessions,
		Logger:       slog.Default(),
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		slog.Info("received signal, shutting down", "signal", sig)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	}
}
