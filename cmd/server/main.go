package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/carpool/internal/config"
	"github.com/mmynk/carpool/internal/server"
	"github.com/mmynk/carpool/pkg/logging"
)

func main() {
	configPath := flag.String("config", "carpool.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadOptional(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(logging.ParseLevel(cfg.Log.Level), cfg.Log.JSON)

	srv, err := server.New(cfg)
	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
