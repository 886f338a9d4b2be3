package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/kirillkom/context-store/internal/adapters/mcp"
	"github.com/kirillkom/context-store/internal/bootstrap"
	"github.com/kirillkom/context-store/internal/config"
	"github.com/kirillkom/context-store/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	// stdout carries the protocol stream.
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	server := mcpadapter.NewServer(mcpadapter.Services{
		Items:    app.Items,
		Projects: app.Projects,
		Search:   app.Search,
		Stats:    app.Stats,
	}, logger)

	logger.Info("mcp_serving", "transport", "stdio")
	if err := server.Serve(ctx); err != nil {
		logger.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
