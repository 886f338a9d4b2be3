// Command ctxadm runs administrative tasks against the context store.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/kirillkom/context-store/internal/bootstrap"
	"github.com/kirillkom/context-store/internal/config"
	"github.com/kirillkom/context-store/internal/observability/logging"
)

func main() {
	root := newRootCommand(loadServices)
	if err := root.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func loadServices(ctx context.Context) (*services, func(), error) {
	cfg := config.Load()
	logger := logging.NewJSONLoggerTo(os.Stderr, "ctxadm", cfg.LogLevel)
	slog.SetDefault(logger)
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return &services{
		Transfer: app.Transfer,
		Reindex:  app.Reindex,
		Stats:    app.Stats,
	}, app.Close, nil
}
