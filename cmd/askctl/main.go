package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/regulation-assistant/internal/bootstrap"
	"github.com/kirillkom/regulation-assistant/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, os.Stdin, openServices)
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// openServices bootstraps the pipeline without the chat surfaces: no
// analytics events and no shared session store.
func openServices(ctx context.Context, cfg config.Config, logger *slog.Logger) (*services, error) {
	cfg.AnalyticsEnabled = false
	cfg.SessionBackend = "memory"
	app, err := bootstrap.New(ctx, cfg, bootstrap.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &services{
		answerer: app.Pipeline,
		seeder:   app.Seeder,
		close:    app.Close,
	}, nil
}
