// Package app provides the weather server application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-weather/cmd/weather/app/options"
	weathersvc "github.com/kart-io/sentinel-weather/internal/weather"
	"github.com/kart-io/sentinel-weather/pkg/infra/app"
)

// commandDesc is the description of the command.
const commandDesc = `Sentinel Weather Service

Serves reconciled local weather conditions and advisories.

This server provides:
  - Current conditions merged from a ThingSpeak sensor channel and OpenWeather
  - Trailing hourly history and a multi-day forecast
  - Trend prediction, travel advice and weather-type probabilities from an LLM,
    with deterministic heuristics whenever the model is unavailable
  - Synthetic demo data when no source is configured`

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	return app.NewApp(
		app.WithName(weathersvc.Name),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
		app.WithConfigWatch(func(e fsnotify.Event) {
			// 运行中的组件不会重建，修改需重启生效
			logger.Infow("config file changed, restart to apply", "file", e.Name, "op", e.Op.String())
		}),
	)
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := setupSignalContext()

		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run(ctx)
	}
}

// setupSignalContext returns a context that is cancelled on SIGINT or SIGTERM.
func setupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
