// Package app wires the subsystems together and owns the process lifecycle.
package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sepsiscan/sepsiscan/internal/alerts"
	"github.com/sepsiscan/sepsiscan/internal/api"
	"github.com/sepsiscan/sepsiscan/internal/channels/discord"
	"github.com/sepsiscan/sepsiscan/internal/channels/telegram"
	"github.com/sepsiscan/sepsiscan/internal/checkin"
	"github.com/sepsiscan/sepsiscan/internal/config"
	"github.com/sepsiscan/sepsiscan/internal/cron"
	"github.com/sepsiscan/sepsiscan/internal/store"
)

// App holds the application components.
type App struct {
	Config  *config.Config
	Store   *store.Store
	Logger  *zap.Logger
	Version string
}

func New(cfg *config.Config, st *store.Store, logger *zap.Logger, version string) *App {
	return &App{
		Config:  cfg,
		Store:   st,
		Logger:  logger,
		Version: version,
	}
}

// RunServer starts every subsystem and blocks until SIGINT/SIGTERM.
func (app *App) RunServer() {
	dispatcher := alerts.NewDispatcher(app.Store, app.Logger)
	dispatcher.SetChannels(app.buildChannels(app.Config))

	service := checkin.NewService(app.Store, dispatcher, app.Logger)

	cronRunner, err := cron.NewRunner(app.Config.Scheduler, service, dispatcher, app.Logger)
	if err != nil {
		app.Logger.Fatal("Failed to create cron runner", zap.Error(err))
	}
	if err := cronRunner.Start(); err != nil {
		app.Logger.Error("Failed to start cron runner", zap.Error(err))
	}

	// Alert-channel credentials can be rotated without a restart.
	stopWatch, err := config.Watch(app.Config, app.Logger, func(fresh *config.Config) {
		dispatcher.SetChannels(app.buildChannels(fresh))
	})
	if err != nil {
		app.Logger.Warn("Config watcher unavailable", zap.Error(err))
		stopWatch = func() {}
	}

	server := api.New(app.Config, app.Store, service, dispatcher, app.Logger)

	go func() {
		if err := server.Start(); err != nil {
			app.Logger.Fatal("Server error", zap.Error(err))
		}
	}()

	app.Logger.Info("Server started",
		zap.String("version", app.Version),
		zap.String("address", app.Config.Server.Address),
		zap.Int("port", app.Config.Server.Port),
		zap.String("url", fmt.Sprintf("http://localhost:%d", app.Config.Server.Port)),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info("Shutting down...")

	stopWatch()
	cronRunner.Stop()
	if err := server.Shutdown(); err != nil {
		app.Logger.Error("Server shutdown error", zap.Error(err))
	}
}

// buildChannels constructs the enabled alert channels. A channel that fails to
// connect is logged and skipped; alerts still reach the outbox and live feed.
func (app *App) buildChannels(cfg *config.Config) []alerts.Channel {
	var channels []alerts.Channel

	if cfg.Alerts.Telegram.Enabled {
		ch, err := telegram.New(cfg.Alerts.Telegram)
		if err != nil {
			app.Logger.Error("Failed to create Telegram channel", zap.Error(err))
		} else {
			channels = append(channels, ch)
			app.Logger.Info("Telegram alert channel registered")
		}
	}

	if cfg.Alerts.Discord.Enabled {
		ch, err := discord.New(cfg.Alerts.Discord)
		if err != nil {
			app.Logger.Error("Failed to create Discord channel", zap.Error(err))
		} else {
			channels = append(channels, ch)
			app.Logger.Info("Discord alert channel registered")
		}
	}

	return channels
}
