package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/kirschjd/1001-game-nights-sub000/internal/bot"
	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
	"github.com/kirschjd/1001-game-nights-sub000/internal/lobby"
	"github.com/kirschjd/1001-game-nights-sub000/internal/server"
	"github.com/kirschjd/1001-game-nights-sub000/internal/war"

	"github.com/kirschjd/1001-game-nights-sub000/internal/henhur"
)

// ServeCmd runs the WebSocket game server.
type ServeCmd struct {
	Config string `short:"c" default:"gamenights.hcl" help:"Path to HCL config file"`
	Debug  bool   `short:"d" help:"Enable debug logging"`
}

func (cmd *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(cmd.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cmd.Debug, cfg.Server.LogLevel)
	clock := quartz.NewReal()

	games := game.NewRegistry()
	henhur.Register(games, cfg.HenHurConfig())
	war.Register(games)

	lobbies := lobby.NewRegistry(logger, clock, games, cfg.CleanupAfter())

	bots := bot.NewRegistry(logger, clock, time.Now().UnixNano(), bot.DefaultDelays())
	bots.RegisterHandler(bot.HenHurHandler{})
	bots.RegisterHandler(bot.WarHandler{})

	srv := server.New(cfg, logger, clock, lobbies)

	lobbies.SetSender(srv)
	lobbies.SetBots(bots)
	srv.SetBotCatalog(bots)
	bots.SetDispatcher(lobbies)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down")
		bots.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	logger.Info("Game night server starting", "address", cfg.GetServerAddress(), "games", games.Types())
	return g.Wait()
}

func setupLogger(debug bool, level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	switch {
	case debug:
		logger.SetLevel(log.DebugLevel)
	case level == "debug":
		logger.SetLevel(log.DebugLevel)
	case level == "warn":
		logger.SetLevel(log.WarnLevel)
	case level == "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
