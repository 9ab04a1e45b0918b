package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/bluffdeck/bluffdeck/internal/registry"
	"github.com/bluffdeck/bluffdeck/internal/server"
)

// ServeCmd runs the game server
type ServeCmd struct {
	Config   string `short:"c" default:"bluffdeck.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" help:"Address to bind to (overrides config)"`
	Port     int    `short:"p" help:"Port to listen on (overrides config)"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	DB       string `help:"Path to the registry database (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed for all rooms (overrides config)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return err
	}

	// Apply command line overrides
	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.DB != "" {
		cfg.Registry.Path = c.DB
	}
	if c.Seed != nil {
		cfg.Game.RNGSeed = *c.Seed
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.New(os.Stderr)
	level, err := log.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	reg, err := registry.Open(cfg.Registry.Path, cfg.Registry.MaxUsernameLength,
		quartz.NewReal(), logger.WithPrefix("registry"))
	if err != nil {
		return err
	}
	defer reg.Close()

	service := server.NewGameService(reg, cfg, quartz.NewReal(), logger)
	srv := server.NewServer(cfg.GetServerAddress(), service, quartz.NewReal(), logger)

	logger.Info("Starting bluffdeck server",
		"addr", cfg.GetServerAddress(),
		"capacity", cfg.Game.RoomCapacity,
		"loss_limit", cfg.Game.LossLimit,
		"turn_timeout_seconds", cfg.Game.TurnTimeoutSeconds,
		"db", cfg.Registry.Path)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(srv.Start)

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigChan:
			logger.Info("Shutting down server...", "signal", sig.String())
		case <-ctx.Done():
			return nil
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}
