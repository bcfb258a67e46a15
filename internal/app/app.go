// Package app provides the top-level application lifecycle management for the
// market simulator. It wires the account store, state engine, WebSocket hub,
// archiver, and HTTP server, runs them concurrently, and tears everything
// down in reverse order on shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/suilfg/marketsim/internal/archive"
	"github.com/suilfg/marketsim/internal/catalog"
	"github.com/suilfg/marketsim/internal/config"
	"github.com/suilfg/marketsim/internal/engine"
	"github.com/suilfg/marketsim/internal/server"
	"github.com/suilfg/marketsim/internal/server/handler"
	"github.com/suilfg/marketsim/internal/server/ws"
)

// shutdownGrace bounds how long in-flight HTTP requests may finish.
const shutdownGrace = 10 * time.Second

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the run
// loops, and blocks until the context is cancelled or a loop fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("backend", a.cfg.Persistence.Backend),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	eng := engine.New(engine.Config{
		DriftInterval: a.cfg.Engine.DriftInterval.Duration,
		ApprovalDelay: a.cfg.Engine.ApprovalDelay.Duration,
		RandSeed:      a.cfg.Engine.RandSeed,
	}, catalog.Seed(time.Now()), deps.AccountStore, a.logger)

	hub := ws.NewHub(eng, a.logger)

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
	}, server.Handlers{
		Health:    handler.NewHealthHandler(a.cfg.Persistence.Backend, a.logger),
		Markets:   handler.NewMarketHandler(eng, a.logger),
		Portfolio: handler.NewPortfolioHandler(eng, a.logger),
		Trade:     handler.NewTradeHandler(eng, a.logger),
		Bank:      handler.NewBankHandler(eng, a.logger),
		Faucet:    handler.NewFaucetHandler(eng, a.logger),
	}, hub, a.logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error { return hub.Run(gctx) })

	g.Go(func() error { return srv.Start() })
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if a.cfg.Archive.Enabled && deps.BlobWriter != nil {
		archiver := archive.New(eng, deps.BlobWriter, a.cfg.Archive.Interval.Duration, a.logger)
		g.Go(func() error { return archiver.Run(gctx) })
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
