package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ccampo133/auto-aor/internal/api"
	"github.com/ccampo133/auto-aor/internal/auth"
	"github.com/ccampo133/auto-aor/internal/config"
	"github.com/ccampo133/auto-aor/internal/health"
	"github.com/ccampo133/auto-aor/internal/mcp"
	"github.com/ccampo133/auto-aor/internal/plan"
)

const version = "1.0.0"

func main() {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel())

	// Stdout carries the protocol in stdio mode.
	if cfg.Transport.Mode == config.TransportStdio {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	planner := plan.NewPlanner(cfg.Fetcher(logger), cfg.PlanDefaults(), logger)
	mcpServer := mcp.NewServer(mcp.Config{Planner: planner, Version: version, Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Transport.Mode == config.TransportStdio {
		runStdioMode(ctx, logger, mcpServer)
		return
	}
	runHTTPMode(ctx, logger, cfg, planner, mcpServer)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or ctx is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		os.Exit(1)
	}
	logger.Info("stdio transport stopped")
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, cfg config.Config, planner *plan.Planner, mcpServer *sdkmcp.Server) {
	opts := api.Options{
		Addr:               cfg.Server.Addr,
		Auth:               auth.Config{Enabled: cfg.Auth.Enabled, Token: cfg.Auth.Token},
		TrustProxy:         cfg.Server.TrustProxy,
		MaxConcurrentPerIP: cfg.Server.MaxConcurrentPerIP,
		Planner:            planner,
		Ready:              []health.Check{outputDirReady(cfg.Planning.OutputDir)},
	}
	if cfg.Server.MCP {
		opts.MCP = mcp.NewHTTPHandler(mcpServer)
	}
	srv := api.NewServer(opts, logger)

	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr, "auth_enabled", cfg.Auth.Enabled, "mcp_http", cfg.Server.MCP)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// outputDirReady fails while the configured output directory is missing.
func outputDirReady(dir string) health.Check {
	return func() error {
		fi, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
}
