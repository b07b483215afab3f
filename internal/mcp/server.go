// Package mcp exposes the event window calculator and the AOR planner as
// Model Context Protocol tools.
package mcp

import (
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ccampo133/auto-aor/internal/plan"
)

const serverInstructions = `Tools for planning Spitzer observations of exoplanet transits and eclipses.
Times are Julian dates (UTC), durations are seconds, periods are days.
compute_event_windows predicts event mid-times inside visibility windows and the matching SPOT timing constraints.
plan_observation turns .tep, .aai and .vis file contents into a complete AOR.`

// Config configures NewServer.
type Config struct {
	// Planner enables the plan_observation tool when set.
	Planner *plan.Planner
	Version string
	Logger  *slog.Logger
}

// NewServer creates an MCP server with every tool registered.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "autoaor",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Planner)
	return server
}

// NewHTTPHandler serves server over the streamable HTTP transport.
func NewHTTPHandler(server *sdkmcp.Server) http.Handler {
	return sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)
}
