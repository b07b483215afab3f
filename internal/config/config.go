// Package config loads service configuration from defaults, an optional YAML
// file and AUTOAOR_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ccampo133/auto-aor/internal/aorfile"
	"github.com/ccampo133/auto-aor/internal/irac"
	"github.com/ccampo133/auto-aor/internal/plan"
	"github.com/ccampo133/auto-aor/internal/window"
)

// Transport modes.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Planning  PlanningConfig  `yaml:"planning"`
}

type ServerConfig struct {
	Addr               string `yaml:"addr"`
	TrustProxy         bool   `yaml:"trust_proxy"`
	MaxConcurrentPerIP int    `yaml:"max_concurrent_per_ip"`
	// MCP mounts the MCP streamable HTTP handler at /mcp.
	MCP bool `yaml:"mcp"`
}

type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// PlanningConfig holds defaults applied when a planning file omits a value.
type PlanningConfig struct {
	StartWindow  float64 `yaml:"start_window"` // seconds
	CenterShift  float64 `yaml:"center_shift"` // seconds
	Mission      string  `yaml:"mission"`
	Timing       string  `yaml:"timing"`
	OutputDir    string  `yaml:"output_dir"`
	Concurrency  int     `yaml:"concurrency"`
	MaxFileBytes int64   `yaml:"max_file_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:               ":8080",
			MaxConcurrentPerIP: 10,
		},
		Log:       LogConfig{Level: "info"},
		Transport: TransportConfig{Mode: TransportHTTP},
		Planning: PlanningConfig{
			StartWindow: 1800,
			Mission:     "warm",
			Timing:      "ingress",
			OutputDir:   ".",
		},
	}
}

// Load reads configuration from an optional YAML file named by
// AUTOAOR_CONFIG_PATH and from environment variables. Malformed numeric or
// boolean variables are logged and ignored.
func Load(logger *slog.Logger) (Config, error) {
	cfg := Default()

	if path := os.Getenv("AUTOAOR_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg, logger)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, logger *slog.Logger) {
	if v := os.Getenv("AUTOAOR_HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	envBool(logger, "AUTOAOR_TRUST_PROXY", &cfg.Server.TrustProxy)
	envBool(logger, "AUTOAOR_MCP_HTTP", &cfg.Server.MCP)
	if v := os.Getenv("AUTOAOR_MAX_CONCURRENT_PER_IP"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid AUTOAOR_MAX_CONCURRENT_PER_IP value, using default", "value", v, "default", cfg.Server.MaxConcurrentPerIP)
		} else {
			cfg.Server.MaxConcurrentPerIP = n
		}
	}

	envBool(logger, "AUTOAOR_AUTH_ENABLED", &cfg.Auth.Enabled)
	if v := os.Getenv("AUTOAOR_AUTH_TOKEN"); v != "" {
		cfg.Auth.Token = v
	}
	if v := os.Getenv("AUTOAOR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("AUTOAOR_TRANSPORT"); v != "" {
		cfg.Transport.Mode = v
	}

	envSeconds(logger, "AUTOAOR_START_WINDOW", &cfg.Planning.StartWindow)
	envSeconds(logger, "AUTOAOR_CENTER_SHIFT", &cfg.Planning.CenterShift)
	if v := os.Getenv("AUTOAOR_MISSION"); v != "" {
		cfg.Planning.Mission = v
	}
	if v := os.Getenv("AUTOAOR_TIMING"); v != "" {
		cfg.Planning.Timing = v
	}
	if v := os.Getenv("AUTOAOR_OUTPUT_DIR"); v != "" {
		cfg.Planning.OutputDir = v
	}
	if v := os.Getenv("AUTOAOR_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid AUTOAOR_CONCURRENCY value, using default", "value", v)
		} else {
			cfg.Planning.Concurrency = n
		}
	}
}

func envBool(logger *slog.Logger, key string, dst *bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("invalid boolean value, ignoring", "key", key, "value", v)
		return
	}
	*dst = b
}

func envSeconds(logger *slog.Logger, key string, dst *float64) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn("invalid seconds value, using default", "key", key, "value", v, "default", *dst)
		return
	}
	*dst = f
}

// Fetcher builds the planning file fetcher described by the planning section.
func (c Config) Fetcher(logger *slog.Logger) *aorfile.Fetcher {
	return aorfile.NewFetcher(c.Planning.MaxFileBytes, logger)
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if c.Auth.Enabled && c.Auth.Token == "" {
		return errors.New("auth token is required when auth is enabled (AUTOAOR_AUTH_TOKEN)")
	}
	switch c.Transport.Mode {
	case TransportHTTP, TransportStdio:
	default:
		return fmt.Errorf("transport mode must be %q or %q, got %q", TransportHTTP, TransportStdio, c.Transport.Mode)
	}
	if c.Planning.StartWindow <= 0 {
		return fmt.Errorf("planning start window must be positive, got %g", c.Planning.StartWindow)
	}
	if _, err := irac.ParseMission(c.Planning.Mission); err != nil {
		return err
	}
	if _, err := c.timing(); err != nil {
		return err
	}
	return nil
}

func (c Config) timing() (window.Mode, error) {
	m, err := window.ParseMode(c.Planning.Timing)
	if err != nil {
		return 0, err
	}
	if m == window.ModeMidTimes {
		return 0, fmt.Errorf("%w: %s", plan.ErrTimingMode, m)
	}
	return m, nil
}

// PlanDefaults converts the planning section for the planner.
func (c Config) PlanDefaults() plan.Defaults {
	timing, _ := c.timing()
	return plan.Defaults{
		StartWindow: c.Planning.StartWindow,
		CenterShift: c.Planning.CenterShift,
		Mission:     c.Planning.Mission,
		Timing:      timing,
	}
}

// LogLevel returns the slog level named by Log.Level, defaulting to info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
