// Package daemon manages the GamePilot daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gamepilot/gamepilot/internal/app/analytics"
	"github.com/gamepilot/gamepilot/internal/app/persona"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Engine    EngineConfig    `toml:"engine"`
	Cache     CacheConfig     `toml:"cache"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	CORSOrigins    []string `toml:"cors_origins"`
	RequestTimeout string   `toml:"request_timeout"`
}

// EngineConfig controls the per-user analytics engine.
type EngineConfig struct {
	MaxHistorySize  int     `toml:"max_history_size"`
	MoodMaxAgeHours float64 `toml:"mood_max_age_hours"`
	EnableTemporal  bool    `toml:"enable_temporal"`
	EnableCompound  bool    `toml:"enable_compound"`
	// Timezone names the IANA location used for hour/day buckets.
	Timezone string `toml:"timezone"`
}

// CacheConfig controls the persona snapshot cache.
type CacheConfig struct {
	Size int    `toml:"size"`
	TTL  string `toml:"ttl"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level    string `toml:"level"`
	Encoding string `toml:"encoding"`
	File     string `toml:"file"`
}

// TelemetryConfig controls the Prometheus endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           8787,
			CORSOrigins:    []string{"*"},
			RequestTimeout: "30s",
		},
		Engine: EngineConfig{
			MaxHistorySize:  analytics.DefaultMaxHistorySize,
			MoodMaxAgeHours: persona.DefaultMoodMaxAgeHours,
			EnableTemporal:  true,
			EnableCompound:  true,
			Timezone:        "UTC",
		},
		Cache: CacheConfig{
			Size: 1024,
			TTL:  "5m",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// LoadConfig reads config from $GAMEPILOT_HOME/config.toml, falling back to
// defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := ConfigPath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the config to $GAMEPILOT_HOME/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// AnalyticsConfig converts the engine section into an analytics.Config.
func (c Config) AnalyticsConfig() (analytics.Config, error) {
	loc := time.UTC
	if tz := c.Engine.Timezone; tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return analytics.Config{}, fmt.Errorf("engine.timezone: %w", err)
		}
		loc = l
	}
	return analytics.Config{
		MaxHistorySize: c.Engine.MaxHistorySize,
		EnableTemporal: c.Engine.EnableTemporal,
		EnableCompound: c.Engine.EnableCompound,
		Location:       loc,
	}, nil
}

// Home returns the GamePilot data directory. GAMEPILOT_HOME overrides the
// default of ~/.gamepilot.
func Home() string {
	if env := os.Getenv("GAMEPILOT_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gamepilot")
}

// ConfigPath returns the location of config.toml.
func ConfigPath() string {
	return filepath.Join(Home(), "config.toml")
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
