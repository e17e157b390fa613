package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8787 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8787)
	}
	if cfg.Engine.MaxHistorySize != 500 {
		t.Errorf("Engine.MaxHistorySize = %d, want 500", cfg.Engine.MaxHistorySize)
	}
	if cfg.Engine.MoodMaxAgeHours != 24 {
		t.Errorf("Engine.MoodMaxAgeHours = %v, want 24", cfg.Engine.MoodMaxAgeHours)
	}
	if !cfg.Engine.EnableTemporal || !cfg.Engine.EnableCompound {
		t.Error("analytics features should be enabled by default")
	}
	if cfg.Telemetry.Prometheus {
		t.Error("Prometheus should be off by default")
	}
}

func TestHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GAMEPILOT_HOME", dir)

	if got := Home(); got != dir {
		t.Errorf("Home() = %q, want %q", got, dir)
	}
	if got := ConfigPath(); got != filepath.Join(dir, "config.toml") {
		t.Errorf("ConfigPath() = %q", got)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("GAMEPILOT_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Port != DefaultConfig().API.Port {
		t.Errorf("Port = %d, want default", cfg.API.Port)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	t.Setenv("GAMEPILOT_HOME", filepath.Join(t.TempDir(), "nested"))

	cfg := DefaultConfig()
	cfg.API.Port = 9000
	cfg.Engine.EnableCompound = false
	cfg.Cache.TTL = "90s"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.API.Port != 9000 {
		t.Errorf("Port = %d, want 9000", got.API.Port)
	}
	if got.Engine.EnableCompound {
		t.Error("EnableCompound should round-trip as false")
	}
	if got.Cache.TTL != "90s" {
		t.Errorf("Cache.TTL = %q", got.Cache.TTL)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GAMEPILOT_HOME", dir)

	doc := "[engine]\nmood_max_age_hours = 6.0\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(doc), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Engine.MoodMaxAgeHours != 6 {
		t.Errorf("MoodMaxAgeHours = %v, want 6", cfg.Engine.MoodMaxAgeHours)
	}
	if cfg.Engine.MaxHistorySize != 500 {
		t.Errorf("unset fields should keep defaults, MaxHistorySize = %d", cfg.Engine.MaxHistorySize)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GAMEPILOT_HOME", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[api\nport = "), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Error("expected a parse error")
	}
}

func TestAnalyticsConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.Timezone = "America/New_York"

	ac, err := cfg.AnalyticsConfig()
	if err != nil {
		t.Fatalf("AnalyticsConfig: %v", err)
	}
	if ac.Location.String() != "America/New_York" {
		t.Errorf("Location = %v", ac.Location)
	}

	cfg.Engine.Timezone = "Mars/Olympus"
	if _, err := cfg.AnalyticsConfig(); err == nil {
		t.Error("unknown timezone should fail")
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"5m", 5 * time.Minute},
		{"90s", 90 * time.Second},
		{"", time.Hour},
		{"soon", time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseDuration(tt.input, time.Hour); got != tt.want {
				t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewWithConfig(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig()
	cfg.Logging.File = filepath.Join(home, "gamepilot.log")

	d, err := NewWithConfig(cfg, home, "test")
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	defer d.Close()

	if d.Addr() != "127.0.0.1:8787" {
		t.Errorf("Addr() = %q", d.Addr())
	}
	if _, err := os.Stat(filepath.Join(home, "state.db")); err != nil {
		t.Errorf("state.db not created: %v", err)
	}
}
