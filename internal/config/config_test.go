package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv isolates a test from the caller's spymux environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"SPYMUX_REFRESH", "SPYMUX_NO_COLOR", "NO_COLOR", "SPYMUX_THEME", "SPYMUX_LOG"} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.ColorOutput {
		t.Error("ColorOutput should default to true")
	}
	if cfg.RefreshInterval != 500*time.Millisecond {
		t.Errorf("RefreshInterval = %v, want 500ms", cfg.RefreshInterval)
	}
	if !cfg.CaptureEscapes {
		t.Error("CaptureEscapes should default to true")
	}
	if !reflect.DeepEqual(cfg.Selector.Command, []string{"fzf"}) {
		t.Errorf("Selector.Command = %v, want [fzf]", cfg.Selector.Command)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := DefaultPath(); got != "/xdg/spymux/config.toml" {
		t.Errorf("DefaultPath() = %q, want /xdg/spymux/config.toml", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	if got := DefaultPath(); !strings.HasSuffix(got, filepath.Join(".config", "spymux", "config.toml")) {
		t.Errorf("DefaultPath() = %q, want ~/.config/spymux/config.toml", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load of a missing file failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
color_output = false
refresh_interval = "2s"
theme = "nord"
capture_escapes = false
log_file = "/tmp/spy.log"

[tmux]
socket = "/tmp/tmux.sock"
remote = "me@box"

[selector]
command = ["sk", "--ansi"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := &Config{
		ColorOutput:     false,
		RefreshInterval: 2 * time.Second,
		Theme:           "nord",
		CaptureEscapes:  false,
		LogFile:         "/tmp/spy.log",
		Tmux:            TmuxConfig{Socket: "/tmp/tmux.sock", Remote: "me@box"},
		Selector:        SelectorConfig{Command: []string{"sk", "--ansi"}},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "theme = \"latte\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Theme != "latte" || !cfg.ColorOutput || cfg.RefreshInterval != DefaultRefreshInterval {
		t.Errorf("Load() = %+v, want latte over defaults", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "color_output = = true", "parsing config"},
		{"zero refresh", `refresh_interval = "0s"`, "refresh_interval must be positive"},
		{"empty selector", "[selector]\ncommand = []", "selector.command"},
		{"unknown theme", `theme = "neon"`, "unknown theme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(*Config) bool
	}{
		{"refresh duration", map[string]string{"SPYMUX_REFRESH": "250ms"},
			func(c *Config) bool { return c.RefreshInterval == 250*time.Millisecond }},
		{"refresh millis", map[string]string{"SPYMUX_REFRESH": "1200"},
			func(c *Config) bool { return c.RefreshInterval == 1200*time.Millisecond }},
		{"no color", map[string]string{"NO_COLOR": "1"},
			func(c *Config) bool { return !c.ColorOutput }},
		{"spymux no color", map[string]string{"SPYMUX_NO_COLOR": "true"},
			func(c *Config) bool { return !c.ColorOutput }},
		{"spymux no color false", map[string]string{"SPYMUX_NO_COLOR": "0"},
			func(c *Config) bool { return c.ColorOutput }},
		{"theme", map[string]string{"SPYMUX_THEME": "plain"},
			func(c *Config) bool { return c.Theme == "plain" }},
		{"log", map[string]string{"SPYMUX_LOG": "/tmp/x.log"},
			func(c *Config) bool { return c.LogFile == "/tmp/x.log" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(writeConfig(t, "theme = \"mocha\"\nrefresh_interval = \"3s\"\n"))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("env %v not applied: %+v", tt.env, cfg)
			}
		})
	}
}

func TestEnvRefreshInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPYMUX_REFRESH", "soon")
	if _, err := Load(writeConfig(t, "")); err == nil || !strings.Contains(err.Error(), "SPYMUX_REFRESH") {
		t.Fatalf("Load() error = %v, want SPYMUX_REFRESH failure", err)
	}
}

func TestPrintRoundTrips(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Theme = "nord"
	cfg.RefreshInterval = 750 * time.Millisecond
	cfg.Tmux.Remote = "me@box"
	cfg.Selector.Command = []string{"fzf", "--height=40%"}

	var buf bytes.Buffer
	if err := Print(cfg, &buf); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	got, err := Load(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("Load of printed config failed: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("printed config reloads as %+v, want %+v", got, cfg)
	}
}

func TestOverridesApply(t *testing.T) {
	cfg := Default()
	Overrides{}.Apply(cfg)
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("empty Overrides changed the config: %+v", cfg)
	}

	Overrides{
		NoColor:         true,
		RefreshInterval: 100 * time.Millisecond,
		Theme:           "nord",
		Socket:          "/tmp/s",
		Remote:          "me@box",
	}.Apply(cfg)
	if cfg.ColorOutput || cfg.RefreshInterval != 100*time.Millisecond || cfg.Theme != "nord" ||
		cfg.Tmux.Socket != "/tmp/s" || cfg.Tmux.Remote != "me@box" {
		t.Errorf("Apply() = %+v", cfg)
	}
}
