// Package config loads spymux settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultRefreshInterval is how often the dashboard re-captures panes.
const DefaultRefreshInterval = 500 * time.Millisecond

// Config is the complete spymux configuration.
type Config struct {
	ColorOutput     bool          `toml:"color_output"`
	RefreshInterval time.Duration `toml:"refresh_interval"`
	Theme           string        `toml:"theme"`
	CaptureEscapes  bool          `toml:"capture_escapes"`
	LogFile         string        `toml:"log_file"`

	Tmux     TmuxConfig     `toml:"tmux"`
	Selector SelectorConfig `toml:"selector"`
}

// TmuxConfig selects the tmux server to observe.
type TmuxConfig struct {
	Socket string `toml:"socket"` // passed to tmux -S
	Remote string `toml:"remote"` // ssh destination, empty for local
}

// SelectorConfig configures the fuzzy finder used by `spymux resume`.
type SelectorConfig struct {
	Command []string `toml:"command"`
}

// DefaultPath returns the default config file path
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "spymux", "config.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "spymux", "config.toml")
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ColorOutput:     true,
		RefreshInterval: DefaultRefreshInterval,
		Theme:           "auto",
		CaptureEscapes:  true,
		Selector: SelectorConfig{
			Command: []string{"fzf"},
		},
	}
}

// Load reads the config file at path (DefaultPath when empty) on top of the
// defaults and applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("SPYMUX_REFRESH")); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return fmt.Errorf("SPYMUX_REFRESH: %w", err)
		}
		c.RefreshInterval = d
	}
	if os.Getenv("NO_COLOR") != "" || envBool("SPYMUX_NO_COLOR") {
		c.ColorOutput = false
	}
	if v := strings.TrimSpace(os.Getenv("SPYMUX_THEME")); v != "" {
		c.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv("SPYMUX_LOG")); v != "" {
		c.LogFile = v
	}
	return nil
}

// parseInterval accepts a Go duration ("250ms") or a bare millisecond count.
func parseInterval(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

func envBool(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v != "" && v != "0" && v != "false" && v != "no"
}

var themes = map[string]bool{
	"auto": true, "mocha": true, "dark": true, "latte": true, "light": true,
	"nord": true, "plain": true, "none": true,
}

// Validate checks values that would make the dashboard unusable.
func (c *Config) Validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", c.RefreshInterval)
	}
	if len(c.Selector.Command) == 0 || strings.TrimSpace(c.Selector.Command[0]) == "" {
		return errors.New("selector.command must not be empty")
	}
	if c.Theme != "" && !themes[strings.ToLower(c.Theme)] {
		return fmt.Errorf("unknown theme %q (want auto, mocha, latte, nord or plain)", c.Theme)
	}
	return nil
}

// Print writes cfg as a commented TOML file.
func Print(cfg *Config, w io.Writer) error {
	fmt.Fprintln(w, "# spymux configuration")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "# Render pane colors and attributes (NO_COLOR / SPYMUX_NO_COLOR disable)")
	fmt.Fprintf(w, "color_output = %t\n", cfg.ColorOutput)
	fmt.Fprintln(w, "# How often panes are re-captured (SPYMUX_REFRESH)")
	fmt.Fprintf(w, "refresh_interval = %q\n", cfg.RefreshInterval.String())
	fmt.Fprintln(w, "# auto, mocha, latte, nord or plain (SPYMUX_THEME)")
	fmt.Fprintf(w, "theme = %q\n", cfg.Theme)
	fmt.Fprintln(w, "# Ask tmux for escape sequences when capturing")
	fmt.Fprintf(w, "capture_escapes = %t\n", cfg.CaptureEscapes)
	if cfg.LogFile != "" {
		fmt.Fprintf(w, "log_file = %q\n", cfg.LogFile)
	} else {
		fmt.Fprintln(w, "# log_file = \"/tmp/spymux.log\"  # Or set SPYMUX_LOG")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[tmux]")
	if cfg.Tmux.Socket != "" {
		fmt.Fprintf(w, "socket = %q\n", cfg.Tmux.Socket)
	} else {
		fmt.Fprintln(w, "# socket = \"/tmp/tmux-1000/default\"")
	}
	if cfg.Tmux.Remote != "" {
		fmt.Fprintf(w, "remote = %q\n", cfg.Tmux.Remote)
	} else {
		fmt.Fprintln(w, "# remote = \"user@host\"")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "[selector]")
	quoted := make([]string, len(cfg.Selector.Command))
	for i, arg := range cfg.Selector.Command {
		quoted[i] = strconv.Quote(arg)
	}
	_, err := fmt.Fprintf(w, "command = [%s]\n", strings.Join(quoted, ", "))
	return err
}

// Overrides are command-line settings. They win over the file and the
// environment, including on live reload.
type Overrides struct {
	NoColor         bool
	RefreshInterval time.Duration
	Theme           string
	Socket          string
	Remote          string
}

// Apply copies the set overrides onto c.
func (o Overrides) Apply(c *Config) {
	if o.NoColor {
		c.ColorOutput = false
	}
	if o.RefreshInterval > 0 {
		c.RefreshInterval = o.RefreshInterval
	}
	if o.Theme != "" {
		c.Theme = o.Theme
	}
	if o.Socket != "" {
		c.Tmux.Socket = o.Socket
	}
	if o.Remote != "" {
		c.Tmux.Remote = o.Remote
	}
}
