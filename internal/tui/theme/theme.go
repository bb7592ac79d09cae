// Package theme holds the dashboard color palettes.
package theme

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is the palette used for the dashboard chrome. Pane content keeps its
// own colors.
type Theme struct {
	Name string

	Text    lipgloss.Color // Primary text
	Subtext lipgloss.Color // Secondary text
	Overlay lipgloss.Color // Dimmed text and idle borders

	Accent  lipgloss.Color // Selected pane border and title
	Primary lipgloss.Color // Key names in help
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// Catppuccin Mocha - the default dark theme
var CatppuccinMocha = Theme{
	Name:    "mocha",
	Text:    lipgloss.Color("#cdd6f4"),
	Subtext: lipgloss.Color("#a6adc8"),
	Overlay: lipgloss.Color("#6c7086"),
	Accent:  lipgloss.Color("#cba6f7"),
	Primary: lipgloss.Color("#89b4fa"),
	Success: lipgloss.Color("#a6e3a1"),
	Warning: lipgloss.Color("#f9e2af"),
	Error:   lipgloss.Color("#f38ba8"),
}

// Catppuccin Latte - light theme for light terminals
var CatppuccinLatte = Theme{
	Name:    "latte",
	Text:    lipgloss.Color("#4c4f69"),
	Subtext: lipgloss.Color("#6c6f85"),
	Overlay: lipgloss.Color("#7c7f93"),
	Accent:  lipgloss.Color("#8839ef"),
	Primary: lipgloss.Color("#1e66f5"),
	Success: lipgloss.Color("#40a02b"),
	Warning: lipgloss.Color("#df8e1d"),
	Error:   lipgloss.Color("#d20f39"),
}

// Nord - arctic dark theme
var Nord = Theme{
	Name:    "nord",
	Text:    lipgloss.Color("#eceff4"),
	Subtext: lipgloss.Color("#d8dee9"),
	Overlay: lipgloss.Color("#7b88a1"),
	Accent:  lipgloss.Color("#88c0d0"),
	Primary: lipgloss.Color("#81a1c1"),
	Success: lipgloss.Color("#a3be8c"),
	Warning: lipgloss.Color("#ebcb8b"),
	Error:   lipgloss.Color("#bf616a"),
}

// Plain uses the terminal's default colors everywhere.
var Plain = Theme{Name: "plain"}

// NoColorEnabled returns true if color output should be disabled.
// SPYMUX_NO_COLOR=1 disables colors and SPYMUX_NO_COLOR=0 forces them on;
// otherwise the presence of NO_COLOR (https://no-color.org/) disables them.
func NoColorEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("SPYMUX_NO_COLOR"))) {
	case "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	return os.Getenv("NO_COLOR") != ""
}

// FromName returns a theme by name. Unknown names and "auto" pick Mocha or
// Latte from the terminal background.
func FromName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plain", "none", "no-color", "nocolor":
		return Plain
	case "nord":
		return Nord
	case "latte", "light":
		return CatppuccinLatte
	case "mocha", "dark":
		return CatppuccinMocha
	default:
		return autoTheme()
	}
}

// Current returns the theme named by SPYMUX_THEME, or Plain when colors are
// disabled.
func Current() Theme {
	if NoColorEnabled() {
		return Plain
	}
	return FromName(os.Getenv("SPYMUX_THEME"))
}

// detectDarkBackground inspects the terminal to determine if a dark
// background is in use. It is a variable for testability.
var detectDarkBackground = func() bool {
	return termenv.NewOutput(os.Stdout).HasDarkBackground()
}

var (
	cachedAutoTheme Theme
	autoThemeOnce   sync.Once
)

func resetAutoTheme() {
	autoThemeOnce = sync.Once{}
	cachedAutoTheme = Theme{}
}

func autoTheme() Theme {
	autoThemeOnce.Do(func() {
		cachedAutoTheme = CatppuccinMocha
		defer func() {
			if recover() != nil {
				cachedAutoTheme = CatppuccinMocha
			}
		}()
		if !detectDarkBackground() {
			cachedAutoTheme = CatppuccinLatte
		}
	})
	return cachedAutoTheme
}

// Styles are the lipgloss styles the dashboard draws with.
type Styles struct {
	Border         lipgloss.Style
	SelectedBorder lipgloss.Style
	Title          lipgloss.Style
	SelectedTitle  lipgloss.Style
	Status         lipgloss.Style
	Error          lipgloss.Style
	Empty          lipgloss.Style
}

// NewStyles builds the dashboard styles for t.
func NewStyles(t Theme) Styles {
	return Styles{
		Border:         lipgloss.NewStyle().Foreground(t.Overlay),
		SelectedBorder: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Title:          lipgloss.NewStyle().Foreground(t.Subtext),
		SelectedTitle:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Status:         lipgloss.NewStyle().Foreground(t.Subtext),
		Error:          lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Empty:          lipgloss.NewStyle().Foreground(t.Overlay).Italic(true),
	}
}
