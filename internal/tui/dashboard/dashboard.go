// Package dashboard is the spymux pane grid: a bubbletea program that
// periodically snapshots every tmux pane and draws the tail of each one in a
// near-square grid.
package dashboard

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/spymux/spymux/internal/config"
	"github.com/spymux/spymux/internal/panes"
	"github.com/spymux/spymux/internal/tmux"
	"github.com/spymux/spymux/internal/tui/layout"
	"github.com/spymux/spymux/internal/tui/theme"
)

// tickMsg asks for a refresh. Ticks from an older schedule are ignored.
type tickMsg struct{ gen int }

// SnapshotMsg carries the result of one capture pass.
type SnapshotMsg struct {
	Panes []tmux.Pane
	Err   error
	At    time.Time
}

// FocusDoneMsg reports the outcome of moving the tmux client to a pane.
type FocusDoneMsg struct {
	Pane tmux.Pane
	Err  error
}

// ConfigReloadedMsg delivers a config file change.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// KeyMap defines dashboard keybindings
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Focus   key.Binding
	Number  key.Binding
	Refresh key.Binding
	Color   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var dashKeys = KeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Focus:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "focus")),
	Number:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "select")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Color:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "colors")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Refresh, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Focus, k.Number},
		{k.Refresh, k.Color},
		{k.Help, k.Quit},
	}
}

// Model is the dashboard state. The pane list and selection live in a
// shared *panes.State that only Update mutates.
type Model struct {
	client    *tmux.Client
	state     *panes.State
	cfg       config.Config
	overrides config.Overrides

	width  int
	height int
	tier   layout.Tier

	theme   theme.Theme
	styles  theme.Styles
	profile termenv.Profile // color profile of the terminal
	help    help.Model

	gen         int // current refresh schedule
	refreshing  bool
	lastRefresh time.Time
	refreshErr  error

	err      error // fatal, returned by Run
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithProfile renders pane content for profile instead of the detected one.
func WithProfile(p termenv.Profile) Option {
	return func(m *Model) {
		m.profile = p
	}
}

// WithOverrides keeps command-line settings in force across config reloads.
func WithOverrides(o config.Overrides) Option {
	return func(m *Model) {
		m.overrides = o
	}
}

// New creates a dashboard over state, capturing through client.
func New(client *tmux.Client, state *panes.State, cfg *config.Config, opts ...Option) Model {
	if cfg == nil {
		cfg = config.Default()
	}
	m := Model{
		client:  client,
		state:   state,
		cfg:     *cfg,
		profile: lipgloss.ColorProfile(),
		help:    help.New(),
		// Init's capture is in flight until its SnapshotMsg arrives.
		refreshing: true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.overrides.Apply(&m.cfg)
	m.applyTheme()
	return m
}

// Err returns the error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

func (m *Model) applyTheme() {
	if m.cfg.ColorOutput && !theme.NoColorEnabled() {
		m.theme = theme.FromName(m.cfg.Theme)
	} else {
		m.theme = theme.Plain
	}
	m.styles = theme.NewStyles(m.theme)

	m.help.Styles.ShortKey = lipgloss.NewStyle().Foreground(m.theme.Primary)
	m.help.Styles.ShortDesc = lipgloss.NewStyle().Foreground(m.theme.Subtext)
	m.help.Styles.ShortSeparator = lipgloss.NewStyle().Foreground(m.theme.Overlay)
	m.help.Styles.FullKey = m.help.Styles.ShortKey
	m.help.Styles.FullDesc = m.help.Styles.ShortDesc
	m.help.Styles.FullSeparator = m.help.Styles.ShortSeparator
}

// contentProfile is the profile pane content is rendered with.
func (m Model) contentProfile() termenv.Profile {
	if !m.cfg.ColorOutput {
		return termenv.Ascii
	}
	return m.profile
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.fetch()
}

func (m Model) schedule() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.cfg.RefreshInterval, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// fetch captures every pane that is not excluded. It runs off the Update
// goroutine, so it only sees a copy of the exclusion set.
func (m Model) fetch() tea.Cmd {
	client := m.client
	escapes := m.cfg.CaptureEscapes
	excluded := make(map[string]bool)
	for _, id := range m.state.Excluded() {
		excluded[id] = true
	}

	return func() tea.Msg {
		snaps, err := client.Snapshot(context.Background(), func(id string) bool { return excluded[id] }, escapes)
		return SnapshotMsg{Panes: snaps, Err: err, At: time.Now()}
	}
}

// refreshNow starts a capture unless one is running and invalidates any
// pending tick.
func (m *Model) refreshNow() tea.Cmd {
	if m.refreshing {
		return nil
	}
	m.refreshing = true
	m.gen++
	return m.fetch()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tier = layout.TierForWidth(msg.Width)
		m.help.Width = msg.Width
		m.relayout()
		return m, nil

	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, m.refreshNow()

	case SnapshotMsg:
		m.refreshing = false
		if msg.Err != nil {
			m.refreshErr = msg.Err
			log.Printf("refresh failed: %v", msg.Err)
		} else {
			m.refreshErr = nil
			m.lastRefresh = msg.At
			m.state.Refresh(msg.Panes)
			m.relayout()
		}
		m.gen++
		return m, m.schedule()

	case FocusDoneMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.quitting = true
			return m, tea.Quit
		}
		m.state.Select(msg.Pane.ID)
		return m, nil

	case ConfigReloadedMsg:
		if msg.Config == nil {
			return m, nil
		}
		// The tmux target is fixed for the life of the program.
		tmuxCfg := m.cfg.Tmux
		m.cfg = *msg.Config
		m.cfg.Tmux = tmuxCfg
		m.overrides.Apply(&m.cfg)
		m.applyTheme()
		log.Printf("config reloaded: colors=%t refresh=%s theme=%s", m.cfg.ColorOutput, m.cfg.RefreshInterval, m.theme.Name)
		return m, nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.state.Click(msg.X, msg.Y)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, dashKeys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, dashKeys.Left):
		m.state.Move(layout.Left)
	case key.Matches(msg, dashKeys.Down):
		m.state.Move(layout.Down)
	case key.Matches(msg, dashKeys.Up):
		m.state.Move(layout.Up)
	case key.Matches(msg, dashKeys.Right):
		m.state.Move(layout.Right)

	case key.Matches(msg, dashKeys.Number):
		if n, err := strconv.Atoi(msg.String()); err == nil {
			m.state.SelectIndex(n - 1)
		}

	case key.Matches(msg, dashKeys.Focus):
		if p, ok := m.state.Selected(); ok {
			return m, m.focus(p)
		}

	case key.Matches(msg, dashKeys.Refresh):
		return m, m.refreshNow()

	case key.Matches(msg, dashKeys.Color):
		m.cfg.ColorOutput = !m.cfg.ColorOutput
		m.applyTheme()

	case key.Matches(msg, dashKeys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.relayout()
	}
	return m, nil
}

func (m Model) focus(p tmux.Pane) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		log.Printf("focusing pane %s (%s)", p.Descriptor(), p.ID)
		return FocusDoneMsg{Pane: p, Err: client.FocusPane(context.Background(), p)}
	}
}

// gridArea is the part of the window left for panes once the footer is
// drawn.
func (m Model) gridArea() layout.Rect {
	footer := lipgloss.Height(m.renderFooter())
	return layout.Rect{Width: max(m.width, 0), Height: max(m.height-footer, 0)}
}

// relayout recomputes pane regions. View cannot store them because it has a
// value receiver, so this runs whenever the size or pane count changes.
func (m *Model) relayout() {
	if m.width <= 0 || m.height <= 0 {
		m.state.SetRegions(nil)
		return
	}
	m.state.SetRegions(layout.Grid(m.gridArea(), m.state.Len()))
}
