package dashboard

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/spymux/spymux/internal/config"
	"github.com/spymux/spymux/internal/panes"
	"github.com/spymux/spymux/internal/tmux"
)

// Options configure Run.
type Options struct {
	Client    *tmux.Client
	State     *panes.State
	Config    *config.Config
	Overrides config.Overrides

	// ConfigPath, when set, is watched and reloaded while the dashboard runs.
	ConfigPath string
}

// Run starts the dashboard and blocks until the user quits or ctx is done.
// It returns the error that stopped the program, such as a failed focus.
func Run(ctx context.Context, opts Options) error {
	if opts.Client == nil {
		opts.Client = tmux.DefaultClient
	}
	if opts.State == nil {
		opts.State = panes.New()
	}

	model := New(opts.Client, opts.State, opts.Config, WithOverrides(opts.Overrides))
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if opts.ConfigPath != "" {
		stop, err := config.Watch(opts.ConfigPath, func(cfg *config.Config) {
			p.Send(ConfigReloadedMsg{Config: cfg})
		})
		if err != nil {
			log.Printf("config watch disabled: %v", err)
		} else {
			defer stop()
		}
	}

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.Err()
	}
	return nil
}
