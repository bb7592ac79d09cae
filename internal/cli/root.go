// Package cli wires the spymux command line: the dashboard root command and
// its resume, list and version subcommands.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spymux/spymux/internal/config"
	"github.com/spymux/spymux/internal/output"
	"github.com/spymux/spymux/internal/panes"
	"github.com/spymux/spymux/internal/tmux"
	"github.com/spymux/spymux/internal/tui/dashboard"
)

var (
	cfgFile     string
	cfg         *config.Config
	client      *tmux.Client
	noColors    bool
	refreshRate int
	themeName   string
	socketPath  string
	sshHost     string

	overrides config.Overrides
	logFile   *os.File

	// Build information - set by goreleaser via ldflags
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Seams for tests.
var (
	stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	runDashboard     = dashboard.Run
	newExecutor      func() tmux.Executor
)

// ErrNotTerminal is returned when the dashboard is started without a terminal
// on stdout.
var ErrNotTerminal = errors.New("spymux must be run in a terminal")

var rootCmd = &cobra.Command{
	Use:   "spymux",
	Short: "Watch every tmux pane at once",
	Long: `spymux shows a live grid of every tmux pane on the server, each clipped to
the tail of its scrollback. Move with h/j/k/l or the arrow keys, press enter to
jump to the selected pane, and q to quit.

Examples:
  spymux                      # Watch the local tmux server
  spymux -n --refresh-rate 1000
  spymux --ssh me@buildbox    # Watch a remote tmux server
  spymux resume               # Jump to another running spymux`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		overrides, err = flagOverrides(cmd)
		if err != nil {
			return err
		}
		overrides.Apply(loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		if err := setupLogging(cfg.LogFile); err != nil {
			return err
		}

		opts := []tmux.ClientOption{
			tmux.WithSocket(cfg.Tmux.Socket),
			tmux.WithRemote(cfg.Tmux.Remote),
		}
		if newExecutor != nil {
			opts = append(opts, tmux.WithExecutor(newExecutor()))
		}
		client = tmux.NewClient(opts...)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !stdoutIsTerminal() {
			return ErrNotTerminal
		}
		if err := client.EnsureInstalled(); err != nil {
			return err
		}

		// The pane spymux runs in is only meaningful on the local server.
		var state *panes.State
		if cfg.Tmux.Remote == "" {
			state = panes.New(tmux.CurrentPaneID())
		} else {
			state = panes.New()
		}

		configPath := cfgFile
		if configPath == "" {
			configPath = config.DefaultPath()
		}
		log.Printf("starting dashboard: refresh=%s remote=%q socket=%q", cfg.RefreshInterval, cfg.Tmux.Remote, cfg.Tmux.Socket)
		return runDashboard(cmd.Context(), dashboard.Options{
			Client:     client,
			State:      state,
			Config:     cfg,
			Overrides:  overrides,
			ConfigPath: configPath,
		})
	},
}

// flagOverrides collects the settings given on the command line.
func flagOverrides(cmd *cobra.Command) (config.Overrides, error) {
	o := config.Overrides{
		NoColor: noColors,
		Theme:   themeName,
		Socket:  socketPath,
		Remote:  sshHost,
	}
	if cmd.Flags().Changed("refresh-rate") {
		if refreshRate <= 0 {
			return o, fmt.Errorf("invalid --refresh-rate %d: must be greater than zero", refreshRate)
		}
		o.RefreshInterval = time.Duration(refreshRate) * time.Millisecond
	}
	return o, nil
}

// setupLogging sends the standard logger to path, or discards it: the
// dashboard owns the terminal.
func setupLogging(path string) error {
	if path == "" {
		log.SetOutput(io.Discard)
		return nil
	}
	f, err := tea.LogToFile(path, "spymux")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logFile = f
	return nil
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError(err, !noColors && (cfg == nil || cfg.ColorOutput))
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/spymux/config.toml)")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "tmux server socket path (tmux -S)")
	rootCmd.PersistentFlags().StringVar(&sshHost, "ssh", "", "Remote host running tmux (e.g. user@host)")
	rootCmd.PersistentFlags().BoolVarP(&noColors, "no-colors", "n", false, "Disable colors in pane content and chrome")

	rootCmd.Flags().IntVar(&refreshRate, "refresh-rate", 0, "Refresh interval in milliseconds (default 500)")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "Color theme: auto, mocha, latte, nord or plain")

	rootCmd.AddCommand(
		newResumeCmd(),
		newListCmd(),
		newVersionCmd(),
	)
}
