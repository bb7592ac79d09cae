package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spymux/spymux/internal/selector"
	"github.com/spymux/spymux/internal/tmux"
)

// instanceCommand is the foreground command tmux reports for a running
// dashboard.
const instanceCommand = "spymux"

// ErrNoInstances is returned by resume when no other dashboard is running.
var ErrNoInstances = errors.New("no running spymux panes were found")

var selectEntry = selector.Select

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Jump to another running spymux dashboard",
		Long: `Find the tmux panes running spymux outside the current directory and focus
one. With a single candidate it is focused directly; with several, the
configured selector (fzf by default) picks one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResume(cmd.Context(), client, cfg.Selector.Command)
		},
	}
}

func runResume(ctx context.Context, c *tmux.Client, selectorCmd []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine current directory: %w", err)
	}
	cwd = canonicalPath(cwd)

	instances, err := c.ListInstances(ctx, instanceCommand)
	if err != nil {
		return err
	}

	var candidates []tmux.Pane
	for _, p := range instances {
		if !isCurrentDirectory(cwd, p.Path) {
			candidates = append(candidates, p)
		}
	}

	switch len(candidates) {
	case 0:
		return ErrNoInstances
	case 1:
		return c.FocusPane(ctx, candidates[0])
	}

	entries := make([]selector.Entry, len(candidates))
	for i, p := range candidates {
		entries[i] = selector.Entry{Label: p.Descriptor(), Path: p.Path, ID: p.ID}
	}
	id, ok, err := selectEntry(ctx, selectorCmd, entries)
	if err != nil || !ok {
		return err
	}
	for _, p := range candidates {
		if p.ID == id {
			return c.FocusPane(ctx, p)
		}
	}
	return fmt.Errorf("unable to locate pane %s", id)
}

// canonicalPath resolves symlinks, falling back to path when it cannot.
func canonicalPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

func isCurrentDirectory(cwd, candidate string) bool {
	if candidate == "" {
		return false
	}
	return canonicalPath(candidate) == cwd
}
