package tmux

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const fieldSep = "|===|"

var paneFormat = strings.Join([]string{
	"#{pane_id}",
	"#{session_name}",
	"#{window_index}",
	"#{pane_index}",
	"#{pane_current_command}",
	"#{pane_current_path}",
}, fieldSep)

// Pane is one tmux pane as seen at snapshot time.
type Pane struct {
	ID      string `json:"id" yaml:"id"`
	Session string `json:"session" yaml:"session"`
	Window  int    `json:"window" yaml:"window"`
	Index   int    `json:"index" yaml:"index"`
	Command string `json:"command" yaml:"command"`
	Path    string `json:"path" yaml:"path"`
	Content string `json:"-" yaml:"-"`
}

// Descriptor returns the human-readable "session:window.pane" name.
func (p Pane) Descriptor() string {
	return fmt.Sprintf("%s:%d.%d", p.Session, p.Window, p.Index)
}

// CurrentPaneID returns the id of the pane this process runs in, if any.
func CurrentPaneID() string {
	return os.Getenv("TMUX_PANE")
}

// InTmux returns true if currently inside a tmux session.
func InTmux() bool {
	return os.Getenv("TMUX") != ""
}

// ListPanes returns every pane on the server, across all sessions.
func (c *Client) ListPanes(ctx context.Context) ([]Pane, error) {
	out, err := c.RunContext(ctx, "list-panes", "-a", "-F", paneFormat)
	if err != nil {
		if isNoServer(err) {
			return nil, nil
		}
		return nil, err
	}
	return parsePanes(out)
}

func parsePanes(out string) ([]Pane, error) {
	var panes []Pane
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.SplitN(line, fieldSep, 6)
		if len(parts) != 6 {
			return nil, fmt.Errorf("invalid pane format: %q", line)
		}
		window, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid window index %q: %w", parts[2], err)
		}
		index, err := strconv.Atoi(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid pane index %q: %w", parts[3], err)
		}

		panes = append(panes, Pane{
			ID:      parts[0],
			Session: parts[1],
			Window:  window,
			Index:   index,
			Command: parts[4],
			Path:    parts[5],
		})
	}
	return panes, nil
}

// CapturePane returns the visible content of target. With escapes set, color
// and attribute sequences are kept. The text is returned as-is apart from
// replacing invalid UTF-8.
func (c *Client) CapturePane(ctx context.Context, target string, escapes bool) (string, error) {
	args := []string{"capture-pane", "-p"}
	if escapes {
		args = append(args, "-e")
	}
	args = append(args, "-t", target)

	out, err := c.RunContext(ctx, args...)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(out, "\uFFFD"), nil
}

// Snapshot lists all panes and captures the content of each one that skip
// does not reject. The first failure aborts the snapshot.
func (c *Client) Snapshot(ctx context.Context, skip func(id string) bool, escapes bool) ([]Pane, error) {
	panes, err := c.ListPanes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tmux panes: %w", err)
	}

	kept := panes[:0]
	for _, p := range panes {
		if skip != nil && skip(p.ID) {
			continue
		}
		content, err := c.CapturePane(ctx, p.ID, escapes)
		if err != nil {
			return nil, fmt.Errorf("failed to capture pane output for %s: %w", p.Descriptor(), err)
		}
		p.Content = content
		kept = append(kept, p)
	}
	return kept, nil
}

// FocusPane moves the tmux client to p: its session, window and pane. The
// pane id is used as the target throughout since tmux resolves it to the
// containing session and window.
func (c *Client) FocusPane(ctx context.Context, p Pane) error {
	if c.Remote == "" && InTmux() {
		if _, err := c.RunContext(ctx, "switch-client", "-t", p.ID); err != nil {
			return fmt.Errorf("failed to focus pane %s: %w", p.Descriptor(), err)
		}
	}
	if _, err := c.RunContext(ctx, "select-window", "-t", p.ID); err != nil {
		return fmt.Errorf("failed to focus pane %s: %w", p.Descriptor(), err)
	}
	if _, err := c.RunContext(ctx, "select-pane", "-t", p.ID); err != nil {
		return fmt.Errorf("failed to focus pane %s: %w", p.Descriptor(), err)
	}
	return nil
}

// ListInstances returns the panes whose foreground command is command.
func (c *Client) ListInstances(ctx context.Context, command string) ([]Pane, error) {
	panes, err := c.ListPanes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tmux panes: %w", err)
	}

	var found []Pane
	for _, p := range panes {
		if p.Command == command {
			found = append(found, p)
		}
	}
	return found, nil
}
