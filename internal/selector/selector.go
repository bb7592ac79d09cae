// Package selector asks an external fuzzy finder (fzf by default) to pick one
// entry from a list.
package selector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// DefaultCommand is the selector used when none is configured.
var DefaultCommand = []string{"fzf"}

// Entry is one selectable line.
type Entry struct {
	Label string
	Path  string
	ID    string
}

func (e Entry) line() string {
	return e.Label + "\t" + SanitizePath(e.Path) + "\t" + e.ID
}

// SanitizePath makes path safe for a tab-separated selector line.
func SanitizePath(path string) string {
	if path == "" {
		return "-"
	}
	return strings.ReplaceAll(path, "\t", " ")
}

// Select writes entries to command's stdin, one per line, and returns the id
// of the line the user picked. ok is false when the user aborted or picked
// nothing. The selector draws its UI on stderr and the controlling tty.
func Select(ctx context.Context, command []string, entries []Entry) (id string, ok bool, err error) {
	if len(command) == 0 {
		command = DefaultCommand
	}

	var input bytes.Buffer
	for _, e := range entries {
		input.WriteString(e.line())
		input.WriteByte('\n')
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdin = &input
	cmd.Stderr = os.Stderr
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to start %s: %w", command[0], err)
	}

	return parseSelection(stdout.String())
}

// parseSelection extracts the id (last tab-separated field) from the first
// line of selector output.
func parseSelection(out string) (string, bool, error) {
	line, _, _ := strings.Cut(out, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false, nil
	}

	id := line[strings.LastIndexByte(line, '\t')+1:]
	if id == "" {
		return "", false, errors.New("failed to parse selection")
	}
	return id, true, nil
}
