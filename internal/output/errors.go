package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/spymux/spymux/internal/tui/theme"
)

// Chain splits err into its own message followed by the messages of each
// wrapped cause. A message that ends with ": <cause>" is shortened so every
// cause is shown once.
func Chain(err error) []string {
	var msgs []string
	for err != nil {
		msg := err.Error()
		next := errors.Unwrap(err)
		if next != nil {
			msg = strings.TrimSuffix(msg, ": "+next.Error())
		}
		if msg != "" && (len(msgs) == 0 || msgs[len(msgs)-1] != msg) {
			msgs = append(msgs, msg)
		}
		err = next
	}
	return msgs
}

// isStderrTerminal checks if stderr is a terminal (for color output).
func isStderrTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// FormatError renders err as "error: msg" with a "because:" list of causes.
func FormatError(err error, color bool) string {
	msgs := Chain(err)
	if len(msgs) == 0 {
		return ""
	}

	label, bullet := lipgloss.NewStyle(), lipgloss.NewStyle()
	if color {
		t := theme.Current()
		label = label.Foreground(t.Error).Bold(true)
		bullet = bullet.Foreground(t.Subtext)
	}

	var sb strings.Builder
	sb.WriteString(label.Render("error:"))
	sb.WriteString(" ")
	sb.WriteString(msgs[0])
	sb.WriteString("\n")

	if len(msgs) > 1 {
		sb.WriteString("\n")
		sb.WriteString(bullet.Render("because:"))
		sb.WriteString("\n")
		for _, cause := range msgs[1:] {
			sb.WriteString(bullet.Render("-"))
			sb.WriteString(" ")
			sb.WriteString(cause)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// WriteError writes the formatted error to w.
func WriteError(w io.Writer, err error, color bool) {
	fmt.Fprint(w, FormatError(err, color))
}

// PrintError writes err to stderr, colored when stderr is a terminal and
// colors are enabled.
func PrintError(err error, colorEnabled bool) {
	color := colorEnabled && isStderrTerminal() && !theme.NoColorEnabled()
	WriteError(os.Stderr, err, color)
}
