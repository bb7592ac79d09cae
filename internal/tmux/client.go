// Package tmux runs tmux commands for spymux: listing panes, capturing their
// content and moving the client to a pane.
package tmux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs an external command and returns its stdout verbatim.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// execExecutor runs commands with os/exec. A failing command returns an
// *exec.ExitError-wrapping error that carries stderr.
type execExecutor struct{}

func (execExecutor) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &commandError{stderr: strings.TrimSpace(stderr.String()), err: err}
	}
	return stdout.String(), nil
}

type commandError struct {
	stderr string
	err    error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

// Error is a failed tmux invocation.
type Error struct {
	Op     string   // tmux subcommand, e.g. "list-panes"
	Args   []string // arguments after the subcommand
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("tmux %s: %v", e.Op, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(args []string, err error) *Error {
	e := &Error{Err: err}
	if len(args) > 0 {
		e.Op, e.Args = args[0], args[1:]
	}
	var ce *commandError
	if errors.As(err, &ce) {
		e.Stderr = ce.stderr
		e.Err = ce.err
	}
	return e
}

// Client handles tmux operations against one tmux server, optionally on a
// remote host reached through ssh.
type Client struct {
	Remote string // "user@host" or empty for local
	Socket string // tmux server socket path (-S), empty for the default server
	exec   Executor
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRemote runs every tmux command on host over ssh.
func WithRemote(host string) ClientOption {
	return func(c *Client) {
		c.Remote = host
	}
}

// WithSocket talks to the tmux server listening on path.
func WithSocket(path string) ClientOption {
	return func(c *Client) {
		c.Socket = path
	}
}

// WithExecutor replaces the command executor (useful for testing).
func WithExecutor(e Executor) ClientOption {
	return func(c *Client) {
		if e != nil {
			c.exec = e
		}
	}
}

// NewClient creates a new tmux client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{exec: execExecutor{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultClient talks to the local default tmux server.
var DefaultClient = NewClient()

// Run executes a tmux command.
func (c *Client) Run(args ...string) (string, error) {
	return c.RunContext(context.Background(), args...)
}

// RunContext executes a tmux command with cancellation support. Output is
// returned untrimmed.
func (c *Client) RunContext(ctx context.Context, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	full := args
	if c.Socket != "" {
		full = append([]string{"-S", c.Socket}, args...)
	}

	name := "tmux"
	if c.Remote != "" {
		// Use "--" to prevent Remote from being parsed as an ssh option.
		full = []string{"--", c.Remote, buildRemoteShellCommand("tmux", full...)}
		name = "ssh"
	}

	out, err := c.exec.Run(ctx, name, full...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", newError(args, err)
	}
	return out, nil
}

// ShellQuote returns a POSIX-shell-safe single-quoted string.
//
// ssh sends one command string to the remote shell, not an argv vector.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func buildRemoteShellCommand(command string, args ...string) string {
	parts := make([]string, 0, 1+len(args))
	parts = append(parts, command)
	for _, arg := range args {
		parts = append(parts, ShellQuote(arg))
	}
	return strings.Join(parts, " ")
}

// IsInstalled checks if tmux is available on the target host.
func (c *Client) IsInstalled() bool {
	if c.Remote == "" {
		if _, ok := c.exec.(execExecutor); ok {
			_, err := exec.LookPath("tmux")
			return err == nil
		}
	}
	_, err := c.Run("-V")
	return err == nil
}

// ErrNotInstalled is returned when no tmux binary can be found.
var ErrNotInstalled = errors.New("tmux is not installed")

// EnsureInstalled returns ErrNotInstalled if tmux is missing.
func (c *Client) EnsureInstalled() error {
	if !c.IsInstalled() {
		return ErrNotInstalled
	}
	return nil
}

// isNoServer reports whether err means there is no tmux server to talk to.
func isNoServer(err error) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	msg := te.Stderr
	return strings.Contains(msg, "no server running") ||
		strings.Contains(msg, "no sessions") ||
		strings.Contains(msg, "No such file or directory") ||
		strings.Contains(msg, "error connecting to")
}
