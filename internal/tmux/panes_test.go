package tmux

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"strings"
	"testing"
)

func paneLine(fields ...string) string {
	return strings.Join(fields, fieldSep)
}

func TestParsePanes(t *testing.T) {
	out := strings.Join([]string{
		paneLine("%0", "main", "0", "0", "zsh", "/home/me"),
		"",
		paneLine("%3", "work", "2", "1", "vim", "/src/a|===|b"),
		"",
	}, "\n")

	got, err := parsePanes(out)
	if err != nil {
		t.Fatalf("parsePanes returned error: %v", err)
	}
	want := []Pane{
		{ID: "%0", Session: "main", Window: 0, Index: 0, Command: "zsh", Path: "/home/me"},
		{ID: "%3", Session: "work", Window: 2, Index: 1, Command: "vim", Path: "/src/a|===|b"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parsePanes = %+v, want %+v", got, want)
	}
}

func TestParsePanesErrors(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{"too few fields", "%0|===|main|===|0", "invalid pane format"},
		{"bad window", paneLine("%0", "main", "x", "0", "zsh", "/"), "invalid window index"},
		{"bad pane", paneLine("%0", "main", "0", "", "zsh", "/"), "invalid pane index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePanes(tt.out)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("parsePanes(%q) error = %v, want %q", tt.out, err, tt.want)
			}
		})
	}
}

func TestPaneDescriptor(t *testing.T) {
	p := Pane{Session: "dev", Window: 3, Index: 2}
	if got := p.Descriptor(); got != "dev:3.2" {
		t.Fatalf("Descriptor() = %q, want %q", got, "dev:3.2")
	}
}

func TestListPanesNoServer(t *testing.T) {
	m := &mockExecutor{errs: map[string]error{
		"list-panes": &commandError{stderr: "no server running on /tmp/tmux-0/default", err: errors.New("exit status 1")},
	}}
	panes, err := NewClient(WithExecutor(m)).ListPanes(context.Background())
	if err != nil {
		t.Fatalf("ListPanes returned error: %v", err)
	}
	if len(panes) != 0 {
		t.Fatalf("ListPanes = %+v, want none", panes)
	}
}

func TestCapturePane(t *testing.T) {
	m := &mockExecutor{outputs: map[string]string{"capture-pane": "line\n\xff\n"}}
	c := NewClient(WithExecutor(m))

	got, err := c.CapturePane(context.Background(), "%4", true)
	if err != nil {
		t.Fatalf("CapturePane returned error: %v", err)
	}
	if got != "line\n�\n" {
		t.Errorf("CapturePane = %q, want %q", got, "line\n�\n")
	}
	wantArgs := []string{"capture-pane", "-p", "-e", "-t", "%4"}
	if !reflect.DeepEqual(m.calls[0].args, wantArgs) {
		t.Errorf("args = %q, want %q", m.calls[0].args, wantArgs)
	}

	m.calls = nil
	if _, err := c.CapturePane(context.Background(), "%4", false); err != nil {
		t.Fatalf("CapturePane returned error: %v", err)
	}
	if reflect.DeepEqual(m.calls[0].args, wantArgs) {
		t.Errorf("escapes=false still passed -e: %q", m.calls[0].args)
	}
}

func TestSnapshotSkipsExcluded(t *testing.T) {
	m := &mockExecutor{outputs: map[string]string{
		"list-panes": paneLine("%1", "a", "0", "0", "zsh", "/") + "\n" +
			paneLine("%2", "a", "0", "1", "spymux", "/") + "\n",
		"capture-pane": "content\n",
	}}
	c := NewClient(WithExecutor(m))

	panes, err := c.Snapshot(context.Background(), func(id string) bool { return id == "%2" }, true)
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if len(panes) != 1 || panes[0].ID != "%1" || panes[0].Content != "content\n" {
		t.Fatalf("Snapshot = %+v", panes)
	}

	captures := 0
	for _, c := range m.calls {
		if subcommand(c.args) == "capture-pane" {
			captures++
		}
	}
	if captures != 1 {
		t.Errorf("captured %d panes, want 1", captures)
	}
}

func TestSnapshotCaptureFailure(t *testing.T) {
	m := &mockExecutor{
		outputs: map[string]string{"list-panes": paneLine("%1", "a", "0", "0", "zsh", "/") + "\n"},
		errs:    map[string]error{"capture-pane": errors.New("exit status 1")},
	}
	_, err := NewClient(WithExecutor(m)).Snapshot(context.Background(), nil, false)
	if err == nil || !strings.Contains(err.Error(), "failed to capture pane output") {
		t.Fatalf("Snapshot error = %v, want capture failure", err)
	}
}

func TestSnapshotListFailure(t *testing.T) {
	m := &mockExecutor{outputs: map[string]string{"list-panes": "garbage\n"}}
	_, err := NewClient(WithExecutor(m)).Snapshot(context.Background(), nil, false)
	if err == nil || !strings.Contains(err.Error(), "failed to list tmux panes") {
		t.Fatalf("Snapshot error = %v, want list failure", err)
	}
}

func TestFocusPane(t *testing.T) {
	p := Pane{ID: "%7", Session: "dev", Window: 1, Index: 0}

	t.Run("outside tmux", func(t *testing.T) {
		t.Setenv("TMUX", "")
		m := &mockExecutor{}
		if err := NewClient(WithExecutor(m)).FocusPane(context.Background(), p); err != nil {
			t.Fatalf("FocusPane returned error: %v", err)
		}
		want := []call{
			{name: "tmux", args: []string{"select-window", "-t", "%7"}},
			{name: "tmux", args: []string{"select-pane", "-t", "%7"}},
		}
		if !reflect.DeepEqual(m.calls, want) {
			t.Errorf("calls = %+v, want %+v", m.calls, want)
		}
	})

	t.Run("inside tmux", func(t *testing.T) {
		t.Setenv("TMUX", "/tmp/tmux-1000/default,1,0")
		m := &mockExecutor{}
		if err := NewClient(WithExecutor(m)).FocusPane(context.Background(), p); err != nil {
			t.Fatalf("FocusPane returned error: %v", err)
		}
		if len(m.calls) != 3 || m.calls[0].args[0] != "switch-client" {
			t.Errorf("calls = %+v, want switch-client first", m.calls)
		}
	})

	t.Run("pane gone", func(t *testing.T) {
		t.Setenv("TMUX", "")
		m := &mockExecutor{errs: map[string]error{"select-window": errors.New("exit status 1")}}
		err := NewClient(WithExecutor(m)).FocusPane(context.Background(), p)
		if err == nil || !strings.Contains(err.Error(), "dev:1.0") {
			t.Fatalf("FocusPane error = %v, want failure naming the pane", err)
		}
	})
}

func TestListInstances(t *testing.T) {
	m := &mockExecutor{outputs: map[string]string{
		"list-panes": strings.Join([]string{
			paneLine("%1", "a", "0", "0", "zsh", "/"),
			paneLine("%2", "a", "0", "1", "spymux", "/work"),
			paneLine("%5", "b", "1", "0", "spymux", "/other"),
		}, "\n"),
	}}
	got, err := NewClient(WithExecutor(m)).ListInstances(context.Background(), "spymux")
	if err != nil {
		t.Fatalf("ListInstances returned error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "%2" || got[1].ID != "%5" {
		t.Fatalf("ListInstances = %+v", got)
	}
}

func TestRealTmuxSnapshot(t *testing.T) {
	if _, err := exec.LookPath("tmux"); err != nil {
		t.Skip("tmux not found in PATH")
	}

	socket := t.TempDir() + "/spymux-test.sock"
	c := NewClient(WithSocket(socket))
	if _, err := c.Run("new-session", "-d", "-s", "spytest", "-x", "80", "-y", "24"); err != nil {
		t.Skipf("cannot start tmux server: %v", err)
	}
	t.Cleanup(func() { _, _ = c.Run("kill-server") })

	panes, err := c.Snapshot(context.Background(), nil, true)
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if len(panes) != 1 {
		t.Fatalf("Snapshot returned %d panes, want 1", len(panes))
	}
	if panes[0].Session != "spytest" || !strings.HasPrefix(panes[0].ID, "%") {
		t.Errorf("unexpected pane %+v", panes[0])
	}
}
