package selector

import (
	"context"
	"os/exec"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "-"},
		{"/tmp\ttabs", "/tmp tabs"},
		{"/home/me/src", "/home/me/src"},
	}
	for _, tt := range tests {
		if got := SanitizePath(tt.in); got != tt.want {
			t.Errorf("SanitizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name   string
		out    string
		want   string
		wantOK bool
	}{
		{"empty", "", "", false},
		{"blank line", "  \n", "", false},
		{"full line", "dev:0.1\t/src\t%3\n", "%3", true},
		{"first line wins", "a\t/x\t%1\nb\t/y\t%2\n", "%1", true},
		{"no tabs", "%7\n", "%7", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := parseSelection(tt.out)
			if err != nil {
				t.Fatalf("parseSelection(%q) error: %v", tt.out, err)
			}
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("parseSelection(%q) = %q,%v, want %q,%v", tt.out, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSelectWithShell(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not found in PATH")
	}

	entries := []Entry{
		{Label: "a:0.0", Path: "/one", ID: "%1"},
		{Label: "b:1.0", Path: "", ID: "%2"},
	}

	t.Run("picks last line", func(t *testing.T) {
		id, ok, err := Select(context.Background(), []string{"sh", "-c", "tail -n 1"}, entries)
		if err != nil || !ok || id != "%2" {
			t.Fatalf("Select = %q,%v,%v, want %%2,true,nil", id, ok, err)
		}
	})

	t.Run("sees sanitized lines", func(t *testing.T) {
		id, ok, err := Select(context.Background(), []string{"sh", "-c", "grep -x 'b:1.0\t-\t%2'"}, entries)
		if err != nil || !ok || id != "%2" {
			t.Fatalf("Select = %q,%v,%v, want %%2,true,nil", id, ok, err)
		}
	})

	t.Run("abort", func(t *testing.T) {
		id, ok, err := Select(context.Background(), []string{"sh", "-c", "cat >/dev/null; exit 130"}, entries)
		if err != nil || ok {
			t.Fatalf("Select = %q,%v,%v, want aborted", id, ok, err)
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		_, _, err := Select(context.Background(), []string{"spymux-no-such-selector"}, entries)
		if err == nil {
			t.Fatal("Select with a missing binary returned nil error")
		}
	})
}
