package panes

import (
	"reflect"
	"testing"

	"github.com/spymux/spymux/internal/tmux"
	"github.com/spymux/spymux/internal/tui/layout"
)

func mkPanes(ids ...string) []tmux.Pane {
	out := make([]tmux.Pane, len(ids))
	for i, id := range ids {
		out[i] = tmux.Pane{ID: id, Session: "s", Index: i}
	}
	return out
}

func ids(ps []tmux.Pane) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestRefreshSelectsFirst(t *testing.T) {
	s := New()
	if _, ok := s.Selected(); ok {
		t.Fatal("empty state has a selection")
	}

	s.Refresh(mkPanes("%1", "%2"))
	if got := s.SelectedID(); got != "%1" {
		t.Fatalf("SelectedID() = %q, want %%1", got)
	}
}

func TestRefreshKeepsSurvivingSelection(t *testing.T) {
	s := New()
	s.Refresh(mkPanes("%1", "%2", "%3"))
	s.Select("%3")

	s.Refresh(mkPanes("%3", "%4"))
	if got := s.SelectedID(); got != "%3" {
		t.Fatalf("SelectedID() = %q, want %%3", got)
	}
}

func TestRefreshRepairsVanishedSelection(t *testing.T) {
	s := New()
	s.Refresh(mkPanes("%1", "%2"))
	s.Select("%2")

	s.Refresh(mkPanes("%5", "%1"))
	if got := s.SelectedID(); got != "%5" {
		t.Fatalf("SelectedID() = %q, want first pane %%5", got)
	}

	s.Refresh(nil)
	if got := s.SelectedID(); got != "" {
		t.Fatalf("SelectedID() = %q after empty refresh, want none", got)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
}

func TestExclude(t *testing.T) {
	s := New("%0", "")
	s.Refresh(mkPanes("%0", "%1", "%2"))
	if got := ids(s.Panes()); !reflect.DeepEqual(got, []string{"%1", "%2"}) {
		t.Fatalf("Panes() = %v, want [%%1 %%2]", got)
	}

	s.Select("%1")
	s.Exclude("%1")
	if got := ids(s.Panes()); !reflect.DeepEqual(got, []string{"%2"}) {
		t.Fatalf("Panes() after Exclude = %v, want [%%2]", got)
	}
	if got := s.SelectedID(); got != "%2" {
		t.Fatalf("SelectedID() = %q, want %%2", got)
	}

	// Exclusion outlives later refreshes.
	s.Refresh(mkPanes("%0", "%1", "%2"))
	if got := ids(s.Panes()); !reflect.DeepEqual(got, []string{"%2"}) {
		t.Fatalf("Panes() after refresh = %v, want [%%2]", got)
	}
	if got := s.Excluded(); !reflect.DeepEqual(got, []string{"%0", "%1"}) {
		t.Fatalf("Excluded() = %v", got)
	}
	if !s.IsExcluded("%0") || s.IsExcluded("%2") {
		t.Fatal("IsExcluded disagrees with Excluded()")
	}
}

func TestExcludeLeavesHandedOutListIntact(t *testing.T) {
	s := New()
	s.Refresh(mkPanes("%1", "%2", "%3"))
	before := s.Panes()

	s.Exclude("%1")
	if got := ids(before); !reflect.DeepEqual(got, []string{"%1", "%2", "%3"}) {
		t.Errorf("earlier Panes() result changed to %v, want [%%1 %%2 %%3]", got)
	}
	if got := ids(s.Panes()); !reflect.DeepEqual(got, []string{"%2", "%3"}) {
		t.Errorf("Panes() after Exclude = %v, want [%%2 %%3]", got)
	}
}

func TestSelect(t *testing.T) {
	s := New()
	s.Refresh(mkPanes("%1", "%2"))

	if s.Select("%9") {
		t.Error("Select(%9) = true for a missing pane")
	}
	if got := s.SelectedID(); got != "%1" {
		t.Errorf("SelectedID() = %q, want unchanged %%1", got)
	}

	tests := []struct {
		index int
		ok    bool
		want  string
	}{
		{1, true, "%2"},
		{-1, false, "%2"},
		{2, false, "%2"},
		{0, true, "%1"},
	}
	for _, tt := range tests {
		if got := s.SelectIndex(tt.index); got != tt.ok {
			t.Errorf("SelectIndex(%d) = %v, want %v", tt.index, got, tt.ok)
		}
		if got := s.SelectedID(); got != tt.want {
			t.Errorf("after SelectIndex(%d) SelectedID() = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestMoveNeedsRegions(t *testing.T) {
	s := New()
	s.Refresh(mkPanes("%1", "%2"))

	if s.Move(layout.Right) {
		t.Fatal("Move succeeded before any layout")
	}

	s.SetRegions([]layout.Rect{{X: 0, Y: 0, Width: 10, Height: 5}})
	if s.Move(layout.Right) {
		t.Fatal("Move succeeded with a stale layout")
	}
}

func TestMoveSideBySide(t *testing.T) {
	s := New()
	s.Refresh(mkPanes("%1", "%2"))
	s.SetRegions(layout.Grid(layout.Rect{Width: 80, Height: 20}, 2))

	if !s.Move(layout.Right) || s.SelectedID() != "%2" {
		t.Fatalf("Move(right) selected %q, want %%2", s.SelectedID())
	}
	if s.Move(layout.Right) {
		t.Fatal("Move(right) from the rightmost pane succeeded")
	}
	if s.SelectedID() != "%2" {
		t.Fatalf("failed move changed the selection to %q", s.SelectedID())
	}
	if !s.Move(layout.Left) || s.SelectedID() != "%1" {
		t.Fatalf("Move(left) selected %q, want %%1", s.SelectedID())
	}
}

func TestClick(t *testing.T) {
	s := New()
	s.Refresh(mkPanes("%1", "%2", "%3", "%4"))
	s.SetRegions(layout.Grid(layout.Rect{Width: 80, Height: 20}, 4))

	if i, ok := s.HitTest(79, 19); !ok || i != 3 {
		t.Fatalf("HitTest(79, 19) = %d,%v, want 3,true", i, ok)
	}
	if !s.Click(45, 2) || s.SelectedID() != "%2" {
		t.Fatalf("Click(45, 2) selected %q, want %%2", s.SelectedID())
	}
	if s.Click(200, 200) {
		t.Fatal("Click outside every region succeeded")
	}
	if s.SelectedID() != "%2" {
		t.Fatalf("missed click changed the selection to %q", s.SelectedID())
	}
	if p, ok := s.Selected(); !ok || p.ID != "%2" || s.SelectedIndex() != 1 {
		t.Fatalf("Selected() = %+v,%v", p, ok)
	}
}
