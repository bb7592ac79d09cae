// Package panes holds the dashboard's latest pane snapshot and the current
// selection. The selection is stored as a pane id and repaired after every
// change to the list, so it never points at a pane that has disappeared.
package panes

import (
	"sort"

	"github.com/spymux/spymux/internal/tmux"
	"github.com/spymux/spymux/internal/tui/layout"
)

// State is owned by a single goroutine (the dashboard's Update loop) and is
// not safe for concurrent use.
type State struct {
	panes    []tmux.Pane
	selected string
	excluded map[string]struct{}
	regions  []layout.Rect
}

// New returns an empty State that will never show the given pane ids.
func New(exclude ...string) *State {
	s := &State{excluded: make(map[string]struct{})}
	for _, id := range exclude {
		if id != "" {
			s.excluded[id] = struct{}{}
		}
	}
	return s
}

// Refresh replaces the pane list wholesale. Excluded panes are dropped and the
// selection is repaired.
func (s *State) Refresh(snapshots []tmux.Pane) {
	kept := make([]tmux.Pane, 0, len(snapshots))
	for _, p := range snapshots {
		if s.IsExcluded(p.ID) {
			continue
		}
		kept = append(kept, p)
	}
	s.panes = kept
	s.repair()
}

// Exclude hides id for the rest of the process lifetime.
func (s *State) Exclude(id string) {
	if id == "" {
		return
	}
	s.excluded[id] = struct{}{}

	kept := make([]tmux.Pane, 0, len(s.panes))
	for _, p := range s.panes {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.panes = kept
	s.repair()
}

// IsExcluded reports whether id has been excluded.
func (s *State) IsExcluded(id string) bool {
	_, ok := s.excluded[id]
	return ok
}

// Excluded returns the excluded ids in sorted order.
func (s *State) Excluded() []string {
	ids := make([]string, 0, len(s.excluded))
	for id := range s.excluded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *State) repair() {
	if len(s.panes) == 0 {
		s.selected = ""
		return
	}
	if s.indexOf(s.selected) < 0 {
		s.selected = s.panes[0].ID
	}
}

func (s *State) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range s.panes {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Select makes id the selection if such a pane exists.
func (s *State) Select(id string) bool {
	if s.indexOf(id) < 0 {
		return false
	}
	s.selected = id
	return true
}

// SelectIndex selects the i-th pane in list (and region) order.
func (s *State) SelectIndex(i int) bool {
	if i < 0 || i >= len(s.panes) {
		return false
	}
	s.selected = s.panes[i].ID
	return true
}

// SetRegions records the regions the last layout assigned, one per pane.
func (s *State) SetRegions(regions []layout.Rect) {
	s.regions = append(s.regions[:0], regions...)
}

// Regions returns the regions recorded by SetRegions.
func (s *State) Regions() []layout.Rect {
	return s.regions
}

// Move selects the neighbor of the selected pane in dir. It does nothing
// until regions for the current pane list have been recorded.
func (s *State) Move(dir layout.Direction) bool {
	if len(s.regions) != len(s.panes) {
		return false
	}
	current := s.indexOf(s.selected)
	if current < 0 {
		return false
	}
	next, ok := layout.Neighbor(s.regions, current, dir)
	if !ok {
		return false
	}
	return s.SelectIndex(next)
}

// HitTest returns the index of the pane whose region contains (x, y).
func (s *State) HitTest(x, y int) (int, bool) {
	if len(s.regions) != len(s.panes) {
		return 0, false
	}
	return layout.HitTest(s.regions, x, y)
}

// Click selects the pane under (x, y).
func (s *State) Click(x, y int) bool {
	i, ok := s.HitTest(x, y)
	if !ok {
		return false
	}
	return s.SelectIndex(i)
}

// Panes returns the current pane list. Callers must not modify it.
func (s *State) Panes() []tmux.Pane {
	return s.panes
}

// Len returns the number of visible panes.
func (s *State) Len() int {
	return len(s.panes)
}

// Selected returns the selected pane.
func (s *State) Selected() (tmux.Pane, bool) {
	i := s.indexOf(s.selected)
	if i < 0 {
		return tmux.Pane{}, false
	}
	return s.panes[i], true
}

// SelectedID returns the selected pane id, or "" when nothing is selected.
func (s *State) SelectedID() string {
	return s.selected
}

// SelectedIndex returns the list index of the selection, or -1.
func (s *State) SelectedIndex() int {
	return s.indexOf(s.selected)
}
