package layout

import (
	"github.com/muesli/reflow/truncate"

	"github.com/spymux/spymux/internal/styled"
)

// Width tiers decide how much chrome the dashboard shows around the grid.
//   - TierNarrow: status line holds the pane count and the short help only.
//   - TierSplit: adds the selected pane descriptor.
//   - TierWide: adds the selected pane's command and path, and pane titles
//     carry the command next to the descriptor.
const (
	SplitViewThreshold = 80
	WideViewThreshold  = 140
)

// Tier describes the current width bucket.
type Tier int

const (
	TierNarrow Tier = iota
	TierSplit
	TierWide
)

// TierForWidth maps a terminal width to a tier.
func TierForWidth(width int) Tier {
	switch {
	case width >= WideViewThreshold:
		return TierWide
	case width >= SplitViewThreshold:
		return TierSplit
	default:
		return TierNarrow
	}
}

// Truncate trims s to at most width display columns, ending with "…" when
// anything was cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if styled.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return truncate.StringWithTail(s, uint(width), "…")
}
