package layout

import (
	"fmt"
	"strings"
)

// Direction is a spatial move between panes.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts left/right/up/down and the vi keys h/l/k/j.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "h":
		return Left, nil
	case "right", "l":
		return Right, nil
	case "up", "k":
		return Up, nil
	case "down", "j":
		return Down, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Neighbor returns the index of the region nearest to regions[current] in
// direction dir. Only regions whose center lies strictly on that side are
// eligible; the closest along the direction's axis wins, then the closest on
// the perpendicular axis, then the lowest index.
func Neighbor(regions []Rect, current int, dir Direction) (int, bool) {
	if current < 0 || current >= len(regions) {
		return 0, false
	}

	cx, cy := regions[current].Center()
	best, bestPrimary, bestSecondary := -1, 0, 0

	for i, r := range regions {
		if i == current {
			continue
		}
		x, y := r.Center()

		var primary, secondary int
		switch dir {
		case Left:
			if x >= cx {
				continue
			}
			primary, secondary = cx-x, abs(y-cy)
		case Right:
			if x <= cx {
				continue
			}
			primary, secondary = x-cx, abs(y-cy)
		case Up:
			if y >= cy {
				continue
			}
			primary, secondary = cy-y, abs(x-cx)
		case Down:
			if y <= cy {
				continue
			}
			primary, secondary = y-cy, abs(x-cx)
		default:
			return 0, false
		}

		if best < 0 || primary < bestPrimary || primary == bestPrimary && secondary < bestSecondary {
			best, bestPrimary, bestSecondary = i, primary, secondary
		}
	}

	if best < 0 {
		return 0, false
	}
	return best, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
