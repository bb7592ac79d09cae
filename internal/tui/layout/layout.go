// Package layout partitions the dashboard area into pane cells and resolves
// spatial navigation between them.
package layout

import "fmt"

// Rect is a cell-addressed rectangle. X and Y are the top-left corner.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the cell (x, y) lies inside r. The right and
// bottom edges are exclusive.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Center returns the integer center of r.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Inner returns the size left inside a one-cell border.
func (r Rect) Inner() (width, height int) {
	return max(r.Width-2, 0), max(r.Height-2, 0)
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", r.Width, r.Height, r.X, r.Y)
}

// GridShape returns the column and row count used for count cells: the
// smallest square-ish grid that holds them.
func GridShape(count int) (columns, rows int) {
	if count <= 0 {
		return 0, 0
	}
	columns = 1
	for columns*columns < count {
		columns++
	}
	rows = (count + columns - 1) / columns
	return columns, rows
}

// Split divides length into parts contiguous bands. Band i spans
// [i*length/parts, (i+1)*length/parts) so the bands tile length exactly and
// differ in size by at most one.
func Split(length, parts int) []int {
	if parts <= 0 {
		return nil
	}
	length = max(length, 0)
	sizes := make([]int, parts)
	for i := range sizes {
		sizes[i] = (i+1)*length/parts - i*length/parts
	}
	return sizes
}

// Grid partitions area into count cells, filled row-major. Rows are equal
// height bands; each band is cut into equal columns. The last band may hold
// fewer cells than columns.
func Grid(area Rect, count int) []Rect {
	columns, rows := GridShape(count)
	if columns == 0 {
		return nil
	}

	regions := make([]Rect, 0, count)
	y := area.Y
	for _, h := range Split(area.Height, rows) {
		x := area.X
		for _, w := range Split(area.Width, columns) {
			if len(regions) == count {
				return regions
			}
			regions = append(regions, Rect{X: x, Y: y, Width: w, Height: h})
			x += w
		}
		y += h
	}
	return regions
}

// HitTest returns the index of the first region containing (x, y).
func HitTest(regions []Rect, x, y int) (int, bool) {
	for i, r := range regions {
		if r.Contains(x, y) {
			return i, true
		}
	}
	return 0, false
}
