// Package scrollback fits captured pane content into a fixed viewport by
// keeping the trailing display rows, the way a terminal shows the bottom of
// its scrollback.
package scrollback

import "github.com/spymux/spymux/internal/styled"

// RowCursor marks where a display row begins: a line index, a span index
// within that line, and a byte offset within that span.
type RowCursor struct {
	Line int
	Span int
	Byte int
}

// ClipToTail parses raw pane text and returns the document holding only the
// last maxRows display rows when wrapped at maxColumns. Styles survive the cut;
// with preserveColor false every style is reset to the default.
func ClipToTail(raw string, maxRows, maxColumns int, preserveColor bool) styled.Document {
	if maxRows <= 0 || maxColumns <= 0 || raw == "" {
		return styled.Document{}
	}

	doc := styled.Parse(raw)
	if !preserveColor {
		doc = styled.Flatten(doc)
	}
	return Tail(doc, maxRows, maxColumns)
}

// Tail is ClipToTail for an already decoded document.
func Tail(doc styled.Document, maxRows, maxColumns int) styled.Document {
	if maxRows <= 0 || maxColumns <= 0 {
		return styled.Document{}
	}

	renderable := RenderableLines(doc)
	if renderable == 0 {
		return doc
	}

	starts := RowStarts(doc, maxColumns, renderable)
	if len(starts) <= maxRows {
		return doc
	}
	return SliceFrom(doc, starts[len(starts)-maxRows])
}

// RenderableLines returns the number of lines left after trimming trailing
// blank lines.
func RenderableLines(doc styled.Document) int {
	n := len(doc.Lines)
	for n > 0 && doc.Lines[n-1].IsBlank() {
		n--
	}
	return n
}

// RowStarts returns the start of every display row produced by the first
// renderable lines of doc when wrapped at maxColumns. A line without spans
// takes one row. Zero-width runes never start a row.
func RowStarts(doc styled.Document, maxColumns, renderable int) []RowCursor {
	if renderable > len(doc.Lines) {
		renderable = len(doc.Lines)
	}

	starts := []RowCursor{{}}
	for li := 0; li < renderable; li++ {
		last := li == renderable-1
		line := doc.Lines[li]

		width := 0
		for si, sp := range line.Spans {
			for bi, r := range sp.Content {
				w := styled.RuneWidth(r)
				if w > 0 && width > 0 && width+w > maxColumns {
					starts = append(starts, RowCursor{Line: li, Span: si, Byte: bi})
					width = 0
				}
				width += w
			}
		}

		if !last {
			starts = append(starts, RowCursor{Line: li + 1})
		}
	}
	return starts
}

// SliceFrom returns the part of doc that begins at start. Lines after the
// anchor line are copied unchanged; empty spans are dropped but lines are
// always kept, so blank lines stay blank.
func SliceFrom(doc styled.Document, start RowCursor) styled.Document {
	out := styled.Document{Style: doc.Style}
	if start.Line < 0 {
		start = RowCursor{}
	}

	for li := start.Line; li < len(doc.Lines); li++ {
		line := doc.Lines[li]
		next := styled.Line{Style: line.Style}

		first := 0
		if li == start.Line {
			first = min(max(start.Span, 0), len(line.Spans))
		}

		for si := first; si < len(line.Spans); si++ {
			sp := line.Spans[si]
			content := sp.Content
			if li == start.Line && si == start.Span && start.Byte > 0 {
				if start.Byte >= len(content) {
					continue
				}
				content = content[start.Byte:]
			}
			if content == "" {
				continue
			}
			next.Spans = append(next.Spans, styled.Span{Content: content, Style: sp.Style})
		}
		out.Lines = append(out.Lines, next)
	}
	return out
}

// Wrap splits doc into display rows of at most maxColumns columns using the
// same break rule as RowStarts. Every row keeps its source line's style. A
// single rune wider than maxColumns occupies a row on its own.
func Wrap(doc styled.Document, maxColumns int) []styled.Line {
	if maxColumns <= 0 {
		return nil
	}

	var rows []styled.Line
	for _, line := range doc.Lines {
		row := styled.Line{Style: line.Style}
		width := 0
		for _, sp := range line.Spans {
			from := 0
			for bi, r := range sp.Content {
				w := styled.RuneWidth(r)
				if w > 0 && width > 0 && width+w > maxColumns {
					if bi > from {
						row.Spans = append(row.Spans, styled.Span{Content: sp.Content[from:bi], Style: sp.Style})
					}
					rows = append(rows, row)
					row = styled.Line{Style: line.Style}
					from, width = bi, 0
				}
				width += w
			}
			if from < len(sp.Content) {
				row.Spans = append(row.Spans, styled.Span{Content: sp.Content[from:], Style: sp.Style})
			}
		}
		rows = append(rows, row)
	}
	return rows
}
