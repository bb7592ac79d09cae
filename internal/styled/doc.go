// Package styled holds the styled text model used for captured pane content:
// documents made of lines made of spans, each span carrying one Style.
package styled

import "strings"

// Color is a terminal color in the notation termenv understands:
// "" for the terminal default, "0".."255" for the ANSI palette, or "#rrggbb".
type Color string

// NoColor is the terminal default color.
const NoColor Color = ""

// Attr is a bit set of text attributes.
type Attr uint16

const (
	Bold Attr = 1 << iota
	Faint
	Italic
	Underline
	Blink
	Reverse
	Conceal
	CrossOut
)

// Has reports whether all bits of a are set.
func (s Attr) Has(a Attr) bool {
	return s&a == a
}

// Style is a foreground/background color pair plus attributes.
// The zero value is the terminal default style.
type Style struct {
	Fg    Color
	Bg    Color
	Attrs Attr
}

// IsZero reports whether s is the default style.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Span is a run of text sharing one style.
type Span struct {
	Content string
	Style   Style
}

// Line is an ordered list of spans. A line with no spans, or only empty
// spans, is a blank row.
type Line struct {
	Spans []Span
	Style Style
}

// Document is the styled content of one pane for one frame.
type Document struct {
	Lines []Line
	Style Style
}

// IsBlank reports whether the line renders as an empty row.
func (l Line) IsBlank() bool {
	for _, sp := range l.Spans {
		if sp.Content != "" {
			return false
		}
	}
	return true
}

// PlainText returns the concatenated span contents.
func (l Line) PlainText() string {
	if len(l.Spans) == 1 {
		return l.Spans[0].Content
	}
	var b strings.Builder
	for _, sp := range l.Spans {
		b.WriteString(sp.Content)
	}
	return b.String()
}

// PlainText returns the document text with styles stripped, lines joined by "\n".
func (d Document) PlainText() string {
	parts := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		parts[i] = l.PlainText()
	}
	return strings.Join(parts, "\n")
}

// Flatten returns a copy of d with every document, line and span style reset
// to the default. Contents are untouched.
func Flatten(d Document) Document {
	out := Document{Lines: make([]Line, len(d.Lines))}
	for i, l := range d.Lines {
		spans := make([]Span, len(l.Spans))
		for j, sp := range l.Spans {
			spans[j] = Span{Content: sp.Content}
		}
		out.Lines[i] = Line{Spans: spans}
	}
	return out
}

// Raw builds an unstyled document holding text verbatim, one line per
// "\n"-separated segment. It is the fallback for input that cannot be decoded.
func Raw(text string) Document {
	segments := strings.Split(text, "\n")
	doc := Document{Lines: make([]Line, len(segments))}
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		doc.Lines[i] = Line{Spans: []Span{{Content: seg}}}
	}
	return doc
}

// FromLines builds an unstyled document from plain strings.
func FromLines(lines ...string) Document {
	return Raw(strings.Join(lines, "\n"))
}
