package styled

import (
	"strings"
	"unicode"

	"github.com/muesli/termenv"
)

// RenderLine renders the spans of one display row as terminal text for the
// given color profile. termenv.Ascii yields plain text.
func RenderLine(l Line, profile termenv.Profile) string {
	var b strings.Builder
	for _, sp := range l.Spans {
		text := stripControls(sp.Content)
		if text == "" {
			continue
		}
		b.WriteString(renderSpan(text, sp.Style, profile))
	}
	return b.String()
}

func renderSpan(text string, s Style, profile termenv.Profile) string {
	if s.IsZero() || profile == termenv.Ascii {
		return text
	}
	if s.Attrs.Has(Conceal) {
		text = strings.Repeat(" ", StringWidth(text))
	}

	out := profile.String(text)
	if s.Fg != NoColor {
		out = out.Foreground(profile.Color(string(s.Fg)))
	}
	if s.Bg != NoColor {
		out = out.Background(profile.Color(string(s.Bg)))
	}
	if s.Attrs.Has(Bold) {
		out = out.Bold()
	}
	if s.Attrs.Has(Faint) {
		out = out.Faint()
	}
	if s.Attrs.Has(Italic) {
		out = out.Italic()
	}
	if s.Attrs.Has(Underline) {
		out = out.Underline()
	}
	if s.Attrs.Has(Blink) {
		out = out.Blink()
	}
	if s.Attrs.Has(Reverse) {
		out = out.Reverse()
	}
	if s.Attrs.Has(CrossOut) {
		out = out.CrossOut()
	}
	return out.String()
}

// stripControls removes runes that would move the cursor or start a
// sequence when written to the terminal.
func stripControls(s string) string {
	clean := true
	for _, r := range s {
		if unicode.IsControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
