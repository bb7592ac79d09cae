package styled

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// tabWidth is the distance between tab stops.
const tabWidth = 8

// Parse decodes captured pane text into a Document. SGR sequences update the
// running style; every other complete escape sequence and control byte is
// dropped. Tabs expand to the next tab stop. Input holding a malformed or
// unterminated sequence decodes to Raw(raw). Parse never fails.
func Parse(raw string) (doc Document) {
	defer func() {
		if recover() != nil {
			doc = Raw(raw)
		}
	}()

	d, ok := decode(raw)
	if !ok {
		return Raw(raw)
	}
	return d
}

type decoder struct {
	doc   Document
	line  Line
	text  strings.Builder
	style Style
	col   int
}

func (d *decoder) flushSpan() {
	if d.text.Len() == 0 {
		return
	}
	d.line.Spans = append(d.line.Spans, Span{Content: d.text.String(), Style: d.style})
	d.text.Reset()
}

func (d *decoder) newline() {
	d.flushSpan()
	d.doc.Lines = append(d.doc.Lines, d.line)
	d.line = Line{}
	d.col = 0
}

func (d *decoder) setStyle(s Style) {
	if s == d.style {
		return
	}
	d.flushSpan()
	d.style = s
}

func (d *decoder) write(s string) {
	d.text.WriteString(s)
	d.col += StringWidth(s)
}

func decode(raw string) (Document, bool) {
	var (
		d     decoder
		state byte
		p     = ansi.NewParser()
	)

	for input := raw; len(input) > 0; {
		seq, _, n, newState := ansi.DecodeSequence(input, state, p)
		if n <= 0 {
			// Undecodable byte; treat it as opaque text.
			seq, n = input[:1], 1
		}
		state = newState
		input = input[n:]

		if state != ansi.NormalState {
			// The input ended inside a sequence.
			return Document{}, false
		}

		switch {
		case ansi.HasEscPrefix(seq) || isC1Introducer(seq):
			if !d.sequence(seq, p) {
				return Document{}, false
			}
		case seq == "\n":
			d.newline()
		case seq == "\t":
			d.write(strings.Repeat(" ", tabWidth-d.col%tabWidth))
		case len(seq) == 1 && (seq[0] < 0x20 || seq[0] == 0x7f):
			// Carriage returns and other C0 controls carry no text.
		case len(seq) == 1 && seq[0] >= 0x80 && seq[0] < 0xc0:
			// Stray C1 control or continuation byte.
		default:
			d.write(seq)
		}
	}

	d.newline()
	return d.doc, true
}

func isC1Introducer(seq string) bool {
	if seq == "" {
		return false
	}
	switch seq[0] {
	case ansi.CSI, ansi.DCS, ansi.OSC, ansi.APC, ansi.SOS, ansi.PM:
		return len(seq) > 1
	}
	return false
}

// sequence handles one complete escape sequence. It reports false when the
// sequence is malformed.
func (d *decoder) sequence(seq string, p *ansi.Parser) bool {
	switch {
	case ansi.HasCsiPrefix(seq):
		cmd := ansi.Cmd(p.Command())
		if cmd.Final() == 0 {
			return false
		}
		if cmd.Final() == 'm' && cmd.Prefix() == 0 && cmd.Intermediate() == 0 {
			d.setStyle(applySGR(d.style, p.Params()))
		}
		return true
	case ansi.HasOscPrefix(seq), ansi.HasDcsPrefix(seq), ansi.HasApcPrefix(seq),
		ansi.HasSosPrefix(seq), ansi.HasPmPrefix(seq):
		return true
	default:
		// Plain ESC sequence such as DECSC.
		return len(seq) > 1 && ansi.Cmd(p.Command()).Final() != 0
	}
}

// applySGR returns s updated by one Select Graphic Rendition parameter list.
func applySGR(s Style, params ansi.Params) Style {
	if len(params) == 0 {
		return Style{}
	}

	for i := 0; i < len(params); i++ {
		code := params[i].Param(0)

		// Colon sub-parameters belong to the current code.
		group := []ansi.Param{params[i]}
		for params[i].HasMore() && i+1 < len(params) {
			i++
			group = append(group, params[i])
		}

		switch {
		case code == 0:
			s = Style{}
		case code == 1:
			s.Attrs |= Bold
		case code == 2:
			s.Attrs |= Faint
		case code == 3:
			s.Attrs |= Italic
		case code == 4:
			if len(group) > 1 && group[1].Param(1) == 0 {
				s.Attrs &^= Underline
			} else {
				s.Attrs |= Underline
			}
		case code == 5 || code == 6:
			s.Attrs |= Blink
		case code == 7:
			s.Attrs |= Reverse
		case code == 8:
			s.Attrs |= Conceal
		case code == 9:
			s.Attrs |= CrossOut
		case code == 21:
			s.Attrs |= Underline
		case code == 22:
			s.Attrs &^= Bold | Faint
		case code == 23:
			s.Attrs &^= Italic
		case code == 24:
			s.Attrs &^= Underline
		case code == 25:
			s.Attrs &^= Blink
		case code == 27:
			s.Attrs &^= Reverse
		case code == 28:
			s.Attrs &^= Conceal
		case code == 29:
			s.Attrs &^= CrossOut
		case code >= 30 && code <= 37:
			s.Fg = paletteColor(code - 30)
		case code == 38, code == 48:
			var c Color
			var ok bool
			if len(group) > 1 {
				c, ok = extendedColor(group[1:])
			} else {
				var used int
				c, used, ok = extendedColorList(params[i+1:])
				i += used
			}
			if ok {
				if code == 38 {
					s.Fg = c
				} else {
					s.Bg = c
				}
			}
		case code == 39:
			s.Fg = NoColor
		case code >= 40 && code <= 47:
			s.Bg = paletteColor(code - 40)
		case code == 49:
			s.Bg = NoColor
		case code >= 90 && code <= 97:
			s.Fg = paletteColor(code - 90 + 8)
		case code >= 100 && code <= 107:
			s.Bg = paletteColor(code - 100 + 8)
		}
	}
	return s
}

// extendedColor decodes the colon form: 5:n, 2:r:g:b or 2:cs:r:g:b.
func extendedColor(sub []ansi.Param) (Color, bool) {
	switch sub[0].Param(-1) {
	case 5:
		if len(sub) < 2 {
			return NoColor, false
		}
		return indexedColor(sub[1].Param(0))
	case 2:
		switch {
		case len(sub) >= 5:
			return rgbColor(sub[2].Param(0), sub[3].Param(0), sub[4].Param(0))
		case len(sub) == 4:
			return rgbColor(sub[1].Param(0), sub[2].Param(0), sub[3].Param(0))
		}
	}
	return NoColor, false
}

// extendedColorList decodes the semicolon form and reports how many
// parameters it consumed.
func extendedColorList(rest []ansi.Param) (Color, int, bool) {
	if len(rest) == 0 {
		return NoColor, 0, false
	}
	switch rest[0].Param(-1) {
	case 5:
		if len(rest) < 2 {
			return NoColor, len(rest), false
		}
		c, ok := indexedColor(rest[1].Param(0))
		return c, 2, ok
	case 2:
		if len(rest) < 4 {
			return NoColor, len(rest), false
		}
		c, ok := rgbColor(rest[1].Param(0), rest[2].Param(0), rest[3].Param(0))
		return c, 4, ok
	}
	return NoColor, 1, false
}

func paletteColor(n int) Color {
	return Color(strconv.Itoa(n))
}

func indexedColor(n int) (Color, bool) {
	if n < 0 || n > 255 {
		return NoColor, false
	}
	return paletteColor(n), true
}

func rgbColor(r, g, b int) (Color, bool) {
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			return NoColor, false
		}
	}
	const hex = "0123456789abcdef"
	buf := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []int{r, g, b} {
		buf[1+2*i] = hex[v>>4]
		buf[2+2*i] = hex[v&0x0f]
	}
	return Color(buf), true
}
