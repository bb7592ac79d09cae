package styled

import "github.com/mattn/go-runewidth"

// widths is pinned so layout never depends on the user's locale.
var widths = &runewidth.Condition{
	EastAsianWidth:     false,
	StrictEmojiNeutral: true,
}

// RuneWidth returns the number of terminal columns r occupies. Combining
// marks and control runes are zero width; wide East Asian runes are two.
func RuneWidth(r rune) int {
	return widths.RuneWidth(r)
}

// StringWidth returns the column width of s as the sum of its rune widths.
func StringWidth(s string) int {
	w := 0
	for _, r := range s {
		w += widths.RuneWidth(r)
	}
	return w
}
