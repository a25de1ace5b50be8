package mdtty

import (
	"strings"

	"github.com/rivo/uniseg"
)

// textWidth returns the number of terminal columns s occupies. s must not
// contain escape sequences.
func textWidth(s string) int {
	return uniseg.StringWidth(s)
}

// collapseSpace replaces every run of white space in s by a single space,
// as HTML rendering does for text outside pre elements.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
