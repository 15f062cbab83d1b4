// Package numfmt formats experience and energy values for display.
package numfmt

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders n for display. With exact set, the value is grouped by
// thousands ("1,234,567"). Otherwise large values are abbreviated to one
// decimal with a K/M/B suffix.
func Format(n int64, exact bool) string {
	if exact {
		return group(n)
	}

	switch {
	case n < 1_000 && n > -1_000:
		return strconv.FormatInt(n, 10)
	case n < 1_000_000 && n > -1_000_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	case n < 1_000_000_000 && n > -1_000_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	default:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	}
}

func group(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
