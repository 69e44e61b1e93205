package charts

import (
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// parseColor reads "rgba(r, g, b, a)", "rgb(r, g, b)" or "#rrggbb".
// Anything else falls back to gray.
func parseColor(s string) drawing.Color {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
	}

	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end <= open {
		return drawing.ColorFromHex("999999")
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) < 3 {
		return drawing.ColorFromHex("999999")
	}

	channel := func(p string) uint8 {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0
		}
		if n > 255 {
			return 255
		}
		return uint8(n)
	}
	c := drawing.Color{R: channel(parts[0]), G: channel(parts[1]), B: channel(parts[2]), A: 255}
	if len(parts) > 3 {
		if a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64); err == nil && a >= 0 && a <= 1 {
			c.A = uint8(a*255 + 0.5)
		}
	}
	return c
}
