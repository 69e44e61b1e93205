package render

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/vytor/runview/internal/locale"
	"github.com/vytor/runview/internal/models"
)

// FormatValue renders numbers with exactly two decimals and passes every
// other value through. Null renders blank.
func FormatValue(v models.Value) string {
	if f, ok := v.Float(); ok {
		return formatFloat(f)
	}
	return v.String()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// BinLabels builds one x-axis label per histogram count: each bin edge
// paired with the next, the last bin open-ended.
func BinLabels(bins, counts []float64) []string {
	labels := make([]string, len(counts))
	for i := range counts {
		if i >= len(bins) {
			continue
		}
		if i < len(counts)-1 && i+1 < len(bins) {
			labels[i] = formatFloat(bins[i]) + "–" + formatFloat(bins[i+1])
		} else {
			labels[i] = formatFloat(bins[i]) + "+"
		}
	}
	return labels
}

// DisplayKey turns a metric key such as "total_distance" into its display
// form "TOTAL DISTANCE".
func DisplayKey(f *locale.Formatter, key string) string {
	return f.Upper(strings.ReplaceAll(key, "_", " "))
}

// slug makes a DOM-safe identifier fragment.
func slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}

func floatPtrs(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}
	return out
}
