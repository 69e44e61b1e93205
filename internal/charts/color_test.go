package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

func TestParseColor(t *testing.T) {
	assert.Equal(t, drawing.Color{R: 75, G: 192, B: 192, A: 153}, parseColor("rgba(75, 192, 192, 0.6)"))
	assert.Equal(t, drawing.Color{R: 255, G: 99, B: 132, A: 255}, parseColor("rgba(255, 99, 132, 1)"))
	assert.Equal(t, drawing.Color{R: 1, G: 2, B: 3, A: 255}, parseColor("rgb(1,2,3)"))
	assert.Equal(t, drawing.Color{R: 255, G: 0, B: 0, A: 255}, parseColor("#ff0000"))
	assert.Equal(t, drawing.ColorFromHex("999999"), parseColor("teal"))
}

func TestXTicks(t *testing.T) {
	labels := make([]string, 30)
	for i := range labels {
		labels[i] = string(rune('a' + i%26))
	}
	ticks := xTicks(labels, len(labels))
	assert.LessOrEqual(t, len(ticks), maxXTicks+3)
	assert.Equal(t, -0.5, ticks[0].Value)
	assert.Equal(t, 0.0, ticks[1].Value)
	assert.Equal(t, "a", ticks[1].Label)
	assert.Equal(t, 29.5, ticks[len(ticks)-1].Value)
	assert.Nil(t, xTicks(nil, 3))
}

func TestXTicks_SingleLabelSpansOneSlot(t *testing.T) {
	ticks := xTicks([]string{"1/1/2024"}, 1)
	require.Len(t, ticks, 3)
	assert.Equal(t, -0.5, ticks[0].Value)
	assert.Equal(t, "1/1/2024", ticks[1].Label)
	assert.Equal(t, 0.5, ticks[2].Value)
	assert.Greater(t, ticks[2].Value-ticks[0].Value, 0.0)
}
