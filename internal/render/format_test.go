package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/runview/internal/locale"
	"github.com/vytor/runview/internal/models"
	"github.com/vytor/runview/internal/render"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   models.Value
		want string
	}{
		{name: "rounds", in: models.Number(123.456), want: "123.46"},
		{name: "pads", in: models.Number(7), want: "7.00"},
		{name: "negative", in: models.Number(-1.5), want: "-1.50"},
		{name: "string", in: models.String("5:30"), want: "5:30"},
		{name: "bool", in: models.Bool(true), want: "true"},
		{name: "null", in: models.Null(), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.FormatValue(tt.in))
		})
	}
}

func TestBinLabels(t *testing.T) {
	assert.Equal(t, []string{"0.00–5.00", "5.00+"}, render.BinLabels([]float64{0, 5, 10}, []float64{3, 7}))
	assert.Equal(t, []string{"1.50–2.50", "2.50–3.50", "3.50+"}, render.BinLabels([]float64{1.5, 2.5, 3.5}, []float64{1, 2, 3}))
	assert.Equal(t, []string{"1.00+", ""}, render.BinLabels([]float64{1}, []float64{1, 2}))
	assert.Empty(t, render.BinLabels(nil, nil))
}

func TestDisplayKey(t *testing.T) {
	f := locale.Default().Fallback()
	assert.Equal(t, "TOTAL DISTANCE", render.DisplayKey(f, "total_distance"))
	assert.Equal(t, "AVG  PACE", render.DisplayKey(f, "avg__pace"))
	assert.Equal(t, "RUNS", render.DisplayKey(f, "runs"))
}
