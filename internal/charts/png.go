package charts

import (
	"errors"
	"fmt"
	"io"

	"github.com/vytor/runview/internal/render"
	"github.com/wcharczuk/go-chart/v2"
)

var ErrNoData = errors.New("charts: chart has no data points")

const (
	pngWidth    = 1024
	pngHeight   = 480
	maxXTicks   = 12
	dashSegment = 6.0

	loneHalfWidth = 0.25
)

var pngPadding = chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 48}

// PNG renders c as a static image. Null points are skipped.
func PNG(w io.Writer, c *render.Chart) error {
	switch c.Type {
	case render.ChartBar:
		return barPNG(w, c)
	case render.ChartLine:
		return linePNG(w, c)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, c.Type)
	}
}

func barPNG(w io.Writer, c *render.Chart) error {
	if len(c.Datasets) == 0 {
		return ErrNoData
	}
	ds := c.Datasets[0]
	fill := parseColor(ds.Color)

	bars := make([]chart.Value, 0, len(ds.Data))
	maxY := 0.0
	for i, v := range ds.Data {
		if v == nil {
			continue
		}
		label := ""
		if i < len(c.Labels) {
			label = c.Labels[i]
		}
		bars = append(bars, chart.Value{
			Value: *v,
			Label: label,
			Style: chart.Style{FillColor: fill, StrokeColor: fill.WithAlpha(255)},
		})
		if *v > maxY {
			maxY = *v
		}
	}
	if len(bars) == 0 {
		return ErrNoData
	}

	width, spacing := barLayout(len(bars))
	bc := chart.BarChart{
		Title:      c.Title,
		Background: chart.Style{Padding: pngPadding},
		Width:      pngWidth,
		Height:     pngHeight,
		BarWidth:   width,
		BarSpacing: spacing,
		XAxis:      chart.Style{TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Name:  c.YTitle,
			Range: yRange(0, maxY, true),
		},
		Bars: bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart %s: %w", c.ID, err)
	}
	return nil
}

// barLayout splits the plot width into one slot per bar, three quarters
// bar and one quarter gap.
func barLayout(n int) (width, spacing int) {
	slot := (pngWidth - 120) / n
	if slot > 80 {
		slot = 80
	}
	if slot < 4 {
		slot = 4
	}
	spacing = slot / 4
	if spacing < 1 {
		spacing = 1
	}
	return slot - spacing, spacing
}

func linePNG(w io.Writer, c *render.Chart) error {
	var series []chart.Series
	minY, maxY := 0.0, 0.0
	seen := false
	n := len(c.Labels)

	for _, ds := range c.Datasets {
		var xs, ys []float64
		for i, v := range ds.Data {
			if v == nil {
				continue
			}
			xs = append(xs, float64(i))
			ys = append(ys, *v)
			if !seen || *v < minY {
				minY = *v
			}
			if !seen || *v > maxY {
				maxY = *v
			}
			seen = true
		}
		if len(xs) == 0 {
			continue
		}
		if len(ds.Data) > n {
			n = len(ds.Data)
		}

		color := parseColor(ds.Color)
		style := chart.Style{StrokeColor: color, StrokeWidth: 2}
		if ds.Dashed {
			style.StrokeDashArray = []float64{dashSegment, dashSegment}
		}
		if len(xs) == 1 {
			// A lone point is drawn as a short flat segment around its slot.
			x, y := xs[0], ys[0]
			xs = []float64{x - loneHalfWidth, x + loneHalfWidth}
			ys = []float64{y, y}
			style.DotColor = color
			style.DotWidth = 4
		}
		series = append(series, chart.ContinuousSeries{Name: ds.Label, XValues: xs, YValues: ys, Style: style})
	}
	if len(series) == 0 {
		return ErrNoData
	}

	ch := chart.Chart{
		Title:      c.Title,
		Background: chart.Style{Padding: pngPadding},
		Width:      pngWidth,
		Height:     pngHeight,
		XAxis: chart.XAxis{
			Name:  c.XTitle,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: xTicks(c.Labels, n),
		},
		YAxis: chart.YAxis{
			Name:  c.YTitle,
			Range: yRange(minY, maxY, c.BeginAtZero),
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render line chart %s: %w", c.ID, err)
	}
	return nil
}

// xTicks spreads at most maxXTicks labels evenly across an axis of n
// slots. Unlabelled ticks at both edges keep the axis range at least one
// slot wide, which go-chart requires.
func xTicks(labels []string, n int) []chart.Tick {
	if len(labels) == 0 {
		return nil
	}
	if n < len(labels) {
		n = len(labels)
	}
	step := (len(labels) + maxXTicks - 1) / maxXTicks
	ticks := make([]chart.Tick, 0, maxXTicks+3)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	return append(ticks, chart.Tick{Value: float64(n) - 0.5})
}

func yRange(minY, maxY float64, beginAtZero bool) *chart.ContinuousRange {
	if beginAtZero && minY > 0 {
		minY = 0
	}
	if maxY <= minY {
		maxY = minY + 1
	}
	pad := (maxY - minY) * 0.05
	if beginAtZero && minY == 0 {
		return &chart.ContinuousRange{Min: 0, Max: maxY + pad}
	}
	return &chart.ContinuousRange{Min: minY - pad, Max: maxY + pad}
}
