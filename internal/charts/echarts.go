// Package charts draws render.Chart specs, as interactive ECharts HTML for
// pages and as static PNG images for export.
package charts

import (
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	goerender "github.com/go-echarts/go-echarts/v2/render"
	"github.com/vytor/runview/internal/render"
)

var ErrUnknownType = errors.New("charts: unknown chart type")

// DefaultTheme is the ECharts theme used when none is configured.
const DefaultTheme = "macarons"

// missing is the ECharts marker for an empty data point.
const missing = "-"

func globalOptions(c *render.Chart, theme string) []charts.GlobalOpts {
	if theme == "" {
		theme = DefaultTheme
	}
	yAxis := opts.YAxis{
		Name:         c.YTitle,
		NameLocation: "middle",
		NameGap:      50,
	}
	if c.BeginAtZero {
		yAxis.Min = 0
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{Theme: theme, ChartID: ChartID(c)}),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "bottom"}),
		charts.WithGridOpts(opts.Grid{Bottom: "20%"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      c.XTitle,
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(yAxis),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "shadow",
			},
		}),
	}
}

// ChartID is the DOM id of an embedded chart. ECharts also uses it in a
// script variable name, so it must be a valid identifier.
func ChartID(c *render.Chart) string {
	return "chart_" + strings.ReplaceAll(c.ID, "-", "_")
}

func lineItems(data []*float64) []opts.LineData {
	items := make([]opts.LineData, 0, len(data))
	for _, v := range data {
		if v == nil {
			items = append(items, opts.LineData{Value: missing})
			continue
		}
		items = append(items, opts.LineData{Value: *v})
	}
	return items
}

func barItems(data []*float64) []opts.BarData {
	items := make([]opts.BarData, 0, len(data))
	for _, v := range data {
		if v == nil {
			items = append(items, opts.BarData{Value: missing})
			continue
		}
		items = append(items, opts.BarData{Value: *v})
	}
	return items
}

func newBar(c *render.Chart, theme string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(c, theme)...)
	bar.SetXAxis(c.Labels)
	for _, ds := range c.Datasets {
		bar.AddSeries(ds.Label, barItems(ds.Data),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Color}),
		)
	}
	return bar
}

func newLine(c *render.Chart, theme string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(c, theme)...)
	line.SetXAxis(c.Labels)
	for _, ds := range c.Datasets {
		style := opts.LineStyle{Color: ds.Color}
		if ds.Dashed {
			style.Type = "dashed"
		}
		line.AddSeries(ds.Label, lineItems(ds.Data),
			charts.WithLineStyleOpts(style),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ds.Color}),
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(ds.Tension > 0)}),
		)
	}
	return line
}

// AssetsHost serves the ECharts library and its themes.
const AssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Scripts lists the script URLs a page must load, once, before any chart
// fragment from HTML runs.
func Scripts(theme string) []string {
	if theme == "" {
		theme = DefaultTheme
	}
	scripts := []string{AssetsHost + "echarts.min.js"}
	switch theme {
	case "white", "light", "dark":
	default:
		scripts = append(scripts, AssetsHost+"themes/"+theme+".js")
	}
	return scripts
}

// HTML renders c as a chart element plus its init script, for embedding in
// a page that already loads Scripts.
func HTML(c *render.Chart, theme string) (template.HTML, error) {
	var snippet goerender.ChartSnippet
	switch c.Type {
	case render.ChartBar:
		bar := newBar(c, theme)
		bar.Validate()
		snippet = bar.RenderSnippet()
	case render.ChartLine:
		line := newLine(c, theme)
		line.Validate()
		snippet = line.RenderSnippet()
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, c.Type)
	}
	if snippet.Element == "" {
		return "", fmt.Errorf("render chart %s: empty snippet", c.ID)
	}
	return template.HTML(snippet.Element + snippet.Script), nil
}
