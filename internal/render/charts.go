package render

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	histogramColor     = "rgba(75, 192, 192, 0.6)"
	rawSeriesColor     = "rgba(75, 192, 192, 1)"
	movingAverageColor = "rgba(255, 99, 132, 1)"
	lineTension        = 0.4
)

// chartID derives a chart ID from its metric key. Keys that slug to
// nothing use their position, and repeats get a numeric suffix, so every
// chart in one build has a distinct ID.
func (b *builder) chartID(prefix, metric string, pos int) string {
	base := prefix + "-" + slug(metric)
	if strings.HasSuffix(base, "-") {
		base += strconv.Itoa(pos + 1)
	}
	if b.ids == nil {
		b.ids = make(map[string]bool)
	}
	id := base
	for n := 2; b.ids[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	b.ids[id] = true
	return id
}

func (b *builder) histograms() {
	h := b.p.HistogramData
	if h == nil {
		return
	}

	for i, e := range h.Entries {
		metric, hist := e.Key, e.Value
		if hist.Error != "" {
			b.log.Warn("histogram_data %q skipped: %s", metric, hist.Error)
			continue
		}
		if len(hist.Bins) < len(hist.Counts) {
			b.log.Warn("histogram_data %q has %d bins for %d counts", metric, len(hist.Bins), len(hist.Counts))
		}

		b.add(&Chart{
			ID:     b.chartID("histogram", metric, i),
			Type:   ChartBar,
			Title:  fmt.Sprintf("%s Histogram", metric),
			Labels: BinLabels(hist.Bins, hist.Counts),
			Datasets: []Dataset{{
				Label: "Frequency of " + metric,
				Data:  floatPtrs(hist.Counts),
				Color: histogramColor,
			}},
			XTitle:      metric + " Bins",
			YTitle:      "Count",
			BeginAtZero: true,
		})
	}
}

func (b *builder) timeSeries() {
	ts := b.p.TimeSeriesData
	if ts == nil {
		return
	}

	for i, e := range ts.Entries {
		metric, series := e.Key, e.Value
		if len(series.Values) != len(series.Dates) || len(series.MovingAverage) != len(series.Dates) {
			b.log.Warn("time_series_data %q has %d dates, %d values, %d moving average points",
				metric, len(series.Dates), len(series.Values), len(series.MovingAverage))
		}

		labels := make([]string, len(series.Dates))
		for i, d := range series.Dates {
			labels[i] = b.f.Date(d)
		}

		b.add(&Chart{
			ID:     b.chartID("series", metric, i),
			Type:   ChartLine,
			Title:  fmt.Sprintf("%s Over Time", metric),
			Labels: labels,
			Datasets: []Dataset{
				{
					Label:   metric + " (Raw Values)",
					Data:    series.Values,
					Color:   rawSeriesColor,
					Tension: lineTension,
				},
				{
					Label:   metric + " (Moving Avg)",
					Data:    series.MovingAverage,
					Color:   movingAverageColor,
					Dashed:  true,
					Tension: lineTension,
				},
			},
			XTitle:      "Date",
			YTitle:      metric,
			BeginAtZero: true,
		})
	}
}
