package render_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/runview/internal/locale"
	"github.com/vytor/runview/internal/models"
	"github.com/vytor/runview/internal/render"
)

func decode(t *testing.T, doc string) *models.Payload {
	t.Helper()
	p, err := models.DecodePayload([]byte(doc))
	require.NoError(t, err)
	return p
}

func renderPayload(t *testing.T, doc string) (*render.Buffer, *render.Buffer) {
	t.Helper()
	tables, charts := &render.Buffer{}, &render.Buffer{}
	err := render.Render(context.Background(), decode(t, doc), tables, charts, render.Options{})
	require.NoError(t, err)
	return tables, charts
}

func cellTexts(row render.Row) []string {
	out := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		out[i] = c.Text
	}
	return out
}

func TestRender_Totals(t *testing.T) {
	tables, charts := renderPayload(t, `{"totals": {"total_distance": 123.456}}`)

	require.Len(t, tables.Tables(), 1)
	assert.Empty(t, charts.Charts())

	totals := tables.Tables()[0]
	assert.Equal(t, "Totals", totals.Title)
	require.Len(t, totals.Rows, 1)
	assert.Equal(t, []string{"TOTAL DISTANCE", "123.46"}, cellTexts(totals.Rows[0]))
}

func TestRender_TotalsReplacesEveryUnderscore(t *testing.T) {
	tables, _ := renderPayload(t, `{"totals": {"total_elevation_gain": 10}}`)
	assert.Equal(t, "TOTAL ELEVATION GAIN", tables.Tables()[0].Rows[0].Cells[0].Text)
}

func TestRender_DescMatrix(t *testing.T) {
	tables, _ := renderPayload(t, `{"desc_matrix": {
		"index": ["Distance", "Pace"],
		"count": [10, 10],
		"mean": [5.4321, "n/a"],
		"std": [1, 2],
		"min": [1, 2],
		"25%": [1, 2],
		"50%": [1, 2],
		"75%": [1, 2],
		"max": [9.999, 2]
	}}`)

	require.Len(t, tables.Tables(), 1)
	m := tables.Tables()[0]
	assert.Equal(t, 9, m.ColumnCount())
	assert.Len(t, m.Header, 1)
	assert.Equal(t, 3, len(m.Header)+len(m.Rows), "header plus one row per index entry")

	assert.Equal(t, []string{"Distance", "10.00", "5.43", "1.00", "1.00", "1.00", "1.00", "1.00", "10.00"}, cellTexts(m.Rows[0]))
	assert.Equal(t, "n/a", m.Rows[1].Cells[2].Text, "non-numeric values pass through")
}

func TestRender_DescMatrixMisalignedRendersBlank(t *testing.T) {
	tables, _ := renderPayload(t, `{"desc_matrix": {
		"index": ["Distance", "Pace"],
		"count": [10],
		"mean": [1, 2], "std": [1, 2], "min": [1, 2],
		"25%": [1, 2], "50%": [1, 2], "75%": [1, 2], "max": [1, 2]
	}}`)

	m := tables.Tables()[0]
	require.Len(t, m.Rows, 2)
	assert.Equal(t, "", m.Rows[1].Cells[1].Text)
	assert.Len(t, m.Rows[1].Cells, 9)
}

func TestRender_AvgPaceKeepsPayloadOrder(t *testing.T) {
	tables, _ := renderPayload(t, `{"avg_pace_day_week": {"Wednesday": 5.5, "Monday": "6:01", "Sunday": 4.999}}`)

	pace := tables.Tables()[0]
	assert.Equal(t, "Average Pace by Day of the Week", pace.Title)
	require.Len(t, pace.Rows, 3)
	assert.Equal(t, []string{"Wednesday", "5.50"}, cellTexts(pace.Rows[0]))
	assert.Equal(t, []string{"Monday", "6:01"}, cellTexts(pace.Rows[1]))
	assert.Equal(t, []string{"Sunday", "5.00"}, cellTexts(pace.Rows[2]))
}

func TestRender_Yearly(t *testing.T) {
	tables, _ := renderPayload(t, `{"yearly_statistics": {
		"Distance": {"Year": [2022, 2023, 2024], "mean": [5, 6, 7], "std": [1, 1, 1], "min": [1, 2, 3], "max": [10, 11, 12]},
		"Pace": {"Year": [2022, 2023, 2024], "mean": [5.5, 5.25, 5.125], "std": [0, 0, 0], "min": [4, 4, 4], "max": [7, 7, 7]}
	}}`)

	y := tables.Tables()[0]
	assert.Equal(t, "Yearly Metrics Overview", y.Title)
	assert.Equal(t, 1+4*2, y.ColumnCount())
	require.Len(t, y.Header, 2)
	assert.Equal(t, render.HeaderCell{Text: "Distance", Span: 4}, y.Header[0][1])
	assert.Len(t, y.Header[1], 9)
	require.Len(t, y.Rows, 3)
	assert.Equal(t, "2022", y.Rows[0].Cells[0].Text)
	assert.Equal(t, []string{"2023", "6.00", "1.00", "2.00", "11.00", "5.25", "0.00", "4.00", "7.00"}, cellTexts(y.Rows[1]))
}

func TestRender_YearlyUsesFirstMetricYears(t *testing.T) {
	tables, _ := renderPayload(t, `{"yearly_statistics": {
		"Distance": {"Year": [2023, 2024], "mean": [1, 2], "std": [1, 2], "min": [1, 2], "max": [1, 2]},
		"Pace": {"Year": [2024], "mean": [9], "std": [9], "min": [9], "max": [9]}
	}}`)

	y := tables.Tables()[0]
	require.Len(t, y.Rows, 2)
	assert.Equal(t, "9.00", y.Rows[0].Cells[5].Text, "positional lookup, not corrected")
	assert.Equal(t, "", y.Rows[1].Cells[5].Text)
}

func TestRender_YearlySkipsErrorEntries(t *testing.T) {
	tables, _ := renderPayload(t, `{"yearly_statistics": {
		"Heart Rate": {"error": "Column 'Heart Rate' not found in data"},
		"Distance": {"Year": [2024], "mean": [1], "std": [1], "min": [1], "max": [1]}
	}}`)

	y := tables.Tables()[0]
	assert.Equal(t, 5, y.ColumnCount())
	require.Len(t, y.Rows, 1)
	assert.Equal(t, "2024", y.Rows[0].Cells[0].Text)
}

func TestRender_Histogram(t *testing.T) {
	_, charts := renderPayload(t, `{"histogram_data": {"Distance": {"bins": [0, 5, 10], "counts": [3, 7]}}}`)

	require.Len(t, charts.Charts(), 1)
	c := charts.Charts()[0]
	assert.Equal(t, render.ChartBar, c.Type)
	assert.Equal(t, "Distance Histogram", c.Title)
	assert.Equal(t, []string{"0.00–5.00", "5.00+"}, c.Labels)
	require.Len(t, c.Datasets, 1)
	assert.Equal(t, "Frequency of Distance", c.Datasets[0].Label)
	require.Len(t, c.Datasets[0].Data, 2)
	assert.Equal(t, 3.0, *c.Datasets[0].Data[0])
	assert.Equal(t, "Distance Bins", c.XTitle)
	assert.Equal(t, "Count", c.YTitle)
	assert.True(t, c.BeginAtZero)
}

func TestRender_HistogramSkipsErrorEntries(t *testing.T) {
	_, charts := renderPayload(t, `{"histogram_data": {
		"Heart Rate": {"error": "Column 'Heart Rate' not found in data"},
		"Pace": {"bins": [4, 5], "counts": [2]}
	}}`)

	require.Len(t, charts.Charts(), 1)
	assert.Equal(t, []string{"4.00+"}, charts.Charts()[0].Labels)
}

func TestRender_ChartIDsAreUnique(t *testing.T) {
	_, charts := renderPayload(t, `{
		"histogram_data": {
			"Avg HR": {"bins": [0, 1], "counts": [1]},
			"avg_hr": {"bins": [0, 1], "counts": [1]},
			"%": {"bins": [0, 1], "counts": [1]},
			"#": {"bins": [0, 1], "counts": [1]}
		},
		"time_series_data": {
			"Avg HR": {"dates": ["2024-01-01"], "values": [1], "moving_average": [null]},
			"avg hr": {"dates": ["2024-01-01"], "values": [1], "moving_average": [null]}
		}
	}`)

	var ids []string
	for _, c := range charts.Charts() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{
		"histogram-avg-hr",
		"histogram-avg-hr-2",
		"histogram-3",
		"histogram-4",
		"series-avg-hr",
		"series-avg-hr-2",
	}, ids)
}

func TestRender_BestPerf(t *testing.T) {
	tables, _ := renderPayload(t, `{"best_perf": {
		"5": [
			{"Date": "2024-03-01", "Distance": 5.01, "Time": "00:22:10", "Avg Pace": "4:25"},
			{"Date": "2023-06-12", "Distance": 5.0, "Time": "00:23:00", "Avg Pace": "4:36"}
		],
		"10": [
			{"Date": "2024-01-02 08:00:00", "Distance": 10.2, "Time": "00:48:00", "Avg Pace": "4:42"}
		]
	}}`)

	bp := tables.Tables()[0]
	assert.Equal(t, 4, bp.ColumnCount())
	require.Len(t, bp.Rows, 5)

	sections := 0
	for _, r := range bp.Rows {
		if r.Section {
			sections++
		}
	}
	assert.Equal(t, 2, sections)

	assert.True(t, bp.Rows[0].Section)
	assert.Equal(t, render.Cell{Text: "5 km", Span: 4}, bp.Rows[0].Cells[0])
	assert.Equal(t, []string{"5", "3/1/2024", "00:22:10", "4:25"}, cellTexts(bp.Rows[1]))
	assert.Equal(t, []string{"5", "6/12/2023", "00:23:00", "4:36"}, cellTexts(bp.Rows[2]))
	assert.Equal(t, "10 km", bp.Rows[3].Cells[0].Text)
	assert.Equal(t, "1/2/2024", bp.Rows[4].Cells[1].Text)
}

func TestRender_TimeSeries(t *testing.T) {
	tables, charts := &render.Buffer{}, &render.Buffer{}
	p := decode(t, `{"time_series_data": {"Distance": {
		"dates": ["2024-01-01", "2024-01-02"],
		"values": [10, 12],
		"moving_average": [null, 11]
	}}}`)

	err := render.Render(context.Background(), p, tables, charts, render.Options{Locale: locale.Default().Match("de")})
	require.NoError(t, err)

	require.Len(t, charts.Charts(), 1)
	c := charts.Charts()[0]
	assert.Equal(t, render.ChartLine, c.Type)
	assert.Equal(t, "Distance Over Time", c.Title)
	assert.Equal(t, []string{"1.1.2024", "2.1.2024"}, c.Labels)
	require.Len(t, c.Datasets, 2)
	assert.Len(t, c.Datasets[0].Data, 2)
	assert.Len(t, c.Datasets[1].Data, 2)
	assert.Equal(t, "Distance (Raw Values)", c.Datasets[0].Label)
	assert.Equal(t, "Distance (Moving Avg)", c.Datasets[1].Label)
	assert.Nil(t, c.Datasets[1].Data[0])
	assert.Equal(t, 11.0, *c.Datasets[1].Data[1])
	assert.True(t, c.Datasets[1].Dashed)
	assert.False(t, c.Datasets[0].Dashed)
}

func TestRender_DispatchOrder(t *testing.T) {
	p := decode(t, `{
		"time_series_data": {"Distance": {"dates": ["2024-01-01"], "values": [1], "moving_average": [null]}},
		"best_perf": {"5": []},
		"histogram_data": {"Distance": {"bins": [0, 1], "counts": [1]}},
		"totals": {"runs": 1},
		"yearly_statistics": {},
		"avg_pace_day_week": {"Monday": 5},
		"desc_matrix": {"index": [], "count": [], "mean": [], "std": [], "min": [], "25%": [], "50%": [], "75%": [], "max": []}
	}`)

	artifacts, err := render.Build(context.Background(), p, render.Options{})
	require.NoError(t, err)

	var ids []string
	for _, a := range artifacts {
		switch v := a.(type) {
		case *render.Table:
			ids = append(ids, v.ID)
		case *render.Chart:
			ids = append(ids, v.ID)
		}
	}
	assert.Equal(t, []string{"desc-matrix", "avg-pace", "totals", "yearly", "histogram-distance", "best-perf", "series-distance"}, ids)
}

func TestRender_ClearsBeforeAppending(t *testing.T) {
	tables, charts := &render.Buffer{}, &render.Buffer{}
	ctx := context.Background()

	require.NoError(t, render.Render(ctx, decode(t, `{"totals": {"a": 1}, "histogram_data": {"x": {"bins": [0, 1], "counts": [1]}}}`), tables, charts, render.Options{}))
	require.NoError(t, render.Render(ctx, decode(t, `{"totals": {"b": 2}}`), tables, charts, render.Options{}))

	assert.Equal(t, 2, tables.Clears())
	assert.Equal(t, 2, charts.Clears())
	require.Len(t, tables.Tables(), 1)
	assert.Equal(t, "B", tables.Tables()[0].Rows[0].Cells[0].Text)
	assert.Empty(t, charts.Charts())
}

func TestRender_FailureLeavesContainersUntouched(t *testing.T) {
	tables, charts := &render.Buffer{}, &render.Buffer{}
	ctx := context.Background()
	require.NoError(t, render.Render(ctx, decode(t, `{"totals": {"a": 1}}`), tables, charts, render.Options{}))

	err := render.Render(ctx, decode(t, `{"unknown": true}`), tables, charts, render.Options{})
	assert.ErrorIs(t, err, render.ErrEmptyPayload)

	err = render.Render(ctx, nil, tables, charts, render.Options{})
	assert.ErrorIs(t, err, render.ErrNilPayload)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = render.Render(cancelled, decode(t, `{"totals": {"z": 1}}`), tables, charts, render.Options{})
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1, tables.Clears())
	assert.Equal(t, 1, charts.Clears())
	assert.Equal(t, "A", tables.Tables()[0].Rows[0].Cells[0].Text)
}

func TestRender_MissingFieldsAreSkipped(t *testing.T) {
	tables, charts := renderPayload(t, `{"totals": {"a": 1}, "desc_matrix": null}`)
	assert.Len(t, tables.Tables(), 1)
	assert.Empty(t, charts.Charts())
}
