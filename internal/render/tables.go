package render

import (
	"github.com/vytor/runview/internal/models"
)

var descMatrixHeader = []string{"Metric", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"}

var yearlyStats = []string{"Mean", "Std", "Min", "Max"}

func headerRow(labels ...string) []HeaderCell {
	row := make([]HeaderCell, len(labels))
	for i, l := range labels {
		row[i] = HeaderCell{Text: l}
	}
	return row
}

func cells(texts ...string) []Cell {
	out := make([]Cell, len(texts))
	for i, t := range texts {
		out[i] = Cell{Text: t}
	}
	return out
}

func (b *builder) descMatrix() {
	m := b.p.DescMatrix
	if m == nil {
		return
	}

	cols := m.Columns()
	for i, col := range cols {
		if len(col) != len(m.Index) {
			b.log.Warn("desc_matrix column %q has %d values for %d rows", descMatrixHeader[i+1], len(col), len(m.Index))
		}
	}

	t := &Table{
		ID:     "desc-matrix",
		Title:  "Descriptive Statistics",
		Header: [][]HeaderCell{headerRow(descMatrixHeader...)},
		Rows:   make([]Row, 0, len(m.Index)),
	}
	for i, name := range m.Index {
		row := make([]string, 0, len(descMatrixHeader))
		row = append(row, name.String())
		for _, col := range cols {
			v, _ := models.ValueAt(col, i)
			row = append(row, FormatValue(v))
		}
		t.Rows = append(t.Rows, Row{Cells: cells(row...)})
	}
	b.add(t)
}

func (b *builder) avgPace() {
	if b.p.AvgPaceDayWeek == nil {
		return
	}
	b.add(scalarTable("avg-pace", "Average Pace by Day of the Week", "Day", "Average Pace", b.p.AvgPaceDayWeek, nil))
}

func (b *builder) totals() {
	if b.p.Totals == nil {
		return
	}
	display := func(key string) string { return DisplayKey(b.f, key) }
	b.add(scalarTable("totals", "Totals", "Metric", "Total", b.p.Totals, display))
}

func scalarTable(id, title, keyLabel, valueLabel string, m *models.Ordered[models.Value], display func(string) string) *Table {
	t := &Table{
		ID:     id,
		Title:  title,
		Header: [][]HeaderCell{headerRow(keyLabel, valueLabel)},
		Rows:   make([]Row, 0, m.Len()),
	}
	for _, e := range m.Entries {
		key := e.Key
		if display != nil {
			key = display(key)
		}
		t.Rows = append(t.Rows, Row{Cells: cells(key, FormatValue(e.Value))})
	}
	return t
}

func (b *builder) yearly() {
	y := b.p.YearlyStatistics
	if y == nil {
		return
	}

	metrics := make([]models.Entry[models.YearlyStat], 0, y.Len())
	for _, e := range y.Entries {
		if e.Value.Error != "" {
			b.log.Warn("yearly_statistics %q skipped: %s", e.Key, e.Value.Error)
			continue
		}
		metrics = append(metrics, e)
	}

	top := []HeaderCell{{Text: "Year"}}
	sub := []HeaderCell{{Text: ""}}
	for _, m := range metrics {
		top = append(top, HeaderCell{Text: m.Key, Span: len(yearlyStats)})
		sub = append(sub, headerRow(yearlyStats...)...)
	}

	t := &Table{
		ID:     "yearly",
		Title:  "Yearly Metrics Overview",
		Header: [][]HeaderCell{top, sub},
	}
	if len(metrics) == 0 {
		b.add(t)
		return
	}

	// The first metric's years index every row.
	years := metrics[0].Value.Year
	for _, m := range metrics[1:] {
		if len(m.Value.Year) != len(years) {
			b.log.Warn("yearly_statistics %q has %d years, expected %d", m.Key, len(m.Value.Year), len(years))
		}
	}

	t.Rows = make([]Row, 0, len(years))
	for i, year := range years {
		row := make([]string, 0, 1+len(yearlyStats)*len(metrics))
		row = append(row, year.String())
		for _, m := range metrics {
			for _, col := range [][]models.Value{m.Value.Mean, m.Value.Std, m.Value.Min, m.Value.Max} {
				v, _ := models.ValueAt(col, i)
				row = append(row, FormatValue(v))
			}
		}
		t.Rows = append(t.Rows, Row{Cells: cells(row...)})
	}
	b.add(t)
}

var bestPerfHeader = []string{"Distance (km)", "Date", "Time", "Avg Pace"}

func (b *builder) bestPerf() {
	bp := b.p.BestPerf
	if bp == nil {
		return
	}

	t := &Table{
		ID:     "best-perf",
		Title:  "Best Performances",
		Header: [][]HeaderCell{headerRow(bestPerfHeader...)},
	}
	for _, group := range bp.Entries {
		t.Rows = append(t.Rows, Row{
			Cells:   []Cell{{Text: group.Key + " km", Span: len(bestPerfHeader)}},
			Section: true,
		})
		for _, rec := range group.Value {
			t.Rows = append(t.Rows, Row{Cells: cells(
				group.Key,
				b.f.Date(rec.Date.String()),
				rec.Time.String(),
				rec.AvgPace.String(),
			)})
		}
	}
	b.add(t)
}
