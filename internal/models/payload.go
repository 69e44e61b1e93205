package models

import (
	"encoding/json"
	"fmt"
)

// Payload is the analytics document returned by the upstream analyzer.
// Every field is optional; a nil field means the analyzer did not send it.
type Payload struct {
	DescMatrix       *DescMatrix             `json:"desc_matrix,omitempty"`
	AvgPaceDayWeek   *Ordered[Value]         `json:"avg_pace_day_week,omitempty"`
	Totals           *Ordered[Value]         `json:"totals,omitempty"`
	YearlyStatistics *Ordered[YearlyStat]    `json:"yearly_statistics,omitempty"`
	HistogramData    *Ordered[Histogram]     `json:"histogram_data,omitempty"`
	BestPerf         *Ordered[[]Performance] `json:"best_perf,omitempty"`
	TimeSeriesData   *Ordered[TimeSeries]    `json:"time_series_data,omitempty"`
}

// DescMatrix holds descriptive statistics as parallel arrays: position i
// across all arrays describes the metric named Index[i].
type DescMatrix struct {
	Index []Value `json:"index"`
	Count []Value `json:"count"`
	Mean  []Value `json:"mean"`
	Std   []Value `json:"std"`
	Min   []Value `json:"min"`
	P25   []Value `json:"25%"`
	P50   []Value `json:"50%"`
	P75   []Value `json:"75%"`
	Max   []Value `json:"max"`
}

// Columns returns the statistic arrays in display order, after Index.
func (m *DescMatrix) Columns() [][]Value {
	return [][]Value{m.Count, m.Mean, m.Std, m.Min, m.P25, m.P50, m.P75, m.Max}
}

// YearlyStat is one metric's per-year aggregates, aligned by position with
// Year. The analyzer sends {"error": "..."} instead when the metric column
// is missing from the upload.
type YearlyStat struct {
	Year  []Value `json:"Year"`
	Mean  []Value `json:"mean"`
	Std   []Value `json:"std"`
	Min   []Value `json:"min"`
	Max   []Value `json:"max"`
	Error string  `json:"error,omitempty"`
}

// Histogram holds bin edges and counts. Bins is normally one longer than
// Counts.
type Histogram struct {
	Bins   []float64 `json:"bins"`
	Counts []float64 `json:"counts"`
	Error  string    `json:"error,omitempty"`
}

// Performance is one of the best recorded runs for a distance.
type Performance struct {
	Date     Value `json:"Date"`
	Distance Value `json:"Distance"`
	Time     Value `json:"Time"`
	AvgPace  Value `json:"Avg Pace"`
}

// TimeSeries is a raw series and its precomputed moving average.
// Nil entries are gaps (the moving average is undefined for the first
// points of its window).
type TimeSeries struct {
	Dates         []string   `json:"dates"`
	Values        []*float64 `json:"values"`
	MovingAverage []*float64 `json:"moving_average"`
}

// DecodePayload parses a payload document.
func DecodePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}
