// Package render turns an analytics payload into table and chart artifacts.
package render

import (
	"context"
	"errors"

	"github.com/vytor/runview/internal/locale"
	"github.com/vytor/runview/internal/logger"
	"github.com/vytor/runview/internal/models"
)

var (
	ErrNilPayload   = errors.New("render: nil payload")
	ErrEmptyPayload = errors.New("render: payload has no known fields")
)

// Options tune a render cycle.
type Options struct {
	// Locale formats dates and display keys. Nil uses the default locale.
	Locale *locale.Formatter
}

func (o Options) formatter() *locale.Formatter {
	if o.Locale != nil {
		return o.Locale
	}
	return locale.Default().Fallback()
}

type step func(*builder)

// Dispatch order of the sub-renders.
var steps = []step{
	(*builder).descMatrix,
	(*builder).avgPace,
	(*builder).totals,
	(*builder).yearly,
	(*builder).histograms,
	(*builder).bestPerf,
	(*builder).timeSeries,
}

type builder struct {
	p         *models.Payload
	f         *locale.Formatter
	log       *logger.Logger
	artifacts []Artifact
	ids       map[string]bool
}

func (b *builder) add(a Artifact) {
	b.artifacts = append(b.artifacts, a)
}

// Build maps every present payload field to its artifacts, in dispatch
// order, without touching any container.
func Build(ctx context.Context, p *models.Payload, opts Options) ([]Artifact, error) {
	if p == nil {
		return nil, ErrNilPayload
	}
	if isEmpty(p) {
		return nil, ErrEmptyPayload
	}

	b := &builder{
		p:   p,
		f:   opts.formatter(),
		log: logger.FromContext(ctx).WithPrefix("render"),
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s(b)
	}
	return b.artifacts, nil
}

// Render clears both containers and appends every artifact built from p.
// Tables go to tables and charts to charts. On error neither container is
// touched.
func Render(ctx context.Context, p *models.Payload, tables, charts Container, opts Options) error {
	artifacts, err := Build(ctx, p, opts)
	if err != nil {
		return err
	}

	tables.Clear()
	charts.Clear()
	for _, a := range artifacts {
		switch a.ArtifactKind() {
		case KindChart:
			charts.Append(a)
		default:
			tables.Append(a)
		}
	}

	logger.FromContext(ctx).Debug("rendered %d artifacts", len(artifacts))
	return nil
}

func isEmpty(p *models.Payload) bool {
	return p.DescMatrix == nil &&
		p.AvgPaceDayWeek == nil &&
		p.Totals == nil &&
		p.YearlyStatistics == nil &&
		p.HistogramData == nil &&
		p.BestPerf == nil &&
		p.TimeSeriesData == nil
}
