package api

import (
	"html/template"
	"net/http"

	"github.com/sourcegraph/conc/iter"
	"github.com/vytor/runview/internal/charts"
	"github.com/vytor/runview/internal/errors"
	"github.com/vytor/runview/internal/logger"
	"github.com/vytor/runview/internal/models"
	"github.com/vytor/runview/internal/render"
)

type chartView struct {
	Index int
	ID    string
	Title string
	HTML  template.HTML
}

type reportView struct {
	Report *models.Report
	Tables []*render.Table
	Charts []chartView
}

// renderReport runs the pipeline into fresh table and chart regions and
// draws the charts as embeddable HTML in parallel.
func (s *Server) renderReport(r *http.Request, report *models.Report, payload *models.Payload) (*reportView, error) {
	log := logger.FromContext(r.Context()).WithField("report_id", report.ID)

	var tableRegion, chartRegion render.Buffer
	opts := render.Options{Locale: s.locale(r)}
	if err := render.Render(r.Context(), payload, &tableRegion, &chartRegion, opts); err != nil {
		log.Error("failed to render report: %v", err)
		return nil, errors.NewMalformedPayloadError(err)
	}

	views, err := iter.MapErr(chartRegion.Charts(), func(c **render.Chart) (chartView, error) {
		html, err := charts.HTML(*c, s.ChartTheme)
		if err != nil {
			return chartView{}, err
		}
		return chartView{ID: charts.ChartID(*c), Title: (*c).Title, HTML: html}, nil
	})
	if err != nil {
		log.Error("failed to draw charts: %v", err)
		return nil, errors.NewInternalError(err)
	}
	for i := range views {
		views[i].Index = i
	}

	view := &reportView{Report: report, Tables: tableRegion.Tables(), Charts: views}
	log.Debug("report view ready: tables=%d, charts=%d", len(view.Tables), len(view.Charts))
	return view, nil
}
