package http

import (
	"html/template"
	"net/http"

	"ubs/internal/chart"
	"ubs/internal/log"
	"ubs/internal/report"
)

// handleUnitReport draws the four-bar chart of one unit.
func (s *Server) handleUnitReport(w http.ResponseWriter, r *http.Request) {
	unitID, err := ParseUnitIDQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, log.OpReport, err)
		return
	}
	rep, err := s.ledger.UnitReport(r.Context(), unitID)
	if err != nil {
		s.writeError(w, r, log.OpReport, err)
		return
	}

	svg, err := s.unitCanvas.RenderSVG(chart.VerticalBars(chart.UnitSeries(rep), chart.UnitCanvas))
	if err != nil {
		s.writeError(w, r, log.OpRender, err)
		return
	}

	s.render(w, r, "unit_report.html", struct {
		UnitID        int64
		Name          string
		Federal       string
		State         string
		Municipal     string
		TotalExpenses string
		GrandTotal    string
		Chart         template.HTML
	}{
		UnitID:        rep.UnitID,
		Name:          rep.Name,
		Federal:       formatReais(rep.Federal),
		State:         formatReais(rep.State),
		Municipal:     formatReais(rep.Municipal),
		TotalExpenses: formatReais(rep.TotalExpenses),
		GrandTotal:    formatReais(rep.GrandTotal()),
		Chart:         svg,
	}, NewHTMXResponse())
}

type legendRow struct {
	Label string
	Color string
	Total string
}

type overallView struct {
	Empty   bool
	Message string
	Chart   template.HTML
	Legend  []legendRow
}

// handleOverallReport draws one horizontal bar per unit. With no units the
// canvas is cleared and an informational notice is returned instead.
func (s *Server) handleOverallReport(w http.ResponseWriter, r *http.Request) {
	totals, err := s.ledger.OverallReport(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpReport, err)
		return
	}

	if len(totals) == 0 {
		s.overallCanvas.Clear()
		msg := "No UBS registered."
		s.render(w, r, "overall_report.html", overallView{Empty: true, Message: msg},
			NewHTMXResponse().TriggerInfoNotification(msg))
		return
	}

	labels := report.Labels(totals)
	drawing := chart.HorizontalBars(chart.OverallSeries(totals, labels), chart.OverallCanvas)
	svg, err := s.overallCanvas.RenderSVG(drawing)
	if err != nil {
		s.writeError(w, r, log.OpRender, err)
		return
	}

	legend := make([]legendRow, 0, len(drawing.Legend))
	for i, entry := range drawing.Legend {
		legend = append(legend, legendRow{Label: entry.Label, Color: entry.Color, Total: formatReais(totals[i].Total)})
	}

	s.render(w, r, "overall_report.html", overallView{Chart: svg, Legend: legend}, NewHTMXResponse())
}
