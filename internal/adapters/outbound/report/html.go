package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"
	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/perf"
)

//go:embed report.html.tmpl
var htmlSource string

var htmlTemplate = template.Must(template.New("report").Funcs(sprig.FuncMap()).Funcs(template.FuncMap{
	"statusClass": statusClass,
	"statusIcon":  statusIcon,
}).Parse(htmlSource))

var sectionTitles = map[string]string{
	domain.SectionEnvConfig:   "Environment Configuration",
	domain.SectionSecurity:    "Security Tests",
	domain.SectionPerformance: "Performance Tests",
	domain.SectionAPI:         "API Tests",
	domain.SectionDatabase:    "Database Tests",
	domain.SectionDeployment:  "Deployment Readiness",
	domain.SectionLogging:     "Logging",
	domain.SectionMonitoring:  "Monitoring",
}

type metricRow struct {
	Label string
	Value string
}

type sectionView struct {
	Title     string
	Section   domain.SectionResult
	Metrics   []metricRow
	Endpoints []domain.EndpointResult
}

type reportView struct {
	Report   *domain.Report
	Sections []sectionView
}

// RenderHTML writes the report as a standalone HTML page.
func RenderHTML(w io.Writer, r *domain.Report) error {
	view := reportView{Report: r}
	for _, s := range r.Sections {
		sv := sectionView{Title: sectionTitles[s.Name], Section: s}
		if sv.Title == "" {
			sv.Title = s.Name
		}
		switch d := s.Details.(type) {
		case perf.Metrics:
			sv.Metrics = metricRows(d)
		case domain.APIDetails:
			sv.Endpoints = d.Endpoints
		}
		view.Sections = append(view.Sections, sv)
	}

	if err := htmlTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}
	return nil
}

func metricRows(m perf.Metrics) []metricRow {
	return []metricRow{
		{"Total Requests", fmt.Sprintf("%d", m.Requests)},
		{"Successful Requests", fmt.Sprintf("%d", m.Successful)},
		{"Failed Requests", fmt.Sprintf("%d", m.Failed)},
		{"Success Rate", fmt.Sprintf("%.1f%%", m.SuccessRate)},
		{"Average Response Time", fmt.Sprintf("%.1f ms", m.Avg)},
		{"95th Percentile Response Time", fmt.Sprintf("%.1f ms", m.P95)},
		{"Throughput", fmt.Sprintf("%.1f req/sec", m.Throughput)},
	}
}

func statusClass(s domain.Status) string {
	switch s {
	case domain.StatusPass:
		return "pass"
	case domain.StatusWarning:
		return "warning"
	default:
		return "fail"
	}
}

func statusIcon(s domain.Status) string {
	switch s {
	case domain.StatusPass:
		return "✅"
	case domain.StatusWarning:
		return "⚠️"
	default:
		return "❌"
	}
}
