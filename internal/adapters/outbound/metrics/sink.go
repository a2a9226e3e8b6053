// Package metrics records run outcomes as Prometheus gauges.
package metrics

import (
	"fmt"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sink implements domain.MetricsSink with a private registry. When a
// textfile path is set, every Record rewrites it in node-exporter format.
type Sink struct {
	registry *prometheus.Registry
	textfile string

	tests           *prometheus.GaugeVec
	sectionPassed   *prometheus.GaugeVec
	productionReady prometheus.Gauge
	passPercentage  prometheus.Gauge
	duration        prometheus.Gauge
	lastRun         prometheus.Gauge
}

func New(textfile string) *Sink {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Sink{
		registry: reg,
		textfile: textfile,
		tests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "prodcheck",
				Name:      "tests",
				Help:      "Number of tests in the last run by status",
			},
			[]string{"status"},
		),
		sectionPassed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "prodcheck",
				Name:      "section_passed",
				Help:      "1 if the section had no failed test in the last run",
			},
			[]string{"section"},
		),
		productionReady: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "prodcheck",
			Name:      "production_ready",
			Help:      "1 if the last run found no failures",
		}),
		passPercentage: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "prodcheck",
			Name:      "pass_percentage",
			Help:      "Share of passed tests in the last run",
		}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "prodcheck",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "prodcheck",
			Name:      "last_run_timestamp_seconds",
			Help:      "Start time of the last run",
		}),
	}
}

func (s *Sink) Record(r *domain.Report) error {
	sum := r.Summary
	s.tests.WithLabelValues(string(domain.StatusPass)).Set(float64(sum.TestsPassed))
	s.tests.WithLabelValues(string(domain.StatusFail)).Set(float64(sum.TestsFailed))
	s.tests.WithLabelValues(string(domain.StatusWarning)).Set(float64(sum.TestsWarned))
	s.productionReady.Set(boolGauge(sum.ProductionReady))
	s.passPercentage.Set(sum.PassPercentage)
	s.duration.Set(sum.DurationSeconds)
	if !sum.StartTime.IsZero() {
		s.lastRun.Set(float64(sum.StartTime.Unix()))
	}
	for _, sec := range r.Sections {
		s.sectionPassed.WithLabelValues(sec.Name).Set(boolGauge(sec.Passed))
	}

	if s.textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(s.textfile, s.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

// Registry exposes the gauges, e.g. for promhttp.
func (s *Sink) Registry() *prometheus.Registry { return s.registry }

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
