package application

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/logging"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const (
	metricsPath       = "/metrics"
	monitoringTimeout = 5 * time.Second
)

// CoreMetrics should be exported by every production service.
var CoreMetrics = []string{
	"process_cpu_seconds_total",
	"process_resident_memory_bytes",
	"http_requests_total",
	"http_request_duration_seconds",
}

// TraceHeaders are the response headers that indicate trace propagation.
var TraceHeaders = []string{"X-Request-Id", "X-Correlation-Id", "X-B3-TraceId", "X-B3-SpanId", "traceparent"}

// MonitoringService checks the Prometheus endpoint and trace propagation
// of the target.
type MonitoringService struct {
	client domain.HTTPDoer
}

func NewMonitoringService(client domain.HTTPDoer) *MonitoringService {
	if client == nil {
		client = defaultClient()
	}
	return &MonitoringService{client: client}
}

func (s *MonitoringService) Check(ctx context.Context, cfg domain.ValidationConfig) domain.SectionResult {
	return domain.NewSection(domain.SectionMonitoring, s.Validate(ctx, cfg.APIBaseURL), nil)
}

func (s *MonitoringService) Validate(ctx context.Context, baseURL string) []domain.CheckResult {
	logging.For("monitoring").WithField("url", baseURL).Info("validating monitoring")

	results := s.metricsResults(ctx, baseURL)
	if r, ok := s.traceResult(ctx, baseURL); ok {
		results = append(results, r)
	}
	return results
}

func (s *MonitoringService) metricsResults(ctx context.Context, baseURL string) []domain.CheckResult {
	resp, body, err := fetch(ctx, s.client, http.MethodGet, joinURL(baseURL, metricsPath), nil, nil, monitoringTimeout)
	if err != nil {
		return []domain.CheckResult{
			domain.Fail(domain.CheckMonEndpoint, "Prometheus metrics endpoint accessibility", "Error accessing metrics endpoint: %v", err),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return []domain.CheckResult{
			domain.NewResult(domain.CheckMonEndpoint, "Prometheus metrics endpoint check",
				statusForMissingMetrics(resp.StatusCode),
				"Metrics endpoint returned status %d", resp.StatusCode),
		}
	}

	results := []domain.CheckResult{
		domain.Pass(domain.CheckMonEndpoint, "Prometheus metrics endpoint availability", "Metrics endpoint %s is accessible", metricsPath),
	}

	content := string(body)
	annotated := strings.Contains(content, "# HELP") && strings.Contains(content, "# TYPE")
	families, parseErr := parseMetrics(body)
	switch {
	case annotated && parseErr == nil:
		results = append(results, domain.Pass(domain.CheckMonFormat, "Prometheus metric format validation", "Metrics follow Prometheus format"))
	case parseErr != nil:
		results = append(results, domain.Warn(domain.CheckMonFormat, "Prometheus metric format validation",
			"Metrics found but format may be incorrect: %v", parseErr))
	default:
		results = append(results, domain.Warn(domain.CheckMonFormat, "Prometheus metric format validation", "Metrics found but format may be incorrect"))
	}

	for _, name := range CoreMetrics {
		var present bool
		if parseErr == nil {
			_, present = families[name]
		} else {
			present = strings.Contains(content, name)
		}
		if present {
			results = append(results, domain.Pass(domain.CheckMonCoreMetric, "Core metric check: "+name, "Metric '%s' is being collected", name))
		} else {
			results = append(results, domain.Warn(domain.CheckMonCoreMetric, "Core metric check: "+name,
				"Metric '%s' is missing (recommended for production)", name))
		}
	}
	return results
}

func statusForMissingMetrics(code int) domain.Status {
	if code == http.StatusNotFound {
		return domain.StatusFail
	}
	return domain.StatusWarning
}

func parseMetrics(body []byte) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	return parser.TextToMetricFamilies(bytes.NewReader(body))
}

func (s *MonitoringService) traceResult(ctx context.Context, baseURL string) (domain.CheckResult, bool) {
	resp, _, err := fetch(ctx, s.client, http.MethodGet, baseURL, nil, nil, monitoringTimeout)
	if err != nil {
		return domain.CheckResult{}, false
	}

	var found []string
	for _, h := range TraceHeaders {
		if resp.Header.Get(h) != "" {
			found = append(found, h)
		}
	}
	if len(found) == 0 {
		return domain.Warn(domain.CheckMonTrace, "Trace context headers check", "No standard trace context headers found in response"), true
	}
	return domain.Pass(domain.CheckMonTrace, "Trace context headers check", "Found trace headers: %s", strings.Join(found, ", ")), true
}
