package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/perf"
	"github.com/openkraft/prodcheck/internal/logging"
	"golang.org/x/sync/errgroup"
)

// LoadDiscoveryPaths are probed when no endpoints are given.
var LoadDiscoveryPaths = []string{
	"/api",
	"/api/v1",
	"/api/health",
	"/api/status",
	"/health",
	"/status",
	"/api/users",
	"/api/customers",
	"/api/products",
}

const (
	loadAccessTimeout    = 5 * time.Second
	loadDiscoveryTimeout = 2 * time.Second
	loadRequestTimeout   = 5 * time.Second
	loadRequestInterval  = 100 * time.Millisecond
)

// LoadService simulates concurrent users against the target and judges
// the latency and throughput they observe.
type LoadService struct {
	client   domain.HTTPDoer
	interval time.Duration
}

func NewLoadService(client domain.HTTPDoer) *LoadService {
	if client == nil {
		client = defaultClient()
	}
	return &LoadService{client: client, interval: loadRequestInterval}
}

func (s *LoadService) Check(ctx context.Context, cfg domain.ValidationConfig) domain.SectionResult {
	tests, metrics := s.Run(ctx, cfg.APIBaseURL, cfg.Performance, nil)
	if metrics == nil {
		return domain.NewSection(domain.SectionPerformance, tests, nil)
	}
	return domain.NewSection(domain.SectionPerformance, tests, *metrics)
}

// Run load tests baseURL. With no endpoints given, common paths are
// discovered first. An unreachable base URL yields a single failure and
// no metrics.
func (s *LoadService) Run(ctx context.Context, baseURL string, p domain.PerformanceConfig, endpoints []string) ([]domain.CheckResult, *perf.Metrics) {
	log := logging.For("load").WithField("url", baseURL)

	if _, _, err := fetch(ctx, s.client, http.MethodGet, baseURL, nil, nil, loadAccessTimeout); err != nil {
		return []domain.CheckResult{
			domain.Fail(domain.CheckPerfReachable, "Base URL accessibility check", "Base URL is not accessible: %v", err),
		}, nil
	}

	if len(endpoints) == 0 {
		endpoints = s.discover(ctx, baseURL)
	}
	log.WithFields(map[string]any{
		"users":     p.LoadTestUsers,
		"duration":  p.LoadTestDuration,
		"endpoints": endpoints,
	}).Info("starting load test")

	duration := time.Duration(p.LoadTestDuration) * time.Second
	samples := s.runWorkers(ctx, baseURL, endpoints, p.LoadTestUsers, duration)

	metrics := perf.Merge(samples, duration)
	metrics.Endpoints = endpoints
	log.WithFields(map[string]any{
		"requests":     metrics.Requests,
		"success_rate": metrics.SuccessRate,
		"p95_ms":       metrics.P95,
	}).Info("load test finished")

	tests := perf.Evaluate(metrics, perf.Limits{
		Users:           p.LoadTestUsers,
		MaxResponseTime: float64(p.MaxResponseTime),
		P95Multiplier:   p.P95Multiplier,
	})
	return tests, &metrics
}

// discover keeps the common paths answering below 400, falling back to "/".
func (s *LoadService) discover(ctx context.Context, baseURL string) []string {
	var found []string
	for _, path := range LoadDiscoveryPaths {
		resp, _, err := fetch(ctx, s.client, http.MethodHead, joinURL(baseURL, path), nil, nil, loadDiscoveryTimeout)
		if err == nil && resp.StatusCode < http.StatusBadRequest {
			found = append(found, path)
		}
	}
	if len(found) == 0 {
		found = []string{"/"}
	}
	return found
}

// runWorkers starts one goroutine per user. Each worker owns its sample;
// samples are only read after Wait.
func (s *LoadService) runWorkers(ctx context.Context, baseURL string, endpoints []string, users int, duration time.Duration) []perf.Sample {
	samples := make([]perf.Sample, users)
	deadline := time.Now().Add(duration)

	g, gCtx := errgroup.WithContext(ctx)
	for i := range samples {
		sample := &samples[i]
		g.Go(func() error {
			s.work(gCtx, baseURL, endpoints, deadline, sample)
			return nil
		})
	}
	_ = g.Wait()
	return samples
}

func (s *LoadService) work(ctx context.Context, baseURL string, endpoints []string, deadline time.Time, sample *perf.Sample) {
	for time.Now().Before(deadline) {
		for _, path := range endpoints {
			url := joinURL(baseURL, path)

			start := time.Now()
			resp, _, err := fetch(ctx, s.client, http.MethodGet, url, nil, nil, loadRequestTimeout)
			ms := float64(time.Since(start).Microseconds()) / 1000

			switch {
			case err != nil:
				sample.Record(ms, false, fmt.Sprintf("%s: %v", url, err))
			case resp.StatusCode >= http.StatusBadRequest:
				sample.Record(ms, false, fmt.Sprintf("%s: status %d", url, resp.StatusCode))
			default:
				sample.Record(ms, true, "")
			}

			if !time.Now().Before(deadline) {
				break
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.interval):
			}
		}
	}
}
