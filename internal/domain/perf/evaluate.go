package perf

import "github.com/openkraft/prodcheck/internal/domain"

// MinSuccessRate is the lowest acceptable success percentage.
const MinSuccessRate = 95.0

// Limits are the thresholds a run is judged against.
type Limits struct {
	Users           int
	MaxResponseTime float64 // ms
	P95Multiplier   float64
}

// Evaluate turns metrics into the four load test results.
func Evaluate(m Metrics, l Limits) []domain.CheckResult {
	p95Limit := l.MaxResponseTime * l.P95Multiplier
	minThroughput := float64(l.Users) / 2

	return []domain.CheckResult{
		domain.NewResult(domain.CheckPerfSuccessRate, "Request success rate",
			domain.StatusIf(m.SuccessRate >= MinSuccessRate, domain.StatusFail),
			"Success rate: %.1f%%", m.SuccessRate),
		domain.NewResult(domain.CheckPerfAvgLatency, "Average response time",
			domain.StatusIf(m.Avg <= l.MaxResponseTime, domain.StatusFail),
			"Average response time: %.1f ms (Max allowed: %.0f ms)", m.Avg, l.MaxResponseTime),
		domain.NewResult(domain.CheckPerfP95, "95th percentile response time",
			domain.StatusIf(m.P95 <= p95Limit, domain.StatusFail),
			"95th percentile response time: %.1f ms (Max allowed: %.1f ms)", m.P95, p95Limit),
		domain.NewResult(domain.CheckPerfThroughput, "Throughput (requests per second)",
			domain.StatusIf(m.Throughput >= minThroughput, domain.StatusFail),
			"Throughput: %.1f requests/sec (Min expected: %.1f)", m.Throughput, minThroughput),
	}
}
