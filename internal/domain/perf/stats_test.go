package perf_test

import (
	"testing"
	"time"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/perf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	assert.InDelta(t, 25.0, perf.Percentile([]float64{10, 20, 30, 40}, 50), 1e-9)
	assert.InDelta(t, 5.0, perf.Percentile([]float64{5}, 99), 1e-9)
	assert.Equal(t, 0.0, perf.Percentile(nil, 95))
	assert.InDelta(t, 40.0, perf.Percentile([]float64{40, 10, 30, 20}, 100), 1e-9)
}

func TestStdDev(t *testing.T) {
	assert.Equal(t, 0.0, perf.StdDev([]float64{7}))
	assert.InDelta(t, 12.9099, perf.StdDev([]float64{10, 20, 30, 40}), 1e-4)
}

func TestMerge_SumsWorkers(t *testing.T) {
	var a, b perf.Sample
	a.Record(10, true, "")
	a.Record(20, false, "status 500")
	b.Record(30, true, "")
	b.Record(40, true, "")

	m := perf.Merge([]perf.Sample{a, b}, 2*time.Second)

	assert.Equal(t, a.Requests+b.Requests, m.Requests)
	assert.Equal(t, m.Requests, m.Successful+m.Failed)
	assert.Equal(t, 3, m.Successful)
	assert.InDelta(t, 75.0, m.SuccessRate, 1e-9)
	assert.InDelta(t, 2.0, m.Throughput, 1e-9)
	assert.Equal(t, 10.0, m.Min)
	assert.Equal(t, 40.0, m.Max)
	assert.InDelta(t, 25.0, m.Avg, 1e-9)
	assert.InDelta(t, 25.0, m.Median, 1e-9)
	assert.Equal(t, []string{"status 500"}, m.Errors)
}

func TestMerge_Empty(t *testing.T) {
	m := perf.Merge(nil, time.Second)
	assert.Zero(t, m.Requests)
	assert.Zero(t, m.SuccessRate)
	assert.Zero(t, m.P95)
}

func TestMerge_CapsErrors(t *testing.T) {
	var s perf.Sample
	for i := 0; i < 50; i++ {
		s.Record(1, false, "boom")
	}
	m := perf.Merge([]perf.Sample{s, s}, time.Second)
	assert.Len(t, m.Errors, perf.MaxSampledErrors)
	assert.Equal(t, 100, m.Failed)
}

func TestEvaluate(t *testing.T) {
	m := perf.Metrics{SuccessRate: 99, Avg: 120, P95: 700, Throughput: 30}
	results := perf.Evaluate(m, perf.Limits{Users: 50, MaxResponseTime: 500, P95Multiplier: 1.5})
	require.Len(t, results, 4)

	assert.Equal(t, domain.StatusPass, results[0].Status)
	assert.Equal(t, domain.StatusPass, results[1].Status)
	assert.Equal(t, "Average response time: 120.0 ms (Max allowed: 500 ms)", results[1].Message)
	assert.Equal(t, domain.StatusPass, results[2].Status, "700 <= 750")
	assert.Equal(t, domain.StatusPass, results[3].Status, "30 >= 25")
}

func TestEvaluate_TunableP95(t *testing.T) {
	m := perf.Metrics{SuccessRate: 100, Avg: 100, P95: 700, Throughput: 100}
	results := perf.Evaluate(m, perf.Limits{Users: 1, MaxResponseTime: 500, P95Multiplier: 1.2})
	assert.Equal(t, domain.StatusFail, results[2].Status)
}

func TestEvaluate_LowSuccessRateFails(t *testing.T) {
	results := perf.Evaluate(perf.Metrics{SuccessRate: 94.9}, perf.Limits{Users: 0, MaxResponseTime: 500, P95Multiplier: 1.5})
	assert.Equal(t, domain.StatusFail, results[0].Status)
}
