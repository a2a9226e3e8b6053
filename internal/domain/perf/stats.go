// Package perf aggregates load test samples and evaluates them against limits.
package perf

import (
	"math"
	"sort"
	"time"
)

// MaxSampledErrors bounds the error messages kept in Metrics.
const MaxSampledErrors = 10

// Sample is the private accumulator of one worker.
type Sample struct {
	Requests      int
	Successful    int
	Failed        int
	ResponseTimes []float64 // milliseconds, successful and failed alike
	Errors        []string
}

// Record adds one request outcome.
func (s *Sample) Record(ms float64, ok bool, errMsg string) {
	s.Requests++
	s.ResponseTimes = append(s.ResponseTimes, ms)
	if ok {
		s.Successful++
		return
	}
	s.Failed++
	if errMsg != "" && len(s.Errors) < MaxSampledErrors {
		s.Errors = append(s.Errors, errMsg)
	}
}

// Metrics summarises a whole load test run.
type Metrics struct {
	Requests      int       `json:"requests"`
	Successful    int       `json:"successful"`
	Failed        int       `json:"failed"`
	ResponseTimes []float64 `json:"-"`
	Min           float64   `json:"min_response_time"`
	Max           float64   `json:"max_response_time"`
	Avg           float64   `json:"avg_response_time"`
	Median        float64   `json:"median_response_time"`
	P95           float64   `json:"p95_response_time"`
	P99           float64   `json:"p99_response_time"`
	StdDev        float64   `json:"std_dev_response_time"`
	Throughput    float64   `json:"throughput"`
	SuccessRate   float64   `json:"success_rate"`
	Errors        []string  `json:"errors,omitempty"`
	Endpoints     []string  `json:"endpoints,omitempty"`
}

// Merge folds worker samples into run metrics. Throughput is requests over
// the configured duration.
func Merge(samples []Sample, duration time.Duration) Metrics {
	var m Metrics
	for _, s := range samples {
		m.Requests += s.Requests
		m.Successful += s.Successful
		m.Failed += s.Failed
		m.ResponseTimes = append(m.ResponseTimes, s.ResponseTimes...)
		for _, e := range s.Errors {
			if len(m.Errors) < MaxSampledErrors {
				m.Errors = append(m.Errors, e)
			}
		}
	}

	if m.Requests > 0 {
		m.SuccessRate = float64(m.Successful) / float64(m.Requests) * 100
	}
	if duration > 0 {
		m.Throughput = float64(m.Requests) / duration.Seconds()
	}

	if len(m.ResponseTimes) == 0 {
		return m
	}
	sorted := append([]float64(nil), m.ResponseTimes...)
	sort.Float64s(sorted)
	m.Min = sorted[0]
	m.Max = sorted[len(sorted)-1]
	m.Avg = Mean(sorted)
	m.Median = percentileSorted(sorted, 50)
	m.P95 = percentileSorted(sorted, 95)
	m.P99 = percentileSorted(sorted, 99)
	m.StdDev = StdDev(sorted)
	return m
}

// Percentile returns the p-th percentile using linear interpolation between
// closest ranks. An empty input yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev is the sample standard deviation; fewer than two values yield 0.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
