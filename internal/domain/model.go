package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the outcome of a single check.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarning Status = "WARNING"
)

// StatusIf returns PASS when ok holds and otherwise the given status.
func StatusIf(ok bool, otherwise Status) Status {
	if ok {
		return StatusPass
	}
	return otherwise
}

// CheckResult is one evaluated test inside a section.
type CheckResult struct {
	Name        string  `json:"name"`
	Status      Status  `json:"status"`
	Message     string  `json:"message"`
	Remediation string  `json:"remediation,omitempty"`
	Check       CheckID `json:"check_id,omitempty"`
}

func NewResult(id CheckID, name string, status Status, format string, args ...any) CheckResult {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return CheckResult{Name: name, Status: status, Message: msg, Check: id}
}

func Pass(id CheckID, name, format string, args ...any) CheckResult {
	return NewResult(id, name, StatusPass, format, args...)
}

func Fail(id CheckID, name, format string, args ...any) CheckResult {
	return NewResult(id, name, StatusFail, format, args...)
}

func Warn(id CheckID, name, format string, args ...any) CheckResult {
	return NewResult(id, name, StatusWarning, format, args...)
}

// PassedRecord is the boolean result shape some checkers produce.
type PassedRecord struct {
	Name    string  `json:"name"`
	Passed  bool    `json:"passed"`
	Message string  `json:"message"`
	Check   CheckID `json:"check_id,omitempty"`
}

// FromPassed converts a boolean record to a CheckResult: true is PASS, false is FAIL.
func FromPassed(r PassedRecord) CheckResult {
	return CheckResult{
		Name:    r.Name,
		Status:  StatusIf(r.Passed, StatusFail),
		Message: r.Message,
		Check:   r.Check,
	}
}

// SectionResult groups the tests of one validation area.
type SectionResult struct {
	Name    string        `json:"name"`
	Passed  bool          `json:"passed"`
	Tests   []CheckResult `json:"tests"`
	Details any           `json:"details,omitempty"`
}

// NewSection builds a section whose Passed flag is true iff no test failed.
func NewSection(name string, tests []CheckResult, details any) SectionResult {
	if tests == nil {
		tests = []CheckResult{}
	}
	return SectionResult{
		Name:    name,
		Passed:  !hasFailure(tests),
		Tests:   tests,
		Details: details,
	}
}

// Count returns how many tests in the section have the given status.
func (s SectionResult) Count(st Status) int {
	n := 0
	for _, t := range s.Tests {
		if t.Status == st {
			n++
		}
	}
	return n
}

// Find returns the first test with the given name.
func (s SectionResult) Find(name string) (CheckResult, bool) {
	for _, t := range s.Tests {
		if t.Name == name {
			return t, true
		}
	}
	return CheckResult{}, false
}

func hasFailure(tests []CheckResult) bool {
	for _, t := range tests {
		if t.Status == StatusFail {
			return true
		}
	}
	return false
}

// Report is the outcome of a full validation run.
type Report struct {
	Target     string          `json:"target"`
	CommitHash string          `json:"commit_hash,omitempty"`
	Sections   []SectionResult `json:"-"`
	Summary    Summary         `json:"summary"`
}

// Section returns the named section if it ran.
func (r *Report) Section(name string) (SectionResult, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return SectionResult{}, false
}

// MarshalJSON writes sections keyed by name, in run order, followed by the summary.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		val, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
		return nil
	}

	if err := write("target", r.Target); err != nil {
		return nil, err
	}
	if r.CommitHash != "" {
		if err := write("commit_hash", r.CommitHash); err != nil {
			return nil, err
		}
	}
	for _, s := range r.Sections {
		if err := write(s.Name, s); err != nil {
			return nil, err
		}
	}
	if err := write("summary", r.Summary); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Summary aggregates the counts of a run.
type Summary struct {
	StartTime       time.Time `json:"start_time"`
	DurationSeconds float64   `json:"duration_seconds"`
	TestsPassed     int       `json:"tests_passed"`
	TestsFailed     int       `json:"tests_failed"`
	TestsWarned     int       `json:"tests_warned"`
	TotalTests      int       `json:"total_tests"`
	PassPercentage  float64   `json:"pass_percentage"`
	ProductionReady bool      `json:"production_ready"`
}

// Tally counts every test across sections. A run is production ready iff
// nothing failed; the pass percentage of an empty run is zero.
func Tally(sections []SectionResult, start time.Time, elapsed time.Duration) Summary {
	s := Summary{
		StartTime:       start,
		DurationSeconds: elapsed.Seconds(),
	}
	for _, sec := range sections {
		for _, t := range sec.Tests {
			s.TotalTests++
			switch t.Status {
			case StatusPass:
				s.TestsPassed++
			case StatusFail:
				s.TestsFailed++
			case StatusWarning:
				s.TestsWarned++
			}
		}
	}
	if s.TotalTests > 0 {
		s.PassPercentage = float64(s.TestsPassed) / float64(s.TotalTests) * 100
	}
	s.ProductionReady = s.TestsFailed == 0
	return s
}

// GradeFor maps a 0-100 percentage to a letter grade.
func GradeFor(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 70:
		return "B"
	case pct >= 50:
		return "C"
	default:
		return "F"
	}
}

// EndpointResult is the outcome of validating one API endpoint contract.
type EndpointResult struct {
	Endpoint       string        `json:"endpoint"`
	Method         string        `json:"method"`
	URL            string        `json:"url"`
	StatusCode     int           `json:"status_code,omitempty"`
	ResponseTimeMs float64       `json:"response_time_ms,omitempty"`
	Passed         bool          `json:"passed"`
	Tests          []CheckResult `json:"tests"`
	Error          string        `json:"error,omitempty"`
}

// APIDetails is the details payload of the api_endpoints section.
type APIDetails struct {
	Total           int              `json:"total"`
	PassedEndpoints int              `json:"passed_endpoints"`
	Endpoints       []EndpointResult `json:"endpoints"`
}
