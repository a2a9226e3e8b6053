package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSection_WarningDoesNotFail(t *testing.T) {
	s := domain.NewSection("logging", []domain.CheckResult{
		domain.Pass(domain.CheckLogFiles, "Log files exist", "ok"),
		domain.Warn(domain.CheckLogDir, "Log directory exists", "missing"),
	}, nil)
	assert.True(t, s.Passed)

	s = domain.NewSection("logging", []domain.CheckResult{
		domain.Fail(domain.CheckLogPII, "Log PII data check", "found SSN"),
	}, nil)
	assert.False(t, s.Passed)
}

func TestNewSection_NilTestsSerializeAsEmptyList(t *testing.T) {
	s := domain.NewSection("monitoring", nil, nil)
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tests":[]`)
}

func TestFromPassed(t *testing.T) {
	r := domain.FromPassed(domain.PassedRecord{Name: "CI/CD configuration exists", Passed: false, Message: "none"})
	assert.Equal(t, domain.StatusFail, r.Status)

	r = domain.FromPassed(domain.PassedRecord{Name: "x", Passed: true})
	assert.Equal(t, domain.StatusPass, r.Status)
}

func TestTally(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sections := []domain.SectionResult{
		domain.NewSection("a", []domain.CheckResult{
			domain.Pass("", "1", ""),
			domain.Pass("", "2", ""),
			domain.Warn("", "3", ""),
		}, nil),
		domain.NewSection("b", []domain.CheckResult{
			domain.Fail("", "4", ""),
		}, nil),
	}

	s := domain.Tally(sections, start, 1500*time.Millisecond)
	assert.Equal(t, 4, s.TotalTests)
	assert.Equal(t, 2, s.TestsPassed)
	assert.Equal(t, 1, s.TestsFailed)
	assert.Equal(t, 1, s.TestsWarned)
	assert.InDelta(t, 50.0, s.PassPercentage, 1e-9)
	assert.InDelta(t, 1.5, s.DurationSeconds, 1e-9)
	assert.False(t, s.ProductionReady)
}

func TestTally_ProductionReadyIffNoFailures(t *testing.T) {
	sections := []domain.SectionResult{
		domain.NewSection("a", []domain.CheckResult{domain.Warn("", "w", "")}, nil),
	}
	s := domain.Tally(sections, time.Now(), 0)
	assert.True(t, s.ProductionReady)
	assert.Equal(t, s.TestsFailed == 0, s.ProductionReady)
}

func TestTally_EmptyRun(t *testing.T) {
	s := domain.Tally(nil, time.Now(), 0)
	assert.Zero(t, s.TotalTests)
	assert.Zero(t, s.PassPercentage)
	assert.True(t, s.ProductionReady)
}

func TestReport_MarshalJSONKeysSectionsByName(t *testing.T) {
	r := domain.Report{
		Target: "http://localhost:8000",
		Sections: []domain.SectionResult{
			domain.NewSection(domain.SectionEnvConfig, []domain.CheckResult{domain.Pass(domain.CheckEnvFile, "File existence check", "ok")}, nil),
			domain.NewSection(domain.SectionDatabase, nil, nil),
		},
		Summary: domain.Summary{TotalTests: 1, TestsPassed: 1, ProductionReady: true},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "env_config")
	assert.Contains(t, decoded, "database")
	assert.Contains(t, decoded, "summary")
	assert.NotContains(t, decoded, "commit_hash")

	var summary domain.Summary
	require.NoError(t, json.Unmarshal(decoded["summary"], &summary))
	assert.True(t, summary.ProductionReady)
}

func TestReport_Section(t *testing.T) {
	r := &domain.Report{Sections: []domain.SectionResult{domain.NewSection("security", nil, nil)}}
	_, ok := r.Section("security")
	assert.True(t, ok)
	_, ok = r.Section("monitoring")
	assert.False(t, ok)
}

func TestGradeFor(t *testing.T) {
	assert.Equal(t, "A", domain.GradeFor(90))
	assert.Equal(t, "B", domain.GradeFor(70))
	assert.Equal(t, "C", domain.GradeFor(50))
	assert.Equal(t, "F", domain.GradeFor(49.9))
}

func TestAttachRemediation(t *testing.T) {
	r := domain.AttachRemediation(domain.Fail(domain.CheckAPITracking, "Tracking ID support", "no echo"))
	assert.Equal(t, "Ensure 'X-Request-ID' is accepted and echoed in responses for distributed tracing.", r.Remediation)

	r = domain.AttachRemediation(domain.Warn("unknown.check", "Something", ""))
	assert.Equal(t, domain.DefaultRemediation, r.Remediation)

	r = domain.AttachRemediation(domain.Pass(domain.CheckAPITracking, "Tracking ID support", ""))
	assert.Empty(t, r.Remediation)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, domain.StatusWarning, domain.StatusFor(domain.FindingHeaderGradeB, domain.SeverityHigh))
	assert.Equal(t, domain.StatusPass, domain.StatusFor(domain.FindingHeaderGradeB, domain.SeverityMedium))
	assert.Equal(t, domain.StatusWarning, domain.StatusFor(domain.FindingMissingHeader, domain.SeverityLow))
	assert.Equal(t, domain.StatusFail, domain.StatusFor(domain.FindingMissingHeader, domain.SeverityHigh))
	assert.Equal(t, domain.StatusWarning, domain.StatusFor(domain.FindingCORSWildcard, domain.SeverityHigh))
	assert.Equal(t, domain.StatusFail, domain.StatusFor("bogus", domain.SeverityLow))
}

func TestSeverityPolicy_CoversEverySeverity(t *testing.T) {
	for finding, bySev := range domain.SeverityPolicy {
		for _, sev := range []domain.Severity{domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh} {
			_, ok := bySev[sev]
			assert.True(t, ok, "finding %s has no status for %s", finding, sev)
		}
	}
}

func TestEntryFor(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	sections := []domain.SectionResult{
		domain.NewSection(domain.SectionLogging, []domain.CheckResult{
			domain.Pass("", "a", "ok"),
			domain.Fail("", "b", "bad"),
		}, nil),
	}
	r := &domain.Report{Target: "http://svc", CommitHash: "abc", Sections: sections, Summary: domain.Tally(sections, start, time.Second)}

	e := domain.EntryFor(r)

	assert.Equal(t, "2026-03-01T08:30:00Z", e.Timestamp)
	assert.Equal(t, "abc", e.CommitHash)
	assert.Equal(t, "http://svc", e.Target)
	assert.InDelta(t, 50.0, e.PassPercentage, 0.001)
	assert.Equal(t, "C", e.Grade)
	assert.Equal(t, 1, e.TestsFailed)
	assert.False(t, e.ProductionReady)
}
