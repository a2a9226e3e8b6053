package domain

import "fmt"

// Severity is the configured strictness of the security scan.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var validSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh}

// ParseSeverity accepts low, medium or high.
func ParseSeverity(s string) (Severity, error) {
	for _, v := range validSeverities {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q (valid: low, medium, high)", s)
}

// Finding names a kind of non-fatal security observation whose status
// depends on the configured severity.
type Finding string

const (
	FindingHeaderGradeB  Finding = "header_grade_b"
	FindingHeaderGradeC  Finding = "header_grade_c"
	FindingHeaderGradeF  Finding = "header_grade_f"
	FindingMissingHeader Finding = "missing_critical_header"
	FindingCORSWildcard  Finding = "cors_wildcard"
	FindingCookieFlags   Finding = "cookie_flags"
	FindingTLSIssues     Finding = "tls_issues"
)

// SeverityPolicy is the single table mapping a finding to a status per severity.
var SeverityPolicy = map[Finding]map[Severity]Status{
	FindingHeaderGradeB: {
		SeverityLow:    StatusPass,
		SeverityMedium: StatusPass,
		SeverityHigh:   StatusWarning,
	},
	FindingHeaderGradeC: {
		SeverityLow:    StatusWarning,
		SeverityMedium: StatusWarning,
		SeverityHigh:   StatusWarning,
	},
	FindingHeaderGradeF: {
		SeverityLow:    StatusFail,
		SeverityMedium: StatusFail,
		SeverityHigh:   StatusFail,
	},
	FindingMissingHeader: {
		SeverityLow:    StatusWarning,
		SeverityMedium: StatusFail,
		SeverityHigh:   StatusFail,
	},
	FindingCORSWildcard: {
		SeverityLow:    StatusWarning,
		SeverityMedium: StatusWarning,
		SeverityHigh:   StatusWarning,
	},
	FindingCookieFlags: {
		SeverityLow:    StatusWarning,
		SeverityMedium: StatusWarning,
		SeverityHigh:   StatusWarning,
	},
	FindingTLSIssues: {
		SeverityLow:    StatusFail,
		SeverityMedium: StatusFail,
		SeverityHigh:   StatusFail,
	},
}

// StatusFor looks up the status of a finding. Unknown combinations fail.
func StatusFor(f Finding, sev Severity) Status {
	if bySev, ok := SeverityPolicy[f]; ok {
		if st, ok := bySev[sev]; ok {
			return st
		}
	}
	return StatusFail
}
