package domain

import "time"

// RunEntry is one line of the run history kept next to the reports.
type RunEntry struct {
	Timestamp       string  `json:"timestamp"`
	CommitHash      string  `json:"commit_hash,omitempty"`
	Target          string  `json:"target"`
	PassPercentage  float64 `json:"pass_percentage"`
	Grade           string  `json:"grade"`
	TestsFailed     int     `json:"tests_failed"`
	ProductionReady bool    `json:"production_ready"`
}

// EntryFor condenses a report into a history entry.
func EntryFor(r *Report) RunEntry {
	return RunEntry{
		Timestamp:       r.Summary.StartTime.UTC().Format(time.RFC3339),
		CommitHash:      r.CommitHash,
		Target:          r.Target,
		PassPercentage:  r.Summary.PassPercentage,
		Grade:           GradeFor(r.Summary.PassPercentage),
		TestsFailed:     r.Summary.TestsFailed,
		ProductionReady: r.Summary.ProductionReady,
	}
}
