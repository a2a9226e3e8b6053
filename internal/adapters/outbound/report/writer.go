// Package report persists finished validation reports as JSON and HTML.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/openkraft/prodcheck/internal/domain"
)

// TimestampLayout names report files, e.g. validation_report_20260102_150405.json.
const TimestampLayout = "20060102_150405"

// Writer implements domain.ReportWriter.
type Writer struct{}

func New() *Writer { return &Writer{} }

// Write stores the report under dir as JSON and HTML and returns both paths.
func (w *Writer) Write(r *domain.Report, dir string, at time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	base := filepath.Join(dir, "validation_report_"+at.Format(TimestampLayout))

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	jsonPath := base + ".json"
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", jsonPath, err)
	}

	htmlPath := base + ".html"
	f, err := os.Create(htmlPath)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", htmlPath, err)
	}
	defer f.Close()
	if err := RenderHTML(f, r); err != nil {
		return nil, err
	}

	return []string{jsonPath, htmlPath}, nil
}
