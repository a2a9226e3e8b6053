package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/secrets"
	"github.com/openkraft/prodcheck/internal/logging"
)

// LoggingConfigFiles are looked up in the project root in order.
var LoggingConfigFiles = []string{"logging.json", "logging.yaml", "logging.conf"}

const (
	piiScanBytes   = 10000
	firstLineBytes = 64 * 1024
)

// LoggingService checks the logging configuration and the log files a
// service has produced.
type LoggingService struct {
	files domain.ProjectFiles
}

func NewLoggingService(files domain.ProjectFiles) *LoggingService {
	return &LoggingService{files: files}
}

func (s *LoggingService) Check(_ context.Context, cfg domain.ValidationConfig) domain.SectionResult {
	return domain.NewSection(domain.SectionLogging, s.Validate(cfg.ProjectRoot, cfg.LogDir, cfg.Logging.ConfigFile), nil)
}

// Validate inspects the logging config and logDir. Relative paths resolve
// against root.
func (s *LoggingService) Validate(root, logDir, configFile string) []domain.CheckResult {
	log := logging.For("logging").WithFields(map[string]any{"root": root, "log_dir": logDir})
	log.Info("validating logging")

	results := s.configResults(root, configFile)

	dir := resolve(root, logDir)
	if !s.files.IsDir(dir) {
		return append(results, domain.Warn(domain.CheckLogDir, "Log directory exists", "Log directory '%s' not found", logDir))
	}

	entries, err := s.files.ReadDir(dir)
	if err != nil {
		log.WithError(err).Warn("log directory unreadable")
		return append(results, domain.Warn(domain.CheckLogDir, "Log directory exists", "Log directory '%s' could not be read: %v", logDir, err))
	}

	var logs []domain.FileEntry
	for _, e := range entries {
		if !e.IsDir && strings.HasSuffix(e.Name, ".log") {
			logs = append(logs, e)
		}
	}
	if len(logs) == 0 {
		return append(results, domain.Pass(domain.CheckLogFiles, "Log files exist", "No log files found in directory (clean state)"))
	}

	if r, ok := s.formatResult(dir, newest(logs)); ok {
		results = append(results, r)
	}
	return append(results, s.piiResult(dir, logs))
}

func (s *LoggingService) configResults(root, configFile string) []domain.CheckResult {
	candidates := LoggingConfigFiles
	if configFile != "" {
		candidates = []string{configFile}
	}

	for _, name := range candidates {
		p := resolve(root, name)
		if !s.files.Exists(p) {
			continue
		}

		results := []domain.CheckResult{
			domain.NewResult(domain.CheckLogConfig, "JSON logging configuration",
				domain.StatusIf(strings.HasSuffix(name, ".json"), domain.StatusWarning),
				"Using %s for logging configuration", name),
		}

		data, err := s.files.ReadFile(p)
		if err != nil {
			return results
		}
		// Case-sensitive: "debug" in a handler name is not a level.
		content := string(data)
		if strings.Contains(content, "DEBUG") && !strings.Contains(content, "LOG_LEVEL") {
			results = append(results, domain.Warn(domain.CheckLogLevel, "Production log level", "DEBUG log level detected in configuration"))
		} else {
			results = append(results, domain.Pass(domain.CheckLogLevel, "Production log level", "No hardcoded DEBUG level in configuration"))
		}
		return results
	}

	return []domain.CheckResult{
		domain.Warn(domain.CheckLogConfig, "Logging configuration exists", "No dedicated logging configuration file found"),
	}
}

// formatResult checks whether the first line of the log file is JSON.
func (s *LoggingService) formatResult(dir string, f domain.FileEntry) (domain.CheckResult, bool) {
	head, err := s.files.ReadHead(filepath.Join(dir, f.Name), firstLineBytes)
	if err != nil {
		return domain.CheckResult{}, false
	}
	first, _, _ := bytes.Cut(head, []byte("\n"))
	first = bytes.TrimSpace(first)

	if len(first) > 0 && json.Valid(first) {
		return domain.Pass(domain.CheckLogJSON, "JSON log format verification", "Log file '%s' is in JSON format", f.Name), true
	}
	return domain.Warn(domain.CheckLogJSON, "JSON log format verification",
		"Log file '%s' is NOT in JSON format (recommended for production)", f.Name), true
}

func (s *LoggingService) piiResult(dir string, logs []domain.FileEntry) domain.CheckResult {
	var issues []string
	for _, f := range logs {
		head, err := s.files.ReadHead(filepath.Join(dir, f.Name), piiScanBytes)
		if err != nil {
			continue
		}
		for _, name := range secrets.Scan(string(head), secrets.LogContent) {
			issues = append(issues, fmt.Sprintf("Potential %s found in '%s'", name, f.Name))
		}
	}
	if len(issues) == 0 {
		return domain.Pass(domain.CheckLogPII, "Log PII data check", "No PII or secrets found in logs")
	}
	return domain.Fail(domain.CheckLogPII, "Log PII data check", "Issues found: %s", strings.Join(issues, ", "))
}

func newest(files []domain.FileEntry) domain.FileEntry {
	latest := files[0]
	for _, f := range files[1:] {
		if f.ModTime.After(latest.ModTime) {
			latest = f
		}
	}
	return latest
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) || root == "" {
		return p
	}
	return filepath.Join(root, p)
}
