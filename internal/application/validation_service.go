package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/logging"
)

// Dependencies are the outbound adapters the checkers run against.
type Dependencies struct {
	HTTPClient *http.Client
	Files      domain.ProjectFiles
	Env        domain.EnvSource
	Database   domain.DatabaseProbe
	Git        domain.GitInfo
}

// NewRegistry maps every section name to its checker.
func NewRegistry(deps Dependencies) map[string]Checker {
	return map[string]Checker{
		domain.SectionEnvConfig:   NewEnvService(deps.Env),
		domain.SectionSecurity:    NewSecurityService(deps.HTTPClient),
		domain.SectionPerformance: NewLoadService(httpDoer(deps.HTTPClient)),
		domain.SectionAPI:         NewAPIService(httpDoer(deps.HTTPClient)),
		domain.SectionDatabase:    NewDatabaseService(deps.Database),
		domain.SectionDeployment:  NewDeploymentService(deps.Files, deps.Git),
		domain.SectionLogging:     NewLoggingService(deps.Files),
		domain.SectionMonitoring:  NewMonitoringService(httpDoer(deps.HTTPClient)),
	}
}

// httpDoer keeps a nil client a nil interface so services fall back to
// their default client.
func httpDoer(c *http.Client) domain.HTTPDoer {
	if c == nil {
		return nil
	}
	return c
}

// ValidationService runs the enabled sections in order and builds the report.
type ValidationService struct {
	checkers map[string]Checker
	git      domain.GitInfo
	writer   domain.ReportWriter
	sink     domain.MetricsSink
	now      func() time.Time
}

// NewValidationService wires the orchestrator. git, writer and sink may be
// nil to skip the commit hash, report files and metrics respectively.
func NewValidationService(
	checkers map[string]Checker,
	git domain.GitInfo,
	writer domain.ReportWriter,
	sink domain.MetricsSink,
) *ValidationService {
	return &ValidationService{
		checkers: checkers,
		git:      git,
		writer:   writer,
		sink:     sink,
		now:      time.Now,
	}
}

// Run executes every section listed in cfg.ValidateSections, in the fixed
// section order, and summarizes the outcome.
func (s *ValidationService) Run(ctx context.Context, cfg domain.ValidationConfig) *domain.Report {
	log := logging.For("validation")
	start := s.now()

	var sections []domain.SectionResult
	for _, name := range domain.SectionOrder {
		if !cfg.Enabled(name) {
			continue
		}
		checker, ok := s.checkers[name]
		if !ok {
			log.WithField("section", name).Warn("no checker registered, skipping")
			continue
		}

		log.WithField("section", name).Info("running section")
		sec := s.runSection(ctx, checker, name, cfg)
		log.WithFields(map[string]any{
			"section": name,
			"passed":  sec.Passed,
			"fail":    sec.Count(domain.StatusFail),
			"warn":    sec.Count(domain.StatusWarning),
		}).Info("section finished")
		sections = append(sections, sec)
	}

	report := &domain.Report{
		Target:   cfg.APIBaseURL,
		Sections: sections,
		Summary:  domain.Tally(sections, start, s.now().Sub(start)),
	}
	if s.git != nil && s.git.IsGitRepo(cfg.ProjectRoot) {
		if hash, err := s.git.CommitHash(cfg.ProjectRoot); err == nil {
			report.CommitHash = hash
		}
	}

	log.WithFields(map[string]any{
		"total":            report.Summary.TotalTests,
		"failed":           report.Summary.TestsFailed,
		"production_ready": report.Summary.ProductionReady,
	}).Info("validation complete")
	return report
}

func (s *ValidationService) runSection(ctx context.Context, checker Checker, name string, cfg domain.ValidationConfig) domain.SectionResult {
	if timeout := sectionTimeout(name, cfg); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sec := checker.Check(ctx, cfg)
	sec.Name = name
	for i, t := range sec.Tests {
		sec.Tests[i] = domain.AttachRemediation(t)
	}
	return sec
}

// sectionTimeout bounds one section by test_timeout. The load test gets
// its configured duration on top.
func sectionTimeout(name string, cfg domain.ValidationConfig) time.Duration {
	if cfg.TestTimeout <= 0 {
		return 0
	}
	timeout := time.Duration(cfg.TestTimeout) * time.Second
	if name == domain.SectionPerformance {
		timeout += time.Duration(cfg.Performance.LoadTestDuration) * time.Second
	}
	return timeout
}

// Save writes the report files into dir and records the run metrics.
// It returns the written report paths.
func (s *ValidationService) Save(report *domain.Report, dir string) ([]string, error) {
	var paths []string
	if s.writer != nil {
		var err error
		paths, err = s.writer.Write(report, dir, report.Summary.StartTime)
		if err != nil {
			return nil, fmt.Errorf("writing report: %w", err)
		}
	}
	if s.sink != nil {
		if err := s.sink.Record(report); err != nil {
			return paths, fmt.Errorf("recording metrics: %w", err)
		}
	}
	return paths, nil
}
