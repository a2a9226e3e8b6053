package application

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/envcheck"
	"github.com/openkraft/prodcheck/internal/logging"
)

// EnvService validates the dotenv file against the variable rule table.
type EnvService struct {
	source   domain.EnvSource
	sections []envcheck.Section
}

func NewEnvService(source domain.EnvSource) *EnvService {
	return &EnvService{source: source, sections: envcheck.DefaultSections()}
}

func (s *EnvService) Check(_ context.Context, cfg domain.ValidationConfig) domain.SectionResult {
	return domain.NewSection(domain.SectionEnvConfig, s.Validate(cfg.EnvFilePath, cfg.Env.RequiredSections), nil)
}

// Validate checks one env file. An empty required list checks every section.
func (s *EnvService) Validate(path string, required []string) []domain.CheckResult {
	log := logging.For("env").WithField("file", path)
	log.Info("validating environment file")

	f, err := s.source.Read(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return []domain.CheckResult{
			domain.Fail(domain.CheckEnvFile, "File existence check", "Environment file %s does not exist", path),
		}
	case err != nil:
		log.WithError(err).Warn("env file unreadable")
		return []domain.CheckResult{
			domain.Fail(domain.CheckEnvFile, "File existence check", "Environment file %s could not be read: %v", path, err),
		}
	case strings.TrimSpace(f.Content) == "":
		return []domain.CheckResult{
			domain.Fail(domain.CheckEnvFile, "File existence check", "Environment file %s is empty", path),
		}
	}

	return envcheck.Check(f.Content, f.Vars, s.sections, required)
}
