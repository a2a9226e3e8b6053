package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/openkraft/prodcheck/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is read when no explicit path is given.
const DefaultFileName = "prodcheck.yaml"

// EnvPrefix namespaces environment overrides, e.g. PRODCHECK_API_BASE_URL.
const EnvPrefix = "PRODCHECK"

// YAMLLoader implements domain.ConfigLoader. JSON files parse too, since
// YAML is a superset.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads the config file at path, overlays PRODCHECK_* environment
// variables and validates the result. A missing file yields the defaults.
func (l *YAMLLoader) Load(path string) (domain.ValidationConfig, error) {
	if path == "" {
		path = DefaultFileName
	}

	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return domain.ValidationConfig{}, fmt.Errorf("reading %s: %w", path, err)
	default:
		// Unmarshal over the defaults so omitted keys keep their default values.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.ValidationConfig{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return domain.ValidationConfig{}, err
	}

	if len(cfg.API.Endpoints) == 0 && cfg.API.EndpointsFile != "" {
		epPath := cfg.API.EndpointsFile
		if !filepath.IsAbs(epPath) {
			epPath = filepath.Join(filepath.Dir(path), epPath)
		}
		endpoints, err := LoadEndpoints(epPath)
		if err != nil {
			return domain.ValidationConfig{}, err
		}
		cfg.API.Endpoints = endpoints
	}

	if err := cfg.Validate(); err != nil {
		return domain.ValidationConfig{}, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

type envOverrides struct {
	EnvFilePath        *string  `envconfig:"ENV_FILE_PATH"`
	APIBaseURL         *string  `envconfig:"API_BASE_URL"`
	DBConnectionString *string  `envconfig:"DB_CONNECTION_STRING"`
	Sections           []string `envconfig:"SECTIONS"`
	LogDir             *string  `envconfig:"LOG_DIR"`
	ProjectRoot        *string  `envconfig:"PROJECT_ROOT"`
	ReportPath         *string  `envconfig:"REPORT_PATH"`
	LoadTestUsers      *int     `envconfig:"LOAD_TEST_USERS"`
	LoadTestDuration   *int     `envconfig:"LOAD_TEST_DURATION"`
	MaxResponseTime    *int     `envconfig:"MAX_RESPONSE_TIME"`
	ScanSeverity       *string  `envconfig:"SCAN_SEVERITY"`
	AuthToken          *string  `envconfig:"API_AUTH_TOKEN"`
}

func applyEnv(cfg *domain.ValidationConfig) error {
	var o envOverrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("reading %s_* environment: %w", EnvPrefix, err)
	}

	setString(&cfg.EnvFilePath, o.EnvFilePath)
	setString(&cfg.APIBaseURL, o.APIBaseURL)
	setString(&cfg.DBConnectionString, o.DBConnectionString)
	setString(&cfg.LogDir, o.LogDir)
	setString(&cfg.ProjectRoot, o.ProjectRoot)
	setString(&cfg.ReportPath, o.ReportPath)
	setString(&cfg.API.AuthToken, o.AuthToken)
	setInt(&cfg.Performance.LoadTestUsers, o.LoadTestUsers)
	setInt(&cfg.Performance.LoadTestDuration, o.LoadTestDuration)
	setInt(&cfg.Performance.MaxResponseTime, o.MaxResponseTime)
	if o.ScanSeverity != nil {
		cfg.Security.ScanSeverity = domain.Severity(*o.ScanSeverity)
	}
	if len(o.Sections) > 0 {
		cfg.ValidateSections = o.Sections
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// LoadEndpoints reads endpoint contracts from a JSON or YAML file holding
// either a list or an object with an "endpoints" key.
func LoadEndpoints(path string) ([]domain.EndpointSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading endpoint config: %w", err)
	}

	var list []domain.EndpointSpec
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Endpoints []domain.EndpointSpec `yaml:"endpoints"`
	}
	if err := yaml.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parsing endpoint config %s: %w", path, err)
	}
	if wrapped.Endpoints == nil {
		return nil, fmt.Errorf("invalid endpoint config %s: expected list or mapping with 'endpoints' key", path)
	}
	return wrapped.Endpoints, nil
}
