package domain_test

import (
	"testing"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := domain.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, domain.SectionOrder, cfg.ValidateSections)
	assert.Equal(t, 50, cfg.Performance.LoadTestUsers)
	assert.Equal(t, domain.SeverityHigh, cfg.Security.ScanSeverity)
}

func TestDefaultConfig_SectionsAreACopy(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.ValidateSections[0] = "changed"
	assert.Equal(t, domain.SectionEnvConfig, domain.SectionOrder[0])
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.ValidateSections = []string{"env_config", "telemetry"}
	cfg.APIBaseURL = "localhost:8000"
	cfg.Performance.LoadTestUsers = 0
	cfg.Performance.P95Multiplier = 0.5
	cfg.Security.ScanSeverity = "extreme"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unknown section "telemetry"`)
	assert.Contains(t, msg, "api_base_url")
	assert.Contains(t, msg, "load_test_users")
	assert.Contains(t, msg, "p95_multiplier")
	assert.Contains(t, msg, "scan_severity")
}

func TestValidate_EndpointSpec(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.API.Endpoints = []domain.EndpointSpec{{Endpoint: "/health", Method: "FETCH"}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.endpoints[0]")
}

func TestValidate_SLAMustBePositive(t *testing.T) {
	for _, sla := range []int{0, -5} {
		cfg := domain.DefaultConfig()
		cfg.API.SLAMs = sla

		err := cfg.Validate()
		require.Error(t, err, "sla_ms %d", sla)
		assert.Contains(t, err.Error(), "api.sla_ms must be greater than 0")
	}

	cfg := domain.DefaultConfig()
	cfg.API.SLAMs = 1
	cfg.API.Endpoints = []domain.EndpointSpec{{Endpoint: "/health", Method: "GET"}}
	assert.NoError(t, cfg.Validate(), "per-endpoint sla_ms 0 falls back to api.sla_ms")
}

func TestEnabled(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.ValidateSections = []string{domain.SectionEnvConfig}
	assert.True(t, cfg.Enabled(domain.SectionEnvConfig))
	assert.False(t, cfg.Enabled(domain.SectionSecurity))
}

func TestEndpointSpec_WithDefaults(t *testing.T) {
	ep := domain.EndpointSpec{Endpoint: "/api/users", Method: "post"}.WithDefaults()
	assert.Equal(t, "POST", ep.Method)
	assert.Equal(t, 200, ep.ExpectedStatus)
	assert.Equal(t, "application/json", ep.ExpectedContentType)
}

func TestMasked(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.API.AuthToken = "very-secret-token"
	cfg.DBConnectionString = "postgresql://app:hunter2@db:5432/app"

	masked := cfg.Masked()

	assert.Equal(t, "********", masked.API.AuthToken)
	assert.Contains(t, masked.DBConnectionString, "app:xxxxx@db:5432")
	assert.NotContains(t, masked.DBConnectionString, "hunter2")
	assert.Equal(t, "very-secret-token", cfg.API.AuthToken)
}

func TestMasked_KeepsEmptyToken(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.API.AuthToken = ""
	assert.Empty(t, cfg.Masked().API.AuthToken)
}
