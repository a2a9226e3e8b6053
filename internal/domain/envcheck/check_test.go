package envcheck_test

import (
	"testing"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/envcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const strongSecret = "k8Jd9sLq2Wm4Zx7Vb1Nc5Tr3Yh6Gf0Pa"

func validVars() map[string]string {
	return map[string]string{
		"ENVIRONMENT":             "staging",
		"DEBUG":                   "false",
		"LOG_LEVEL":               "INFO",
		"PLATFORM_NAME":           "acme",
		"PLATFORM_VERSION":        "1.2.0",
		"DATABASE_URL":            "postgresql://app:pw@db:5432/app",
		"DATABASE_ENCRYPTION_KEY": strongSecret,
		"JWT_SECRET_KEY":          strongSecret,
		"JWT_ALGORITHM":           "HS256",
		"JWT_EXPIRATION_HOURS":    "24",
		"ENCRYPTION_KEY":          strongSecret,
		"SSL_ENABLED":             "true",
	}
}

var coreSections = []string{
	"CORE PLATFORM CONFIGURATION",
	"DATABASE CONFIGURATION",
	"JWT AUTHENTICATION & SECURITY",
}

func find(t *testing.T, results []domain.CheckResult, name string) domain.CheckResult {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	require.Failf(t, "result not found", "no result named %q", name)
	return domain.CheckResult{}
}

func TestCheck_AllValid(t *testing.T) {
	content := "# CORE PLATFORM CONFIGURATION\n# DATABASE CONFIGURATION\n# JWT AUTHENTICATION & SECURITY\n"
	results := envcheck.Check(content, validVars(), envcheck.DefaultSections(), coreSections)

	for _, r := range results {
		assert.Equal(t, domain.StatusPass, r.Status, "%s: %s", r.Name, r.Message)
	}
	// 3 section headers + 5 + 2 + 5 variables
	assert.Len(t, results, 15)
}

func TestCheck_MissingRequiredVariable(t *testing.T) {
	vars := validVars()
	delete(vars, "JWT_SECRET_KEY")

	results := envcheck.Check("", vars, envcheck.DefaultSections(), coreSections)
	r := find(t, results, "Variable presence: JWT_SECRET_KEY")
	assert.Equal(t, domain.StatusFail, r.Status)
	assert.Equal(t, "Mandatory variable JWT_SECRET_KEY is missing", r.Message)
}

func TestCheck_MissingSectionHeaderWarns(t *testing.T) {
	results := envcheck.Check("", validVars(), envcheck.DefaultSections(), coreSections)
	r := find(t, results, "Section check: DATABASE CONFIGURATION")
	assert.Equal(t, domain.StatusWarning, r.Status)
}

func TestCheck_OptionalMissingPasses(t *testing.T) {
	vars := validVars()
	delete(vars, "SSL_ENABLED")

	results := envcheck.Check("", vars, envcheck.DefaultSections(), coreSections)
	r := find(t, results, "Variable presence: SSL_ENABLED")
	assert.Equal(t, domain.StatusPass, r.Status)
}

func TestCheck_ProductionRejectsSQLite(t *testing.T) {
	vars := validVars()
	vars["ENVIRONMENT"] = "production"
	vars["DATABASE_URL"] = "sqlite:///data/app.db"

	results := envcheck.Check("", vars, envcheck.DefaultSections(), coreSections)
	r := find(t, results, "Variable validation: DATABASE_URL")
	assert.Equal(t, domain.StatusFail, r.Status)
	assert.Contains(t, r.Message, "SQLite is not allowed in production")
}

func TestCheck_ProductionRequiresSSL(t *testing.T) {
	vars := validVars()
	vars["ENVIRONMENT"] = "Production"
	vars["SSL_ENABLED"] = "false"

	results := envcheck.Check("", vars, envcheck.DefaultSections(), coreSections)
	r := find(t, results, "Variable validation: SSL_ENABLED")
	assert.Equal(t, domain.StatusFail, r.Status)
	assert.Equal(t, "SSL_ENABLED invalid: In production, SSL_ENABLED must be true", r.Message)
}

func TestCheck_ScopeLimitsSections(t *testing.T) {
	results := envcheck.Check("", validVars(), envcheck.DefaultSections(), []string{"DATABASE CONFIGURATION"})
	assert.Len(t, results, 3)
}

func TestCheck_EmptyScopeMeansAllSections(t *testing.T) {
	results := envcheck.Check("", validVars(), envcheck.DefaultSections(), nil)
	sections := 0
	for _, r := range results {
		if r.Check == domain.CheckEnvSection {
			sections++
		}
	}
	assert.Equal(t, 6, sections)
}

func TestCheck_Deterministic(t *testing.T) {
	content := "# CORE PLATFORM CONFIGURATION\n"
	a := envcheck.Check(content, validVars(), envcheck.DefaultSections(), nil)
	b := envcheck.Check(content, validVars(), envcheck.DefaultSections(), nil)
	assert.Equal(t, a, b)
}

func TestValidateValue(t *testing.T) {
	tests := []struct {
		name  string
		value string
		rule  envcheck.Rule
		ok    bool
		msg   string
	}{
		{"bool yes", "YES", envcheck.Rule{Type: "bool"}, true, ""},
		{"bool bad", "maybe", envcheck.Rule{Type: "bool"}, false, "Must be a boolean value, got 'maybe'"},
		{"int not number", "abc", envcheck.Rule{Type: "int"}, false, "Must be an integer, got 'abc'"},
		{"port too high", "70000", envcheck.DefaultSections()[3].Rules[1], false, "Value 70000 is above maximum 65535"},
		{"url", "redis://cache:6379", envcheck.Rule{Type: "url"}, true, ""},
		{"url missing scheme", "cache:6379", envcheck.Rule{Type: "url"}, false, "Must be a valid connection URL, got 'cache:6379'"},
		{"email", "ops@acme.io", envcheck.Rule{Type: "email"}, true, ""},
		{"email no dot", "ops@acme", envcheck.Rule{Type: "email"}, false, "Must be a valid email, got 'ops@acme'"},
		{"secret placeholder", "REPLACE_ME_with_a_long_random_value", envcheck.Rule{Type: "secret"}, false, "Value appears to be a placeholder"},
		{"secret short", "Ab3", envcheck.Rule{Type: "secret", MinLen: 32}, false, "Secret is too short (min 32 chars)"},
		{"allowed exact", "HS256", envcheck.Rule{Type: "str", Allowed: []string{"HS256", "RS256"}}, true, ""},
		{"allowed case sensitive", "hs256", envcheck.Rule{Type: "str", Allowed: []string{"HS256", "RS256"}}, false, "Value 'hs256' not in allowed list: HS256, RS256"},
		{"list", "https://a.io, https://b.io", envcheck.Rule{Type: "list"}, true, ""},
		{"list empty items", " , ", envcheck.Rule{Type: "list"}, false, "Must be a comma-separated list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, msg := envcheck.ValidateValue(tt.value, tt.rule)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Equal(t, tt.msg, msg)
			}
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, envcheck.IsPlaceholder("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
	assert.True(t, envcheck.IsPlaceholder("my-Example-key-1234567890"))
	assert.False(t, envcheck.IsPlaceholder(strongSecret))
}
