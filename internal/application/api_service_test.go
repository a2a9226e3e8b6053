package application_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/openkraft/prodcheck/internal/application"
	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/testutil/target"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiConfig(url string) domain.ValidationConfig {
	cfg := domain.DefaultConfig()
	cfg.APIBaseURL = url
	return cfg
}

func TestAPI_DefaultsToHealth(t *testing.T) {
	srv := target.Start(t, target.Options{EchoRequestID: true})
	sec := application.NewAPIService(srv.Client()).Check(context.Background(), apiConfig(srv.URL))

	details, ok := sec.Details.(domain.APIDetails)
	require.True(t, ok)
	assert.Equal(t, 1, details.Total)
	assert.Equal(t, 1, details.PassedEndpoints)
	require.Len(t, details.Endpoints, 1)

	ep := details.Endpoints[0]
	assert.Equal(t, "/health", ep.Endpoint)
	assert.Equal(t, http.MethodGet, ep.Method)
	assert.Equal(t, http.StatusOK, ep.StatusCode)
	assert.True(t, ep.Passed)
	assert.Equal(t, []string{
		"Tracking ID support",
		"Status code check",
		"Content type check",
		"SLA Response time",
	}, testNames(ep.Tests))

	assert.Equal(t, ep.Tests, sec.Tests)
	assert.True(t, sec.Passed)
}

func TestAPI_AuthRequiredEndpointAllowsAnonymous(t *testing.T) {
	srv := target.Start(t, target.Options{OpenCustomers: true})
	cfg := apiConfig(srv.URL)
	cfg.API.AuthToken = target.Token
	cfg.API.Endpoints = []domain.EndpointSpec{{Endpoint: "/api/customers", AuthenticationRequired: true}}

	sec := application.NewAPIService(srv.Client()).Check(context.Background(), cfg)

	auth, ok := sec.Find("Auth enforcement")
	require.True(t, ok)
	assert.Equal(t, domain.StatusFail, auth.Status)
	assert.Equal(t, "Endpoint allowed unauthorized access", auth.Message)
	assert.Equal(t, domain.CheckAPIAuth, auth.Check)
	assert.False(t, sec.Passed)
}

func TestAPI_AuthEnforced(t *testing.T) {
	srv := target.Start(t, target.Options{})
	cfg := apiConfig(srv.URL)
	cfg.API.AuthToken = target.Token
	cfg.API.Endpoints = []domain.EndpointSpec{{Endpoint: "/api/customers", AuthenticationRequired: true}}

	sec := application.NewAPIService(srv.Client()).Check(context.Background(), cfg)

	status, _ := sec.Find("Status code check")
	assert.Equal(t, domain.StatusPass, status.Status, status.Message)
	auth, _ := sec.Find("Auth enforcement")
	assert.Equal(t, domain.StatusPass, auth.Status)
	assert.Equal(t, "Access denied as expected (Got 401)", auth.Message)
}

func TestAPI_SchemaValidation(t *testing.T) {
	srv := target.Start(t, target.Options{})
	svc := application.NewAPIService(srv.Client())
	opts := domain.DefaultConfig().API

	good := svc.ValidateEndpoint(context.Background(), srv.URL, domain.EndpointSpec{
		Endpoint: "/api/users",
		ExpectedSchema: mustSchema(t, `{"users": [{"id": "int", "name": "str"}], "count": "int"}`),
	}, opts)
	assert.True(t, good.Passed)

	bad := svc.ValidateEndpoint(context.Background(), srv.URL, domain.EndpointSpec{
		Endpoint:       "/api/users",
		ExpectedSchema: mustSchema(t, `{"users": [{"id": "str"}]}`),
	}, opts)
	assert.False(t, bad.Passed)

	var schemaResult domain.CheckResult
	for _, tc := range bad.Tests {
		if tc.Name == "Schema validation" {
			schemaResult = tc
		}
	}
	assert.Equal(t, domain.StatusFail, schemaResult.Status)
	assert.Equal(t, "Schema mismatch: 'users' -> item[0] -> 'id' -> Expected str, got int", schemaResult.Message)
}

func TestAPI_SchemaMismatchNamesFirstDeclaredKey(t *testing.T) {
	srv := target.Start(t, target.Options{})
	res := application.NewAPIService(srv.Client()).ValidateEndpoint(context.Background(), srv.URL, domain.EndpointSpec{
		Endpoint:       "/api/users",
		ExpectedSchema: mustSchema(t, "total: int\ncount: str\nusers: str\n"),
	}, domain.DefaultConfig().API)

	var schemaResult domain.CheckResult
	for _, tc := range res.Tests {
		if tc.Name == "Schema validation" {
			schemaResult = tc
		}
	}
	assert.Equal(t, "Schema mismatch: Missing required key: 'total'", schemaResult.Message)
}

func mustSchema(t *testing.T, src string) *domain.StructuralSchema {
	t.Helper()
	s, err := domain.ParseStructuralSchema(src)
	require.NoError(t, err)
	return s
}

func TestAPI_RequiredFields(t *testing.T) {
	srv := target.Start(t, target.Options{})
	res := application.NewAPIService(srv.Client()).ValidateEndpoint(context.Background(), srv.URL,
		domain.EndpointSpec{Endpoint: "/health", RequiredFields: []string{"status", "uptime", "region"}},
		domain.DefaultConfig().API)

	var fields domain.CheckResult
	for _, tc := range res.Tests {
		if tc.Name == "Required fields check" {
			fields = tc
		}
	}
	assert.Equal(t, domain.StatusFail, fields.Status)
	assert.Equal(t, "Missing: uptime, region", fields.Message)
}

func TestAPI_JSONSchema(t *testing.T) {
	srv := target.Start(t, target.Options{})
	svc := application.NewAPIService(srv.Client())
	opts := domain.DefaultConfig().API

	res := svc.ValidateEndpoint(context.Background(), srv.URL, domain.EndpointSpec{
		Endpoint: "/api/users",
		JSONSchema: map[string]any{
			"type":     "object",
			"required": []any{"users", "count"},
			"properties": map[string]any{
				"count": map[string]any{"type": "integer"},
			},
		},
	}, opts)
	assert.True(t, res.Passed)

	res = svc.ValidateEndpoint(context.Background(), srv.URL, domain.EndpointSpec{
		Endpoint:   "/api/users",
		JSONSchema: map[string]any{"type": "object", "required": []any{"next_page"}},
	}, opts)
	assert.False(t, res.Passed)
	last := res.Tests[len(res.Tests)-2]
	assert.Equal(t, "JSON Schema validation", last.Name)
	assert.Contains(t, last.Message, "next_page is required")
}

func TestAPI_PostWithPayload(t *testing.T) {
	srv := target.Start(t, target.Options{})
	res := application.NewAPIService(srv.Client()).ValidateEndpoint(context.Background(), srv.URL, domain.EndpointSpec{
		Endpoint:       "/api/users",
		Method:         "post",
		ExpectedStatus: http.StatusCreated,
		Payload:        map[string]any{"name": "Grace", "email": "grace@example.com"},
		RequiredFields: []string{"user", "status"},
	}, domain.DefaultConfig().API)

	assert.Equal(t, http.MethodPost, res.Method)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.True(t, res.Passed)
}

func TestAPI_AutoDiscover(t *testing.T) {
	srv := target.Start(t, target.Options{})
	opts := domain.DefaultConfig().API
	opts.AutoDiscover = true

	specs := application.NewAPIService(srv.Client()).Endpoints(context.Background(), srv.URL, opts)

	var paths []string
	for _, s := range specs {
		paths = append(paths, s.Endpoint)
	}
	assert.Equal(t, []string{"/", "/health", "/api/users", "/api/auth/login"}, paths)
}

func TestAPI_ExplicitEndpointsWinOverDiscovery(t *testing.T) {
	opts := domain.APIConfig{
		AutoDiscover: true,
		Endpoints:    []domain.EndpointSpec{{Endpoint: "/status"}},
	}
	specs := application.NewAPIService(nil).Endpoints(context.Background(), "http://127.0.0.1:1", opts)
	require.Len(t, specs, 1)
	assert.Equal(t, "/status", specs[0].Endpoint)
}

func TestAPI_NetworkFailure(t *testing.T) {
	svc := application.NewAPIService(&http.Client{Timeout: time.Second})
	sec := svc.Check(context.Background(), apiConfig("http://127.0.0.1:1"))

	require.Len(t, sec.Tests, 1)
	assert.Equal(t, "Network connectivity", sec.Tests[0].Name)
	assert.Equal(t, domain.StatusFail, sec.Tests[0].Status)
	assert.Contains(t, sec.Tests[0].Message, "Request failed:")

	details := sec.Details.(domain.APIDetails)
	assert.Equal(t, 0, details.PassedEndpoints)
	assert.NotEmpty(t, details.Endpoints[0].Error)
}
