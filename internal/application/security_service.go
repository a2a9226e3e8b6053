package application

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/logging"
)

// SecurityHeader is a recommended response header and its weight in the
// headers score.
type SecurityHeader struct {
	Name     string
	Required bool
}

var RecommendedHeaders = []SecurityHeader{
	{"Strict-Transport-Security", true},
	{"Content-Security-Policy", true},
	{"X-Content-Type-Options", true},
	{"X-Frame-Options", true},
	{"X-XSS-Protection", true},
	{"Referrer-Policy", true},
	{"Feature-Policy", false},
	{"Permissions-Policy", false},
}

var CriticalHeaders = []string{"Strict-Transport-Security", "Content-Security-Policy", "X-Content-Type-Options"}

var AuthCandidates = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/reset-password",
	"/api/users",
	"/api/customers",
}

const (
	securityRequestTimeout = 10 * time.Second
	authRequestTimeout     = 5 * time.Second
	rateLimitBurst         = 10
	rateLimitWindow        = 2 * time.Second
	certWarnDays           = 30
	certFailDays           = 7
)

// SecurityDetails is the details payload of the security section.
type SecurityDetails struct {
	HeaderScore       float64           `json:"header_score"`
	HeaderGrade       string            `json:"header_grade"`
	HeadersPresent    map[string]string `json:"headers_present,omitempty"`
	TLSVersion        string            `json:"tls_version,omitempty"`
	CertDaysRemaining *int              `json:"cert_days_remaining,omitempty"`
	CORS              map[string]string `json:"cors,omitempty"`
	AuthEndpoints     []string          `json:"auth_endpoints,omitempty"`
	Exposures         []string          `json:"exposures,omitempty"`
}

// SecurityOption customises a SecurityService.
type SecurityOption func(*SecurityService)

// WithTLSConfig sets the base TLS configuration of the certificate probe,
// e.g. to trust a private CA.
func WithTLSConfig(cfg *tls.Config) SecurityOption {
	return func(s *SecurityService) { s.tlsConfig = cfg }
}

// WithClock replaces time.Now for certificate expiry.
func WithClock(now func() time.Time) SecurityOption {
	return func(s *SecurityService) { s.now = now }
}

// SecurityService scans a running service for transport, header, CORS,
// authentication, cookie and disclosure problems.
type SecurityService struct {
	client     *http.Client
	noRedirect *http.Client
	tlsConfig  *tls.Config
	now        func() time.Time
}

func NewSecurityService(client *http.Client, opts ...SecurityOption) *SecurityService {
	if client == nil {
		client = defaultClient()
	}
	noRedirect := *client
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	s := &SecurityService{
		client:     client,
		noRedirect: &noRedirect,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SecurityService) Check(ctx context.Context, cfg domain.ValidationConfig) domain.SectionResult {
	tests, details := s.Scan(ctx, cfg.APIBaseURL, cfg.Security)
	if details == nil {
		return domain.NewSection(domain.SectionSecurity, tests, nil)
	}
	return domain.NewSection(domain.SectionSecurity, tests, details)
}

// Scan runs every enabled security check against baseURL. An unreachable
// base URL yields a single failure.
func (s *SecurityService) Scan(ctx context.Context, baseURL string, opts domain.SecurityConfig) ([]domain.CheckResult, *SecurityDetails) {
	log := logging.For("security").WithFields(map[string]any{
		"url":      baseURL,
		"severity": opts.ScanSeverity,
	})
	log.Info("running security scan")

	if _, err := s.head(ctx, s.client, baseURL, securityRequestTimeout); err != nil {
		return []domain.CheckResult{
			domain.Fail(domain.CheckSecReachable, "Base URL accessibility check", "Base URL is not accessible: %v", err),
		}, nil
	}

	details := &SecurityDetails{}
	results := []domain.CheckResult{
		domain.Pass(domain.CheckSecReachable, "Base URL accessibility check", "Base URL is accessible"),
	}

	if opts.CheckSSL {
		results = append(results, s.transportResults(ctx, baseURL, details)...)
	}

	if opts.CheckHeaders {
		results = append(results, s.headerResults(ctx, baseURL, opts.ScanSeverity, details)...)
		results = append(results, s.corsResult(ctx, baseURL, details))
	}

	if opts.CheckAuth {
		results = append(results, s.authResults(ctx, baseURL, details)...)
	}

	results = append(results, s.cookieResult(ctx, baseURL))
	results = append(results, s.disclosureResult(ctx, baseURL, details))

	log.WithField("tests", len(results)).Debug("security scan finished")
	return results, details
}

// isHTTPS compares the scheme case-insensitively, as URL schemes are.
func isHTTPS(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && strings.EqualFold(u.Scheme, "https")
}

func (s *SecurityService) transportResults(ctx context.Context, baseURL string, details *SecurityDetails) []domain.CheckResult {
	if !isHTTPS(baseURL) {
		return []domain.CheckResult{
			domain.Fail(domain.CheckSecHTTPS, "HTTPS check", "Application is not using HTTPS"),
		}
	}

	results := []domain.CheckResult{
		domain.Pass(domain.CheckSecHTTPS, "HTTPS check", "Application is using HTTPS"),
	}

	probe := s.probeTLS(ctx, baseURL)
	details.TLSVersion = probe.Version
	if len(probe.Issues) == 0 {
		results = append(results, domain.Pass(domain.CheckSecTLS, "SSL/TLS configuration", "SSL/TLS is properly configured"))
	} else {
		results = append(results, domain.NewResult(domain.CheckSecTLS, "SSL/TLS configuration",
			domain.StatusFor(domain.FindingTLSIssues, domain.SeverityHigh),
			"SSL/TLS has issues: %s", strings.Join(probe.Issues, ", ")))
	}

	if probe.HasCert {
		days := probe.DaysRemaining
		details.CertDaysRemaining = &days
		status := domain.StatusFail
		switch {
		case days >= certWarnDays:
			status = domain.StatusPass
		case days >= certFailDays:
			status = domain.StatusWarning
		}
		results = append(results, domain.NewResult(domain.CheckSecCertExpiry, "SSL certificate expiration", status,
			"Certificate expires in %d days", days))
	}
	return results
}

func (s *SecurityService) headerResults(ctx context.Context, baseURL string, sev domain.Severity, details *SecurityDetails) []domain.CheckResult {
	score, present := s.scoreHeaders(ctx, baseURL)
	grade := domain.GradeFor(score)
	details.HeaderScore = score
	details.HeaderGrade = grade
	details.HeadersPresent = present

	status := domain.StatusPass
	switch grade {
	case "B":
		status = domain.StatusFor(domain.FindingHeaderGradeB, sev)
	case "C":
		status = domain.StatusFor(domain.FindingHeaderGradeC, sev)
	case "F":
		status = domain.StatusFor(domain.FindingHeaderGradeF, sev)
	}

	results := []domain.CheckResult{
		domain.NewResult(domain.CheckSecHeaders, "Security headers check", status,
			"Security headers score: %.1f%% (Grade %s)", score, grade),
	}
	for _, h := range CriticalHeaders {
		if _, ok := present[h]; ok {
			continue
		}
		results = append(results, domain.NewResult(domain.CheckSecCriticalHeader, "Critical security header: "+h,
			domain.StatusFor(domain.FindingMissingHeader, sev),
			"Critical security header '%s' is missing", h))
	}
	return results
}

func (s *SecurityService) corsResult(ctx context.Context, baseURL string, details *SecurityDetails) domain.CheckResult {
	issues, headers, err := s.inspectCORS(ctx, baseURL)
	if err != nil {
		return domain.Warn(domain.CheckSecCORS, "CORS configuration check", "CORS configuration issues: %v", err)
	}
	details.CORS = headers
	if len(issues) == 0 {
		return domain.Pass(domain.CheckSecCORS, "CORS configuration check", "CORS is properly configured")
	}
	return domain.NewResult(domain.CheckSecCORS, "CORS configuration check",
		domain.StatusFor(domain.FindingCORSWildcard, domain.SeverityHigh),
		"CORS configuration issues: %s", strings.Join(issues, ", "))
}

func (s *SecurityService) authResults(ctx context.Context, baseURL string, details *SecurityDetails) []domain.CheckResult {
	found, issues := s.inspectAuth(ctx, baseURL)
	details.AuthEndpoints = found
	if len(found) == 0 {
		return nil
	}

	var results []domain.CheckResult
	if len(issues) == 0 {
		results = append(results, domain.Pass(domain.CheckSecAuthEndpoints, "Authentication endpoints check",
			"Tested %d auth endpoints, all secure", len(found)))
	} else {
		results = append(results, domain.Fail(domain.CheckSecAuthEndpoints, "Authentication endpoints check",
			"Found %d issues in auth endpoints", len(issues)))
	}
	for _, issue := range issues {
		results = append(results, domain.Fail(domain.CheckSecAuthIssue, "Authentication security issue", "%s", issue))
	}
	return results
}

func (s *SecurityService) cookieResult(ctx context.Context, baseURL string) domain.CheckResult {
	issues, err := s.inspectCookies(ctx, baseURL)
	if err != nil {
		logging.For("security").WithError(err).Debug("cookie inspection failed")
	}
	if len(issues) == 0 {
		return domain.Pass(domain.CheckSecCookies, "Cookie security flags", "Cookies are securely configured")
	}
	return domain.NewResult(domain.CheckSecCookies, "Cookie security flags",
		domain.StatusFor(domain.FindingCookieFlags, domain.SeverityHigh),
		"Cookie issues: %s", strings.Join(issues, ", "))
}

func (s *SecurityService) disclosureResult(ctx context.Context, baseURL string, details *SecurityDetails) domain.CheckResult {
	issues, err := s.inspectDisclosure(ctx, baseURL)
	if err != nil {
		logging.For("security").WithError(err).Debug("disclosure scan failed")
	}
	details.Exposures = issues
	if len(issues) == 0 {
		return domain.Pass(domain.CheckSecDisclosure, "Information disclosure scan", "No sensitive info exposure detected")
	}
	return domain.Fail(domain.CheckSecDisclosure, "Information disclosure scan", "Exposure issues: %s", strings.Join(issues, ", "))
}

// head sends a HEAD request and discards the response.
func (s *SecurityService) head(ctx context.Context, client *http.Client, url string, timeout time.Duration) (*http.Response, error) {
	resp, _, err := fetch(ctx, client, http.MethodHead, url, nil, nil, timeout)
	return resp, err
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
