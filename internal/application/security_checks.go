package application

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/openkraft/prodcheck/internal/domain/secrets"
)

const corsProbeOrigin = "https://attacker-example.com"

var disclosureHeaders = []string{"Server", "X-Powered-By", "X-AspNet-Version", "X-Runtime"}

var emptyCredentials = []byte(`{"username":"","email":"","password":""}`)


type tlsProbe struct {
	Version       string
	HasCert       bool
	DaysRemaining int
	Issues        []string
}

// probeTLS performs a TLS 1.2+ handshake with the host of baseURL and
// inspects the negotiated protocol and the leaf certificate.
func (s *SecurityService) probeTLS(ctx context.Context, baseURL string) tlsProbe {
	var probe tlsProbe

	u, err := url.Parse(baseURL)
	if err != nil {
		probe.Issues = append(probe.Issues, fmt.Sprintf("Connection Error: %v", err))
		return probe
	}
	host, port := u.Hostname(), u.Port()
	if port == "" {
		port = "443"
	}

	cfg := &tls.Config{}
	if s.tlsConfig != nil {
		cfg = s.tlsConfig.Clone()
	}
	cfg.ServerName = host
	cfg.MinVersion = tls.VersionTLS12

	ctx, cancel := context.WithTimeout(ctx, securityRequestTimeout)
	defer cancel()

	dialer := &tls.Dialer{Config: cfg}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			probe.Issues = append(probe.Issues, fmt.Sprintf("Connection Error: %v", err))
		} else {
			probe.Issues = append(probe.Issues, fmt.Sprintf("SSL Error: %v", err))
		}
		return probe
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	probe.Version = tls.VersionName(state.Version)
	if state.Version < tls.VersionTLS12 {
		probe.Issues = append(probe.Issues, "Outdated TLS version: "+probe.Version)
	}

	if len(state.PeerCertificates) > 0 {
		leaf := state.PeerCertificates[0]
		probe.HasCert = true
		probe.DaysRemaining = int(math.Floor(leaf.NotAfter.Sub(s.now()).Hours() / 24))
		if probe.DaysRemaining < certWarnDays {
			probe.Issues = append(probe.Issues, fmt.Sprintf("Certificate expires in %d days", probe.DaysRemaining))
		}
	}
	return probe
}

// scoreHeaders returns the weighted share of recommended headers present on
// the base URL, as a percentage, along with the headers found. An
// unreachable URL scores zero.
func (s *SecurityService) scoreHeaders(ctx context.Context, baseURL string) (float64, map[string]string) {
	present := map[string]string{}
	resp, err := s.head(ctx, s.client, baseURL, securityRequestTimeout)
	if err != nil {
		return 0, present
	}

	var score, max float64
	for _, h := range RecommendedHeaders {
		weight := 0.5
		if h.Required {
			weight = 1
		}
		max += weight
		if v := resp.Header.Get(h.Name); v != "" {
			score += weight
			present[h.Name] = v
		}
	}
	return score / max * 100, present
}

// inspectCORS sends a preflight from a foreign origin.
func (s *SecurityService) inspectCORS(ctx context.Context, baseURL string) ([]string, map[string]string, error) {
	hdr := http.Header{}
	hdr.Set("Origin", corsProbeOrigin)
	hdr.Set("Access-Control-Request-Method", http.MethodPost)
	hdr.Set("Access-Control-Request-Headers", "Content-Type")

	resp, _, err := fetch(ctx, s.client, http.MethodOptions, baseURL, nil, hdr, securityRequestTimeout)
	if err != nil {
		return nil, nil, err
	}

	headers := map[string]string{}
	for _, name := range []string{
		"Access-Control-Allow-Origin",
		"Access-Control-Allow-Methods",
		"Access-Control-Allow-Headers",
		"Access-Control-Allow-Credentials",
	} {
		if v := resp.Header.Get(name); v != "" {
			headers[name] = v
		}
	}

	var issues []string
	if headers["Access-Control-Allow-Origin"] == "*" {
		issues = append(issues, "CORS allows any origin (*)")
	}
	if headers["Access-Control-Allow-Headers"] == "*" {
		issues = append(issues, "CORS allows any headers (*)")
	}
	return issues, headers, nil
}

// inspectAuth probes the candidate authentication endpoints that exist on
// the target for missing rate limits and empty-credential logins.
func (s *SecurityService) inspectAuth(ctx context.Context, baseURL string) (found, issues []string) {
	for _, path := range AuthCandidates {
		u := joinURL(baseURL, path)

		resp, err := s.head(ctx, s.noRedirect, u, authRequestTimeout)
		if err != nil || resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed {
			continue
		}
		found = append(found, path)

		if s.burstCompletes(ctx, u) {
			issues = append(issues, fmt.Sprintf("Endpoint %s may lack rate limiting", path))
		}

		if strings.Contains(path, "/login") || strings.Contains(path, "/auth") {
			hdr := http.Header{"Content-Type": {"application/json"}}
			resp, _, err := fetch(ctx, s.client, http.MethodPost, u, emptyCredentials, hdr, authRequestTimeout)
			if err == nil && resp.StatusCode == http.StatusOK {
				issues = append(issues, fmt.Sprintf("Endpoint %s may accept empty credentials", path))
			}
		}
	}
	return found, issues
}

// burstCompletes reports whether rateLimitBurst GETs all complete within
// rateLimitWindow without being throttled.
func (s *SecurityService) burstCompletes(ctx context.Context, u string) bool {
	start := time.Now()
	for i := 0; i < rateLimitBurst; i++ {
		resp, _, err := fetch(ctx, s.client, http.MethodGet, u, nil, nil, authRequestTimeout)
		if err != nil || resp.StatusCode == http.StatusTooManyRequests {
			return false
		}
	}
	return time.Since(start) < rateLimitWindow
}

func (s *SecurityService) inspectCookies(ctx context.Context, baseURL string) ([]string, error) {
	resp, _, err := fetch(ctx, s.client, http.MethodGet, baseURL, nil, nil, securityRequestTimeout)
	if err != nil {
		return nil, err
	}

	secure := isHTTPS(baseURL)
	var issues []string
	for _, c := range resp.Cookies() {
		if !c.HttpOnly {
			issues = append(issues, fmt.Sprintf("Cookie '%s' missing HttpOnly flag", c.Name))
		}
		if secure && !c.Secure {
			issues = append(issues, fmt.Sprintf("Cookie '%s' missing Secure flag", c.Name))
		}
	}
	return issues, nil
}

func (s *SecurityService) inspectDisclosure(ctx context.Context, baseURL string) ([]string, error) {
	resp, body, err := fetch(ctx, s.client, http.MethodGet, baseURL, nil, nil, securityRequestTimeout)
	if err != nil {
		return nil, err
	}

	var issues []string
	for _, h := range disclosureHeaders {
		v := resp.Header.Get(h)
		if v != "" && disclosesVersion(v) {
			issues = append(issues, fmt.Sprintf("Verbose header exposure: %s: %s", h, v))
		}
	}
	for _, name := range secrets.Scan(string(body), secrets.ResponseBody) {
		issues = append(issues, fmt.Sprintf("Potential %s exposed in response body", name))
	}
	return issues, nil
}

// disclosesVersion reports whether a banner such as "nginx/1.25.3" or
// "PHP 8.2" carries a version. A token counts when go-version parses it and
// it either has a dotted form or is the version part of "product/version".
// Bare numbers and names like "AmazonS3" do not.
func disclosesVersion(banner string) bool {
	words := strings.FieldsFunc(banner, func(r rune) bool {
		return r == ' ' || r == ';' || r == '(' || r == ')' || r == ','
	})
	for _, w := range words {
		parts := strings.Split(w, "/")
		for i, p := range parts {
			if _, err := version.NewVersion(p); err != nil {
				continue
			}
			if i > 0 || strings.Contains(p, ".") {
				return true
			}
		}
	}
	return false
}
