// Package envcheck validates environment files against a sectioned rule table.
package envcheck

// Rule constrains one environment variable.
type Rule struct {
	Name         string
	Type         string // str, bool, int, url, email, secret, list
	Required     bool
	Allowed      []string
	Min          *int
	Max          *int
	MinLen       int
	NoSQLiteProd bool
	ProdRequire  string
}

// Section groups rules under a documented header comment.
type Section struct {
	Name  string
	Rules []Rule
}

func intp(n int) *int { return &n }

// DefaultSections is the built-in rule table, in evaluation order.
func DefaultSections() []Section {
	return []Section{
		{
			Name: "CORE PLATFORM CONFIGURATION",
			Rules: []Rule{
				{Name: "ENVIRONMENT", Type: "str", Required: true, Allowed: []string{"development", "staging", "production"}},
				{Name: "DEBUG", Type: "bool", Required: true},
				{Name: "LOG_LEVEL", Type: "str", Required: true, Allowed: []string{"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL"}},
				{Name: "PLATFORM_NAME", Type: "str", Required: true},
				{Name: "PLATFORM_VERSION", Type: "str", Required: true},
			},
		},
		{
			Name: "DATABASE CONFIGURATION",
			Rules: []Rule{
				{Name: "DATABASE_URL", Type: "url", Required: true, NoSQLiteProd: true},
				{Name: "DATABASE_ENCRYPTION_KEY", Type: "secret", Required: true, MinLen: 32},
			},
		},
		{
			Name: "JWT AUTHENTICATION & SECURITY",
			Rules: []Rule{
				{Name: "JWT_SECRET_KEY", Type: "secret", Required: true, MinLen: 32},
				{Name: "JWT_ALGORITHM", Type: "str", Required: true, Allowed: []string{"HS256", "RS256"}},
				{Name: "JWT_EXPIRATION_HOURS", Type: "int", Required: true, Min: intp(1)},
				{Name: "ENCRYPTION_KEY", Type: "secret", Required: true, MinLen: 32},
				{Name: "SSL_ENABLED", Type: "bool", ProdRequire: "true"},
			},
		},
		{
			Name: "WEB SERVER & API CONFIGURATION",
			Rules: []Rule{
				{Name: "API_HOST", Type: "str", Required: true},
				{Name: "API_PORT", Type: "int", Required: true, Min: intp(1), Max: intp(65535)},
				{Name: "API_CORS_ORIGINS", Type: "list", Required: true},
			},
		},
		{
			Name: "EMAIL CONFIGURATION",
			Rules: []Rule{
				{Name: "SMTP_SERVER", Type: "str", Required: true},
				{Name: "SMTP_PORT", Type: "int", Required: true, Min: intp(1), Max: intp(65535)},
				{Name: "SMTP_USE_TLS", Type: "bool", Required: true},
				{Name: "SMTP_FROM_EMAIL", Type: "email", Required: true},
			},
		},
		{
			Name: "BACKUP & MONITORING",
			Rules: []Rule{
				{Name: "BACKUP_ENABLED", Type: "bool", Required: true},
				{Name: "BACKUP_INTERVAL_HOURS", Type: "int", Required: true, Min: intp(1)},
				{Name: "HEALTH_CHECK_INTERVAL", Type: "int", Required: true, Min: intp(1)},
			},
		},
	}
}

// SectionNames lists the names of sections in order.
func SectionNames(sections []Section) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}
