// Package secrets detects credentials and personal data in text.
package secrets

import "regexp"

// Pattern is a named detector.
type Pattern struct {
	Name string
	Re   *regexp.Regexp
}

var (
	AWSKey        = Pattern{"AWS Key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)}
	GenericSecret = Pattern{"Generic Secret", regexp.MustCompile(`(?i)(password|secret|key|token|auth)\s*[:=]\s*['"][^'"]+['"]`)}
	PrivateKey    = Pattern{"Private Key", regexp.MustCompile(`-----BEGIN [A-Z ]+ PRIVATE KEY-----`)}
	CreditCard    = Pattern{"Credit Card", regexp.MustCompile(`\b(?:\d[ -]*?){13,16}\b`)}
	SSN           = Pattern{"SSN", regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)}
)

// ResponseBody is scanned in HTTP responses.
var ResponseBody = []Pattern{AWSKey, GenericSecret, PrivateKey}

// LogContent is scanned in log files.
var LogContent = []Pattern{CreditCard, SSN, GenericSecret}

// Scan returns the names of patterns that match text, in pattern order.
func Scan(text string, patterns []Pattern) []string {
	var hits []string
	for _, p := range patterns {
		if p.Re.MatchString(text) {
			hits = append(hits, p.Name)
		}
	}
	return hits
}
