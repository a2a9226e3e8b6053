package envcheck

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openkraft/prodcheck/internal/domain"
)

var placeholders = []string{"your-secret-here", "REPLACE_ME", "example", "placeholder", "TODO"}

var boolValues = map[string]bool{
	"true": true, "false": true, "1": true, "0": true, "yes": true, "no": true,
}

// IsPlaceholder reports values that look like unfilled templates:
// a known marker anywhere in the value, or fewer than three distinct characters.
func IsPlaceholder(v string) bool {
	lower := strings.ToLower(v)
	for _, p := range placeholders {
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	distinct := make(map[rune]struct{})
	for _, r := range v {
		distinct[r] = struct{}{}
	}
	return len(distinct) < 3
}

// DocumentedSections returns the known section names that appear as header
// comments in content.
func DocumentedSections(content string, sections []Section) map[string]bool {
	known := make(map[string]bool, len(sections))
	for _, s := range sections {
		known[s.Name] = true
	}

	found := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "#") {
			continue
		}
		name := strings.TrimSpace(strings.TrimLeft(line, "#"))
		if known[name] {
			found[name] = true
		}
	}
	return found
}

// ValidateValue applies the type rule of r to a non-empty value.
func ValidateValue(value string, r Rule) (bool, string) {
	switch r.Type {
	case "bool":
		if !boolValues[strings.ToLower(value)] {
			return false, fmt.Sprintf("Must be a boolean value, got '%s'", value)
		}
		return true, ""

	case "int":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return false, fmt.Sprintf("Must be an integer, got '%s'", value)
		}
		if r.Min != nil && n < *r.Min {
			return false, fmt.Sprintf("Value %d is below minimum %d", n, *r.Min)
		}
		if r.Max != nil && n > *r.Max {
			return false, fmt.Sprintf("Value %d is above maximum %d", n, *r.Max)
		}
		return true, ""

	case "url":
		if !strings.Contains(value, "://") {
			return false, fmt.Sprintf("Must be a valid connection URL, got '%s'", value)
		}
		return true, ""

	case "email":
		at := strings.Index(value, "@")
		if at < 0 || !strings.Contains(value[at+1:], ".") {
			return false, fmt.Sprintf("Must be a valid email, got '%s'", value)
		}
		return true, ""

	case "secret":
		if IsPlaceholder(value) {
			return false, "Value appears to be a placeholder"
		}
		if r.MinLen > 0 && len(value) < r.MinLen {
			return false, fmt.Sprintf("Secret is too short (min %d chars)", r.MinLen)
		}
		return true, ""

	case "list":
		for _, item := range strings.Split(value, ",") {
			if strings.TrimSpace(item) != "" {
				return true, ""
			}
		}
		return false, "Must be a comma-separated list"
	}

	if len(r.Allowed) > 0 && !contains(r.Allowed, value) {
		return false, fmt.Sprintf("Value '%s' not in allowed list: %s", value, strings.Join(r.Allowed, ", "))
	}
	return true, ""
}

// Check evaluates vars against every in-scope section. An empty required
// list puts every section in scope. Results follow table order.
func Check(content string, vars map[string]string, sections []Section, required []string) []domain.CheckResult {
	inScope := func(name string) bool {
		return len(required) == 0 || contains(required, name)
	}
	documented := DocumentedSections(content, sections)
	production := strings.EqualFold(vars["ENVIRONMENT"], "production")

	var results []domain.CheckResult
	for _, sec := range sections {
		if !inScope(sec.Name) {
			continue
		}

		name := "Section check: " + sec.Name
		if documented[sec.Name] {
			results = append(results, domain.Pass(domain.CheckEnvSection, name, "Section '%s' is documented", sec.Name))
		} else {
			results = append(results, domain.Warn(domain.CheckEnvSection, name, "Section header '%s' missing from comments", sec.Name))
		}

		for _, rule := range sec.Rules {
			results = append(results, checkVariable(vars, rule, production))
		}
	}
	return results
}

func checkVariable(vars map[string]string, rule Rule, production bool) domain.CheckResult {
	val := vars[rule.Name]
	if val == "" {
		name := "Variable presence: " + rule.Name
		if rule.Required {
			return domain.Fail(domain.CheckEnvPresence, name, "Mandatory variable %s is missing", rule.Name)
		}
		return domain.Pass(domain.CheckEnvPresence, name, "Optional variable %s is missing", rule.Name)
	}

	ok, msg := ValidateValue(val, rule)
	if production {
		if rule.NoSQLiteProd && strings.Contains(strings.ToLower(val), "sqlite") {
			ok, msg = false, "SQLite is not allowed in production"
		}
		if rule.ProdRequire != "" && !strings.EqualFold(val, rule.ProdRequire) {
			ok, msg = false, fmt.Sprintf("In production, %s must be %s", rule.Name, rule.ProdRequire)
		}
	}

	name := "Variable validation: " + rule.Name
	if ok {
		return domain.Pass(domain.CheckEnvValue, name, "%s is valid", rule.Name)
	}
	return domain.Fail(domain.CheckEnvValue, name, "%s invalid: %s", rule.Name, msg)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
