// Package deploy holds the file patterns and content heuristics of the
// deployment readiness checks.
package deploy

import (
	"encoding/json"
	"regexp"
	"strings"
)

// PatternGroup names a tool and the glob patterns of its config files,
// relative to the project root.
type PatternGroup struct {
	Name     string
	Patterns []string
}

var CIPatterns = []PatternGroup{
	{"github", []string{".github/workflows/*.yml", ".github/workflows/*.yaml"}},
	{"gitlab", []string{".gitlab-ci.yml"}},
	{"azure", []string{"azure-pipelines.yml"}},
	{"jenkins", []string{"Jenkinsfile"}},
	{"circleci", []string{".circleci/config.yml"}},
	{"travis", []string{".travis.yml"}},
}

var ContainerPatterns = []PatternGroup{
	{"docker", []string{"Dockerfile", "docker-compose.yml", "docker-compose.yaml", "compose.yaml"}},
	{"kubernetes", []string{"kubernetes/**.yml", "kubernetes/**.yaml", "k8s/**.yml", "k8s/**.yaml"}},
}

var BuildPatterns = []PatternGroup{
	{"npm", []string{"package.json"}},
	{"yarn", []string{"yarn.lock"}},
	{"pip", []string{"requirements.txt", "setup.py", "pyproject.toml"}},
	{"gradle", []string{"build.gradle"}},
	{"maven", []string{"pom.xml"}},
	{"dotnet", []string{"*.csproj", "*.sln"}},
	{"go", []string{"go.mod"}},
}

var EnvFilePatterns = []string{".env", ".env.example", ".env.template", ".env.production", "env.yml", "config/*.env"}

var StaticDirs = []string{"static", "public", "assets", "dist", "build", "www", "web", "client/build", "client/dist"}

var DeployKeywords = []string{
	"deploy", "production", "staging", "release", "publish", "push", "k8s", "kubernetes",
	"heroku", "azure", "aws", "gcp", "firebase", "netlify", "vercel",
}

var buildScripts = []string{"build", "prod", "production", "dist"}

// HasDeployKeyword reports whether CI config content mentions a deployment step.
func HasDeployKeyword(content string) bool {
	lower := strings.ToLower(content)
	for _, k := range DeployKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// HasBuildScript reports whether a package.json declares a production build script.
func HasBuildScript(packageJSON []byte) bool {
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(packageJSON, &pkg); err != nil {
		return false
	}
	for _, s := range buildScripts {
		if _, ok := pkg.Scripts[s]; ok {
			return true
		}
	}
	return false
}

// LooksMinified inspects the head of an asset: a ".min." name, or an average
// line length above 100 characters over the first 1000 bytes.
func LooksMinified(name string, head []byte) bool {
	if strings.Contains(name, ".min.") {
		return true
	}
	if len(head) > 1000 {
		head = head[:1000]
	}
	lines := strings.Split(string(head), "\n")
	if len(lines) == 0 || len(head) == 0 {
		return false
	}
	total := 0
	for _, l := range lines {
		total += len(l)
	}
	return float64(total)/float64(len(lines)) > 100
}

var (
	fromRe        = regexp.MustCompile(`(?m)^\s*FROM\s+`)
	latestRe      = regexp.MustCompile(`FROM\s+[^:\s]+:latest`)
	exposeRe      = regexp.MustCompile(`(?m)^\s*EXPOSE\s+\d+`)
	userRe        = regexp.MustCompile(`(?m)^\s*USER\s+`)
	healthcheckRe = regexp.MustCompile(`(?m)^\s*HEALTHCHECK\s+`)
	chmodRe       = regexp.MustCompile(`RUN\s+chmod\s+777`)
)

// DockerFinding is one best-practice violation.
type DockerFinding struct {
	Message  string
	Critical bool
}

// LintDockerfile returns findings in a fixed order.
func LintDockerfile(content string) []DockerFinding {
	var findings []DockerFinding
	add := func(msg string, critical bool) {
		findings = append(findings, DockerFinding{Message: msg, Critical: critical})
	}

	if !fromRe.MatchString(content) {
		add("Missing FROM instruction", true)
	}
	if latestRe.MatchString(content) {
		add("Using 'latest' tag (should use specific version)", false)
	}
	if !exposeRe.MatchString(content) {
		add("No EXPOSE instruction found", false)
	}
	if !userRe.MatchString(content) {
		add("No USER instruction found (might be running as root)", false)
	}
	if !healthcheckRe.MatchString(content) {
		add("No HEALTHCHECK instruction found", false)
	}
	if chmodRe.MatchString(content) {
		add("Permissive write permissions detected (chmod 777)", true)
	}
	if len(fromRe.FindAllStringIndex(content, -1)) < 2 {
		add("Not using multi-stage build (image might be larger than necessary)", false)
	}
	return findings
}
