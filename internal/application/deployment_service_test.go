package application_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/openkraft/prodcheck/internal/adapters/outbound/scanner"
	"github.com/openkraft/prodcheck/internal/application"
	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const projectRoot = "/project"

type fakeGit struct {
	repo  bool
	clean bool
	hash  string
	err   error
}

func (g fakeGit) IsGitRepo(string) bool             { return g.repo }
func (g fakeGit) CommitHash(string) (string, error) { return g.hash, g.err }
func (g fakeGit) IsClean(string) (bool, error)      { return g.clean, g.err }

func projectFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(projectRoot, 0o755))
	for name, content := range files {
		p := filepath.Join(projectRoot, name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, afero.WriteFile(fs, p, []byte(content), 0o644))
	}
	return fs
}

func resultByName(t *testing.T, results []domain.CheckResult, name string) domain.CheckResult {
	t.Helper()
	for _, r := range results {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no result named %q in %v", name, testNames(results))
	return domain.CheckResult{}
}

const goodDockerfile = `FROM golang:1.24 AS build
WORKDIR /src
COPY . .
RUN go build -o /app ./cmd/prodcheck

FROM gcr.io/distroless/static:nonroot
COPY --from=build /app /app
EXPOSE 8080
USER nonroot
HEALTHCHECK CMD ["/app", "version"]
ENTRYPOINT ["/app"]
`

func TestDeployment_ReadyProject(t *testing.T) {
	fs := projectFs(t, map[string]string{
		".github/workflows/release.yml": "on: push\njobs:\n  deploy:\n    runs-on: ubuntu-latest\n",
		"Dockerfile":                    goodDockerfile,
		"package.json":                  `{"scripts": {"build": "vite build"}}`,
		"static/app.min.js":             "console.log(1)",
		".env":                          "APP_ENV=production\n",
		".env.example":                  "APP_ENV=\n",
	})
	svc := application.NewDeploymentService(scanner.NewWithFs(fs), fakeGit{repo: true, clean: true, hash: "0123456789abcdef0123"})

	results := svc.Validate(projectRoot)

	assert.Equal(t, []string{
		"CI/CD configuration exists",
		"CI/CD has deployment steps",
		"Container configuration exists",
		"Dockerfile best practices",
		"Build tool configuration exists",
		"NPM build script exists",
		"Static assets directory exists",
		"Minified assets check",
		"Environment file exists",
		"Version control state",
	}, testNames(results))
	for _, r := range results {
		assert.Equal(t, domain.StatusPass, r.Status, "%s: %s", r.Name, r.Message)
	}
	assert.Equal(t, "Found configurations for: github", results[0].Message)
	assert.Equal(t, "Found environment files: .env, .env.example", resultByName(t, results, "Environment file exists").Message)
	assert.Equal(t, "Working tree clean at 0123456789ab", resultByName(t, results, "Version control state").Message)
}

func TestDeployment_EmptyProject(t *testing.T) {
	fs := projectFs(t, nil)
	results := application.NewDeploymentService(scanner.NewWithFs(fs), fakeGit{}).Validate(projectRoot)

	assert.Equal(t, domain.StatusFail, resultByName(t, results, "CI/CD configuration exists").Status)
	assert.Equal(t, domain.StatusFail, resultByName(t, results, "Container configuration exists").Status)
	assert.Equal(t, domain.StatusWarning, resultByName(t, results, "Build tool configuration exists").Status)
	assert.Equal(t, domain.StatusWarning, resultByName(t, results, "Static assets directory exists").Status)
	assert.Equal(t, domain.StatusFail, resultByName(t, results, "Environment file exists").Status)

	vcs := resultByName(t, results, "Version control state")
	assert.Equal(t, domain.StatusWarning, vcs.Status)
	assert.Equal(t, "Project root is not a git repository", vcs.Message)

	names := testNames(results)
	assert.NotContains(t, names, "CI/CD has deployment steps")
	assert.NotContains(t, names, "Dockerfile best practices")
	assert.NotContains(t, names, "Minified assets check")
}

func TestDeployment_DockerfileFindings(t *testing.T) {
	fs := projectFs(t, map[string]string{
		"Dockerfile": "FROM node:latest\nRUN chmod 777 /app\nCMD [\"node\", \"server.js\"]\n",
	})
	results := application.NewDeploymentService(scanner.NewWithFs(fs), nil).Validate(projectRoot)

	docker := resultByName(t, results, "Dockerfile best practices")
	assert.Equal(t, domain.StatusFail, docker.Status)
	assert.Equal(t, "Dockerfile issues: Using 'latest' tag (should use specific version), "+
		"No EXPOSE instruction found, No USER instruction found (might be running as root), "+
		"No HEALTHCHECK instruction found, Permissive write permissions detected (chmod 777), "+
		"Not using multi-stage build (image might be larger than necessary)", docker.Message)
	assert.NotContains(t, testNames(results), "Version control state")
}

func TestDeployment_SoftFindingsWarn(t *testing.T) {
	fs := projectFs(t, map[string]string{
		".gitlab-ci.yml":    "test:\n  script: go test ./...\n",
		"Dockerfile":        "FROM golang:1.24\nEXPOSE 8080\nUSER app\nHEALTHCHECK CMD true\n",
		"package.json":      `{"scripts": {"test": "jest"}}`,
		"public/app.js":     "function main() {\n  return 1\n}\n",
		".env":              "X=1\n",
		"k8s/base/app.yaml": "kind: Deployment\n",
	})
	svc := application.NewDeploymentService(scanner.NewWithFs(fs), fakeGit{repo: true, clean: false})
	results := svc.Validate(projectRoot)

	assert.Equal(t, domain.StatusWarning, resultByName(t, results, "CI/CD has deployment steps").Status)
	assert.Equal(t, "Found configurations for: docker, kubernetes", resultByName(t, results, "Container configuration exists").Message)

	docker := resultByName(t, results, "Dockerfile best practices")
	assert.Equal(t, domain.StatusWarning, docker.Status)
	assert.Equal(t, "Dockerfile issues: Not using multi-stage build (image might be larger than necessary)", docker.Message)

	assert.Equal(t, domain.StatusWarning, resultByName(t, results, "NPM build script exists").Status)
	assert.Equal(t, domain.StatusWarning, resultByName(t, results, "Minified assets check").Status)
	assert.Equal(t, domain.StatusWarning, resultByName(t, results, "Environment example file").Status)
	assert.Equal(t, "Working tree has uncommitted changes", resultByName(t, results, "Version control state").Message)
}

func TestDeployment_GitStatusError(t *testing.T) {
	fs := projectFs(t, nil)
	svc := application.NewDeploymentService(scanner.NewWithFs(fs), fakeGit{repo: true, err: errors.New("index corrupt")})

	vcs := resultByName(t, svc.Validate(projectRoot), "Version control state")
	assert.Equal(t, domain.StatusWarning, vcs.Status)
	assert.Equal(t, "Could not read working tree status: index corrupt", vcs.Message)
}
