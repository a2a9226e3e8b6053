package application

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/openkraft/prodcheck/internal/domain"
	"github.com/openkraft/prodcheck/internal/domain/deploy"
	"github.com/openkraft/prodcheck/internal/logging"
)

const assetHeadBytes = 1000

// DeploymentService inspects the project tree for CI, container, build,
// static asset, environment and version control readiness.
type DeploymentService struct {
	files domain.ProjectFiles
	git   domain.GitInfo
}

// NewDeploymentService creates the service. A nil git skips the version
// control check.
func NewDeploymentService(files domain.ProjectFiles, git domain.GitInfo) *DeploymentService {
	return &DeploymentService{files: files, git: git}
}

func (s *DeploymentService) Check(_ context.Context, cfg domain.ValidationConfig) domain.SectionResult {
	return domain.NewSection(domain.SectionDeployment, s.Validate(cfg.ProjectRoot), nil)
}

// Validate runs every deployment check against the project rooted at root.
func (s *DeploymentService) Validate(root string) []domain.CheckResult {
	if root == "" {
		root = "."
	}
	logging.For("deployment").WithField("root", root).Info("validating deployment readiness")

	var results []domain.CheckResult
	results = append(results, s.ciResults(root)...)
	results = append(results, s.containerResults(root)...)
	results = append(results, s.buildResults(root)...)
	results = append(results, s.staticResults(root)...)
	results = append(results, s.envResults(root)...)
	if s.git != nil {
		results = append(results, s.vcsResult(root))
	}
	return results
}

// findGroups returns the files of every group that matched, keyed by
// group name, plus the matched names in group order.
func (s *DeploymentService) findGroups(root string, groups []deploy.PatternGroup) (map[string][]string, []string) {
	found := map[string][]string{}
	var names []string
	for _, g := range groups {
		files, err := s.files.Find(root, g.Patterns)
		if err != nil {
			logging.For("deployment").WithError(err).WithField("group", g.Name).Debug("pattern search failed")
			continue
		}
		if len(files) > 0 {
			found[g.Name] = files
			names = append(names, g.Name)
		}
	}
	return found, names
}

func (s *DeploymentService) ciResults(root string) []domain.CheckResult {
	found, names := s.findGroups(root, deploy.CIPatterns)
	if len(names) == 0 {
		return []domain.CheckResult{
			domain.Fail(domain.CheckDeployCI, "CI/CD configuration exists", "No CI/CD configuration found"),
		}
	}

	results := []domain.CheckResult{
		domain.Pass(domain.CheckDeployCI, "CI/CD configuration exists", "Found configurations for: %s", strings.Join(names, ", ")),
	}

	deploySteps := false
	for _, name := range names {
		for _, rel := range found[name] {
			data, err := s.files.ReadFile(filepath.Join(root, rel))
			if err == nil && deploy.HasDeployKeyword(string(data)) {
				deploySteps = true
				break
			}
		}
		if deploySteps {
			break
		}
	}
	if deploySteps {
		results = append(results, domain.Pass(domain.CheckDeployCISteps, "CI/CD has deployment steps", "CI/CD configuration contains deployment steps"))
	} else {
		results = append(results, domain.Warn(domain.CheckDeployCISteps, "CI/CD has deployment steps", "No deployment steps found in CI/CD configuration"))
	}
	return results
}

func (s *DeploymentService) containerResults(root string) []domain.CheckResult {
	found, names := s.findGroups(root, deploy.ContainerPatterns)
	if len(names) == 0 {
		return []domain.CheckResult{
			domain.Fail(domain.CheckDeployContainer, "Container configuration exists", "No container configuration found"),
		}
	}

	results := []domain.CheckResult{
		domain.Pass(domain.CheckDeployContainer, "Container configuration exists", "Found configurations for: %s", strings.Join(names, ", ")),
	}

	for _, rel := range found["docker"] {
		if path.Base(rel) == "Dockerfile" {
			results = append(results, s.dockerfileResult(filepath.Join(root, rel)))
			break
		}
	}
	return results
}

func (s *DeploymentService) dockerfileResult(file string) domain.CheckResult {
	data, err := s.files.ReadFile(file)
	if err != nil {
		return domain.Fail(domain.CheckDeployDockerfile, "Dockerfile best practices", "Dockerfile issues: Error analyzing Dockerfile: %v", err)
	}

	findings := deploy.LintDockerfile(string(data))
	if len(findings) == 0 {
		return domain.Pass(domain.CheckDeployDockerfile, "Dockerfile best practices", "Dockerfile follows best practices")
	}

	status := domain.StatusWarning
	msgs := make([]string, 0, len(findings))
	for _, f := range findings {
		msgs = append(msgs, f.Message)
		if f.Critical {
			status = domain.StatusFail
		}
	}
	return domain.NewResult(domain.CheckDeployDockerfile, "Dockerfile best practices", status,
		"Dockerfile issues: %s", strings.Join(msgs, ", "))
}

func (s *DeploymentService) buildResults(root string) []domain.CheckResult {
	found, names := s.findGroups(root, deploy.BuildPatterns)
	if len(names) == 0 {
		return []domain.CheckResult{
			domain.Warn(domain.CheckDeployBuildTool, "Build tool configuration exists", "No build tool configuration found"),
		}
	}

	results := []domain.CheckResult{
		domain.Pass(domain.CheckDeployBuildTool, "Build tool configuration exists", "Found configurations for: %s", strings.Join(names, ", ")),
	}

	if npm, ok := found["npm"]; ok {
		data, err := s.files.ReadFile(filepath.Join(root, npm[0]))
		if err == nil && deploy.HasBuildScript(data) {
			results = append(results, domain.Pass(domain.CheckDeployBuildScript, "NPM build script exists", "package.json has build script"))
		} else {
			results = append(results, domain.Warn(domain.CheckDeployBuildScript, "NPM build script exists", "package.json is missing build script"))
		}
	}
	return results
}

func (s *DeploymentService) staticResults(root string) []domain.CheckResult {
	var dirs []string
	for _, d := range deploy.StaticDirs {
		if s.files.IsDir(filepath.Join(root, filepath.FromSlash(d))) {
			dirs = append(dirs, d)
		}
	}
	if len(dirs) == 0 {
		return []domain.CheckResult{
			domain.Warn(domain.CheckDeployStatic, "Static assets directory exists", "No static assets directory found"),
		}
	}

	results := []domain.CheckResult{
		domain.Pass(domain.CheckDeployStatic, "Static assets directory exists", "Found static directories: %s", strings.Join(dirs, ", ")),
	}
	if s.hasMinifiedAssets(root, dirs) {
		results = append(results, domain.Pass(domain.CheckDeployMinified, "Minified assets check", "Project has minified JS/CSS assets"))
	} else {
		results = append(results, domain.Warn(domain.CheckDeployMinified, "Minified assets check",
			"No minified assets found (consider adding minification to build process)"))
	}
	return results
}

func (s *DeploymentService) hasMinifiedAssets(root string, dirs []string) bool {
	for _, d := range dirs {
		dir := filepath.Join(root, filepath.FromSlash(d))
		assets, err := s.files.Find(dir, []string{"**.js", "**.css"})
		if err != nil {
			continue
		}
		for _, rel := range assets {
			head, err := s.files.ReadHead(filepath.Join(dir, rel), assetHeadBytes)
			if err != nil {
				continue
			}
			if deploy.LooksMinified(path.Base(rel), head) {
				return true
			}
		}
	}
	return false
}

func (s *DeploymentService) envResults(root string) []domain.CheckResult {
	files, err := s.files.Find(root, deploy.EnvFilePatterns)
	if err != nil || len(files) == 0 {
		return []domain.CheckResult{
			domain.Fail(domain.CheckDeployEnvFile, "Environment file exists", "No environment configuration file found"),
		}
	}

	names := make([]string, 0, len(files))
	hasEnv, hasExample := false, false
	for _, rel := range files {
		base := path.Base(rel)
		names = append(names, base)
		switch base {
		case ".env":
			hasEnv = true
		case ".env.example", ".env.template":
			hasExample = true
		}
	}

	results := []domain.CheckResult{
		domain.Pass(domain.CheckDeployEnvFile, "Environment file exists", "Found environment files: %s", strings.Join(names, ", ")),
	}
	if hasEnv && !hasExample {
		results = append(results, domain.Warn(domain.CheckDeployEnvExample, "Environment example file", "Missing .env.example or .env.template file"))
	}
	return results
}

func (s *DeploymentService) vcsResult(root string) domain.CheckResult {
	const name = "Version control state"
	if !s.git.IsGitRepo(root) {
		return domain.Warn(domain.CheckDeployVCS, name, "Project root is not a git repository")
	}

	clean, err := s.git.IsClean(root)
	if err != nil {
		return domain.Warn(domain.CheckDeployVCS, name, "Could not read working tree status: %v", err)
	}
	if !clean {
		return domain.Warn(domain.CheckDeployVCS, name, "Working tree has uncommitted changes")
	}

	hash, err := s.git.CommitHash(root)
	if err != nil {
		return domain.Warn(domain.CheckDeployVCS, name, "Could not read HEAD commit: %v", err)
	}
	if len(hash) > 12 {
		hash = hash[:12]
	}
	return domain.Pass(domain.CheckDeployVCS, name, "Working tree clean at %s", hash)
}
