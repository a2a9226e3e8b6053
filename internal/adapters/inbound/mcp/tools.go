package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/prodcheck/internal/adapters/outbound/config"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/dbprobe"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/envfile"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/prodcheck/internal/adapters/outbound/scanner"
	"github.com/openkraft/prodcheck/internal/application"
	"github.com/openkraft/prodcheck/internal/domain"
)

// registerTools registers all prodcheck MCP tools on the given server.
func registerTools(s *server.MCPServer, configPath string) {
	s.AddTool(
		mcplib.NewTool("prodcheck_run",
			mcplib.WithDescription("Run the production readiness checklist and return the report as JSON. No report files are written."),
			mcplib.WithString("sections", mcplib.Description("Comma-separated sections to run (default: validate_sections from the config)")),
			mcplib.WithString("url", mcplib.Description("Base URL of the service under test (default: api_base_url from the config)")),
		),
		handleRun(configPath),
	)

	s.AddTool(
		mcplib.NewTool("prodcheck_list_sections",
			mcplib.WithDescription("List the validation sections in run order and whether the config enables each"),
		),
		handleListSections(configPath),
	)

	s.AddTool(
		mcplib.NewTool("prodcheck_validate_env",
			mcplib.WithDescription("Validate an environment file against the variable rules and return the results"),
			mcplib.WithString("path", mcplib.Description("Path to the environment file (default: env_file_path from the config)")),
			mcplib.WithString("sections", mcplib.Description("Comma-separated env sections to require (default: env.required_sections)")),
		),
		handleValidateEnv(configPath),
	)
}

func newRegistry() map[string]application.Checker {
	return application.NewRegistry(application.Dependencies{
		HTTPClient: &http.Client{},
		Files:      scanner.New(),
		Env:        envfile.New(),
		Database:   dbprobe.New(),
		Git:        gitinfo.New(),
	})
}

func handleRun(configPath string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := config.New().Load(configPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}
		if url := request.GetString("url", ""); url != "" {
			cfg.APIBaseURL = url
		}
		if sections := splitList(request.GetString("sections", "")); len(sections) > 0 {
			cfg.ValidateSections = sections
		}
		if err := cfg.Validate(); err != nil {
			return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		svc := application.NewValidationService(newRegistry(), gitinfo.New(), nil, nil)
		return jsonResult(svc.Run(ctx, cfg))
	}
}

type sectionInfo struct {
	Order   int    `json:"order"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

func handleListSections(configPath string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := config.New().Load(configPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		sections := make([]sectionInfo, 0, len(domain.SectionOrder))
		for i, name := range domain.SectionOrder {
			sections = append(sections, sectionInfo{Order: i + 1, Name: name, Enabled: cfg.Enabled(name)})
		}
		return jsonResult(sections)
	}
}

type envValidation struct {
	File   string               `json:"file"`
	Passed bool                 `json:"passed"`
	Tests  []domain.CheckResult `json:"tests"`
}

func handleValidateEnv(configPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		cfg, err := config.New().Load(configPath)
		if err != nil {
			return errorResult(fmt.Sprintf("loading config: %v", err)), nil
		}

		path := request.GetString("path", cfg.EnvFilePath)
		required := cfg.Env.RequiredSections
		if sections := splitList(request.GetString("sections", "")); len(sections) > 0 {
			required = sections
		}

		section := domain.NewSection(domain.SectionEnvConfig,
			application.NewEnvService(envfile.New()).Validate(path, required), nil)
		for i, t := range section.Tests {
			section.Tests[i] = domain.AttachRemediation(t)
		}
		return jsonResult(envValidation{File: path, Passed: section.Passed, Tests: section.Tests})
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns an error content result.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
