package mcp

import (
	"context"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/prodcheck/internal/adapters/outbound/config"
	"github.com/openkraft/prodcheck/internal/domain"
)

const (
	configURI          = "prodcheck://config"
	remediationURIBase = "prodcheck://remediation/"
)

// registerResources registers all prodcheck MCP resources on the given server.
func registerResources(s *server.MCPServer, configPath string) {
	s.AddResource(
		mcplib.NewResource(
			configURI,
			"Effective Configuration",
			mcplib.WithResourceDescription("Configuration after defaults, the config file and environment overrides, with secrets masked"),
			mcplib.WithMIMEType("application/yaml"),
		),
		handleConfigResource(configPath),
	)

	s.AddResourceTemplate(
		mcplib.NewResourceTemplate(
			remediationURIBase+"{check_id}",
			"Remediation",
			mcplib.WithTemplateDescription("Remediation advice for a check id such as security.headers"),
			mcplib.WithTemplateMIMEType("text/plain"),
		),
		handleRemediationResource,
	)
}

func handleConfigResource(configPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := config.New().Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		data, err := yaml.Marshal(cfg.Masked())
		if err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}

		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      configURI,
				MIMEType: "application/yaml",
				Text:     string(data),
			},
		}, nil
	}
}

func handleRemediationResource(_ context.Context, request mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	uri := request.Params.URI
	id := strings.TrimPrefix(uri, remediationURIBase)
	if id == "" || id == uri {
		return nil, fmt.Errorf("invalid remediation URI %q", uri)
	}

	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     domain.RemediationFor(domain.CheckID(id)),
		},
	}, nil
}
