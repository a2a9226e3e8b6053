package mcp_test

import (
	"testing"

	mcpadapter "github.com/openkraft/prodcheck/internal/adapters/inbound/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProdcheckMCPServer(t *testing.T) {
	s := mcpadapter.NewProdcheckMCPServer("prodcheck.yaml")
	require.NotNil(t, s)
}

func TestMCPServerHasTools(t *testing.T) {
	s := mcpadapter.NewProdcheckMCPServer("prodcheck.yaml")
	require.NotNil(t, s)

	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"prodcheck_run",
		"prodcheck_list_sections",
		"prodcheck_validate_env",
	}

	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}

	assert.Len(t, tools, len(expectedTools), "should have exactly %d tools", len(expectedTools))
}
