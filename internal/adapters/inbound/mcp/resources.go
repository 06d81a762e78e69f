package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/ledger"
	"github.com/a11yfix/a11yfix/internal/domain"
)

// registerResources registers all a11yfix MCP resources on the given server.
func registerResources(s *server.MCPServer, projectPath string, cfg domain.Config) {
	// 1. a11yfix://config - effective configuration
	s.AddResource(
		mcplib.NewResource(
			"a11yfix://config",
			"Configuration",
			mcplib.WithResourceDescription("Effective a11yfix configuration after merging .a11yfix.yaml over defaults"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(cfg),
	)

	// 2. a11yfix://applied - fixes already written to the project
	s.AddResource(
		mcplib.NewResource(
			"a11yfix://applied",
			"Applied Fixes",
			mcplib.WithResourceDescription("Fixes earlier patch runs wrote to this project"),
			mcplib.WithMIMEType("application/json"),
		),
		handleAppliedResource(projectPath),
	)
}

func handleConfigResource(cfg domain.Config) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		return jsonContents("a11yfix://config", cfg)
	}
}

func handleAppliedResource(projectPath string) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		applied, err := ledger.New().Applied(projectPath)
		if err != nil {
			return nil, fmt.Errorf("reading ledger: %w", err)
		}
		entries := make([]domain.LedgerEntry, 0, len(applied))
		for _, e := range applied {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Fingerprint < entries[j].Fingerprint })
		return jsonContents("a11yfix://applied", entries)
	}
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
