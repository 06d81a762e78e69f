package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/gitinfo"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/ledger"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/prompt"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/report"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/scanner"
	"github.com/a11yfix/a11yfix/internal/application"
	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/a11yfix/a11yfix/internal/logging"
)

// registerTools registers all a11yfix MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, cfg domain.Config) {
	// 1. a11yfix_locate
	s.AddTool(
		mcplib.NewTool("a11yfix_locate",
			mcplib.WithDescription("Find the first source file containing a markup snippet, ignoring whitespace differences"),
			mcplib.WithString("snippet",
				mcplib.Required(),
				mcplib.Description("Markup to look for, e.g. an issue's currentCode"),
			),
			mcplib.WithString("dir",
				mcplib.Description("Subdirectory of the project to search (defaults to the project root)"),
			),
		),
		handleLocate(projectPath, cfg),
	)

	// 2. a11yfix_plan_patches
	s.AddTool(
		mcplib.NewTool("a11yfix_plan_patches",
			mcplib.WithDescription("Dry-run a report's approved fixes against the project and return where each would land"),
			mcplib.WithString("report",
				mcplib.Required(),
				mcplib.Description("Path to the audit report JSON"),
			),
		),
		handlePlanPatches(projectPath, cfg),
	)

	// 3. a11yfix_validation_results
	s.AddTool(
		mcplib.NewTool("a11yfix_validation_results",
			mcplib.WithDescription("Return the validation results recorded in an audit report"),
			mcplib.WithString("report",
				mcplib.Required(),
				mcplib.Description("Path to the audit report JSON"),
			),
		),
		handleValidationResults(projectPath),
	)
}

// newPatchService never writes: every tool plans with dry runs or lookups only.
func newPatchService(cfg domain.Config) *application.PatchService {
	return application.NewPatchService(
		scanner.New(),
		prompt.AutoReject,
		cfg.ScanOptions(),
		logging.New("mcp"),
		application.WithLedger(ledger.New()),
		application.WithGitInfo(gitinfo.New()),
	)
}

func handleLocate(projectPath string, cfg domain.Config) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		snippet, err := request.RequireString("snippet")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		dir, _ := request.GetArguments()["dir"].(string)

		loc, err := newPatchService(cfg).Locate(filepath.Join(projectPath, dir), snippet)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errorResult("snippet not found in any source file"), nil
			}
			return errorResult(fmt.Sprintf("locate failed: %v", err)), nil
		}
		return jsonResult(loc)
	}
}

func handlePlanPatches(projectPath string, cfg domain.Config) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("report")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		rep, err := report.New().Load(resolve(projectPath, path))
		if err != nil {
			return errorResult(fmt.Sprintf("loading report failed: %v", err)), nil
		}
		if !rep.HasApprovedFixes {
			return errorResult("report has no approvedFixes list"), nil
		}

		summary, err := newPatchService(cfg).Apply(ctx, projectPath, rep.ApprovedFixes, domain.PatchOptions{DryRun: true})
		if err != nil {
			return errorResult(fmt.Sprintf("planning failed: %v", err)), nil
		}
		return jsonResult(summary)
	}
}

func handleValidationResults(projectPath string) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		path, err := request.RequireString("report")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		rep, err := report.New().Load(resolve(projectPath, path))
		if err != nil {
			return errorResult(fmt.Sprintf("loading report failed: %v", err)), nil
		}
		if rep.ValidationResults == nil {
			return errorResult("report has not been validated yet; run a11yfix validate first"), nil
		}
		return jsonResult(rep.ValidationResults)
	}
}

// resolve makes relative paths relative to the project.
func resolve(projectPath, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectPath, path)
}

// jsonResult marshals v as indented JSON and returns it as a text content result.
func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
