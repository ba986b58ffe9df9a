package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/minute/internal/report"
	"github.com/kalambet/minute/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Service *report.Service
	Version string
}

// NewMCPServer creates an MCP server exposing read and export tools over the
// report collection. Lifecycle mutations stay HTTP-only.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"minute",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithInstructions("minute — meeting recording reports: transcriptions, structured summaries and exports."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_reports",
			mcp.WithDescription("List recent meeting reports, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of reports (default 20)")),
		),
		mcpListReports(deps),
	)

	s.AddTool(
		mcp.NewTool("get_report",
			mcp.WithDescription("Fetch one meeting report with its structured summary fields."),
			mcp.WithNumber("id", mcp.Description("Report id"), mcp.Required()),
		),
		mcpGetReport(deps),
	)

	s.AddTool(
		mcp.NewTool("get_transcript",
			mcp.WithDescription("Return the full transcription text of a report."),
			mcp.WithNumber("id", mcp.Description("Report id"), mcp.Required()),
		),
		mcpGetTranscript(deps),
	)

	s.AddTool(
		mcp.NewTool("export_markdown",
			mcp.WithDescription("Render a report as Markdown and return the document text."),
			mcp.WithNumber("id", mcp.Description("Report id"), mcp.Required()),
		),
		mcpExportMarkdown(deps),
	)

	return s
}

func mcpListReports(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 20)
		if limit <= 0 {
			limit = 20
		}
		if limit > 100 {
			limit = 100
		}

		details, err := deps.Service.List(ctx, 0, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("listing reports failed: %v", err)), nil
		}

		type reportSummary struct {
			ID               int64  `json:"id"`
			OriginalFilename string `json:"original_filename"`
			Status           string `json:"status"`
			CreatedAt        string `json:"created_at"`
		}
		results := make([]reportSummary, len(details))
		for i, d := range details {
			results[i] = reportSummary{
				ID:               d.ID,
				OriginalFilename: d.OriginalFilename,
				Status:           d.Status,
				CreatedAt:        d.CreatedAt.Format("2006-01-02 15:04"),
			}
		}

		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetReport(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := mcpReportID(req)
		if !ok {
			return mcpError("id is required"), nil
		}

		detail, err := deps.Service.Get(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("report %d not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("fetching report failed: %v", err)), nil
		}

		b, err := json.Marshal(detail)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal report: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetTranscript(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := mcpReportID(req)
		if !ok {
			return mcpError("id is required"), nil
		}

		detail, err := deps.Service.Get(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("report %d not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("fetching report failed: %v", err)), nil
		}
		if detail.Transcription == nil {
			return mcpError(fmt.Sprintf("report %d has no transcription yet", id)), nil
		}
		return mcpText(*detail.Transcription), nil
	}
}

func mcpExportMarkdown(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := mcpReportID(req)
		if !ok {
			return mcpError("id is required"), nil
		}

		data, _, err := deps.Service.RenderMarkdown(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("report %d not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("export failed: %v", err)), nil
		}
		return mcpText(string(data)), nil
	}
}

func mcpReportID(req mcp.CallToolRequest) (int64, bool) {
	id := req.GetInt("id", 0)
	if id <= 0 {
		return 0, false
	}
	return int64(id), true
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
