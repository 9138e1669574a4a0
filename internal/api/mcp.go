package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"jobquest/internal/questionnaire"
	"jobquest/internal/storage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Assessor Assessor
	Store    *storage.Store // optional; if nil, the recent resource is not registered
}

// NewMCPServer creates an MCP server exposing the assessment over stdio, so
// agent clients can run the questionnaire without the HTTP frontend.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"jobquest",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("jobquest: questionnaire-driven job recommendations for neurodiverse candidates."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_questions",
			mcp.WithDescription("List the questionnaire questions with their answer options."),
		),
		mcpListQuestions(),
	)

	s.AddTool(
		mcp.NewTool("submit_assessment",
			mcp.WithDescription("Submit questionnaire answers and receive a work-style profile with job recommendations."),
			mcp.WithString("q1", mcp.Description("Answer letter for question 1 (A or B)"), mcp.Required()),
			mcp.WithString("q2", mcp.Description("Answer letter for question 2 (A or B)"), mcp.Required()),
			mcp.WithString("q3", mcp.Description("Answer letter for question 3 (A, B or C)"), mcp.Required()),
			mcp.WithString("q4", mcp.Description("Answer letter for question 4 (A, B or C)"), mcp.Required()),
			mcp.WithString("q5", mcp.Description("Optional free-text answer about other workplace preferences")),
		),
		mcpSubmitAssessment(deps),
	)

	s.AddTool(
		mcp.NewTool("get_assessment",
			mcp.WithDescription("Fetch a previously completed assessment by its ID."),
			mcp.WithString("assessment_id", mcp.Description("ID returned by submit_assessment"), mcp.Required()),
		),
		mcpGetAssessment(deps),
	)

	if deps.Store != nil {
		s.AddResource(
			mcp.NewResource(
				"assessments://recent",
				"Recent Assessments",
				mcp.WithResourceDescription("IDs and timestamps of the last 10 assessments"),
				mcp.WithMIMEType("application/json"),
			),
			mcpResourceRecent(deps),
		)
	}

	return s
}

func mcpListQuestions() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(questionnaire.Questions())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal questions: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSubmitAssessment(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		answers := questionnaire.Answers{
			Q1: req.GetString("q1", ""),
			Q2: req.GetString("q2", ""),
			Q3: req.GetString("q3", ""),
			Q4: req.GetString("q4", ""),
			Q5: req.GetString("q5", ""),
		}

		result, err := deps.Assessor.Process(ctx, answers)
		var incomplete *questionnaire.IncompleteError
		if errors.As(err, &incomplete) {
			return mcpError(incomplete.Error()), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("assessment failed: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetAssessment(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("assessment_id")
		if err != nil {
			return mcpError("assessment_id is required"), nil
		}

		result, err := deps.Assessor.Get(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return mcpError(fmt.Sprintf("assessment %s not found", id)), nil
		}
		if err != nil {
			return mcpError(fmt.Sprintf("failed to load assessment: %v", err)), nil
		}

		b, err := json.Marshal(result)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		records, err := deps.Store.ListRecentAssessments(10)
		if err != nil {
			return nil, fmt.Errorf("failed to list assessments: %w", err)
		}

		type recentEntry struct {
			ID        string `json:"assessment_id"`
			CreatedAt string `json:"created_at"`
		}

		entries := make([]recentEntry, len(records))
		for i, rec := range records {
			entries[i] = recentEntry{
				ID:        rec.ID,
				CreatedAt: time.Unix(rec.CreatedAt, 0).UTC().Format(time.RFC3339),
			}
		}

		b, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal assessments: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
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
