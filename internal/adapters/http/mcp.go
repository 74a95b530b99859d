package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/regulation-assistant/internal/core/ports"
)

const (
	mcpServerName    = "regulation-assistant"
	mcpServerVersion = "1.0.0"
	askToolName      = "ask_regulation"
)

// newMCPServer exposes the answer pipeline as a single MCP tool.
func newMCPServer(answerer ports.QuestionAnswerer, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(mcpServerName, mcpServerVersion, server.WithToolCapabilities(false))
	s.AddTool(
		mcp.NewTool(askToolName,
			mcp.WithDescription("Answer a question about university regulations using the indexed regulation documents."),
			mcp.WithString("question",
				mcp.Required(),
				mcp.Description("Question in natural language, Turkish preferred."),
			),
		),
		askToolHandler(answerer, logger),
	)
	return s
}

func newMCPHandler(answerer ports.QuestionAnswerer, logger *slog.Logger) http.Handler {
	return server.NewStreamableHTTPServer(newMCPServer(answerer, logger))
}

func askToolHandler(answerer ports.QuestionAnswerer, logger *slog.Logger) server.ToolHandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || strings.TrimSpace(question) == "" {
			return mcp.NewToolResultError("question is required"), nil
		}

		answer := answerer.ProcessQuery(ctx, question)
		payload, err := json.Marshal(answer)
		if err != nil {
			logger.Error("mcp_answer_encode_failed", "error", err)
			return mcp.NewToolResultText(answer.Response), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}
