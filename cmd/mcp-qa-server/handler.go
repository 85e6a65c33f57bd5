package main

import (
	"context"
	"errors"

	"github.com/cexll/repoqa/internal/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// GenerateParams defines the input parameters for the tool
type GenerateParams struct {
	URL string `json:"url" jsonschema:"GitHub repository URL, e.g. https://github.com/owner/repo"`
	N   int    `json:"n,omitempty" jsonschema:"Number of questions to generate"`
}

// qaTool runs the workflow on behalf of MCP clients.
type qaTool struct {
	workflow         *workflow.Workflow
	defaultQuestions int
	logger           *zap.Logger
}

// HandleGenerate handles the generate_repo_qa tool call.
// Validation and remote failures are reported as tool errors so the
// calling model can read them; only protocol problems return an error.
func (q *qaTool) HandleGenerate(
	ctx context.Context,
	req *mcp.CallToolRequest,
	params GenerateParams,
) (*mcp.CallToolResult, any, error) {
	n := params.N
	if n == 0 {
		n = q.defaultQuestions
	}
	q.logger.Info("Received generate_repo_qa request", zap.String("url", params.URL), zap.Int("n", n))

	result, err := q.workflow.Run(ctx, workflow.Input{URL: params.URL, Questions: n})
	if err != nil {
		q.logger.Warn("generate_repo_qa failed", zap.Error(err))

		text := "Error: " + err.Error()
		var verr *workflow.ValidationError
		if errors.As(err, &verr) {
			text = verr.Message
		}
		return errorResult(text), nil, nil
	}

	if result.Text == "" {
		return errorResult("Error: the Space returned no Q&A text"), nil, nil
	}

	q.logger.Info("generate_repo_qa completed",
		zap.String("run_id", result.RunID),
		zap.Int("pairs", len(result.Pairs)))

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.Text},
		},
	}, nil, nil
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}
