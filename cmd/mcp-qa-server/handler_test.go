package main

import (
	"context"
	"strings"
	"testing"

	"github.com/cexll/repoqa/internal/config"
	"github.com/cexll/repoqa/internal/gradio"
	"github.com/cexll/repoqa/internal/gradio/gradiotest"
	"github.com/cexll/repoqa/internal/session"
	"github.com/cexll/repoqa/internal/status"
	"github.com/cexll/repoqa/internal/workflow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

func newTestTool(t *testing.T, app *gradiotest.Server) *qaTool {
	t.Helper()
	sess := session.New(session.Gradio(app.URL, gradio.WithHTTPClient(app.Client())), nil)
	return &qaTool{
		workflow:         workflow.New(sess, status.NewBoard()),
		defaultQuestions: 3,
		logger:           zap.NewNop(),
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %+v", res)
	}
	text, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want *mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func TestHandleGenerate_Success(t *testing.T) {
	app := gradiotest.NewServer()
	defer app.Close()

	tool := newTestTool(t, app)
	res, _, err := tool.HandleGenerate(context.Background(), nil, GenerateParams{
		URL: "https://github.com/golang/go",
		N:   2,
	})
	if err != nil {
		t.Fatalf("HandleGenerate() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}

	want := "Q1: Question 1?\nA1: Answer 1.\nQ2: Question 2?\nA2: Answer 2."
	if got := resultText(t, res); got != want {
		t.Fatalf("text = %q, want %q", got, want)
	}
}

func TestHandleGenerate_DefaultQuestionCount(t *testing.T) {
	app := gradiotest.NewServer()
	defer app.Close()

	tool := newTestTool(t, app)
	res, _, err := tool.HandleGenerate(context.Background(), nil, GenerateParams{URL: "https://github.com/golang/go"})
	if err != nil {
		t.Fatalf("HandleGenerate() error = %v", err)
	}
	if got := strings.Count(resultText(t, res), "\nA"); got != 3 {
		t.Fatalf("answers = %d, want 3", got)
	}
}

func TestHandleGenerate_ValidationErrors(t *testing.T) {
	app := gradiotest.NewServer()
	defer app.Close()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"empty url", "   ", workflow.MsgURLRequired},
		{"not github", "https://gitlab.com/owner/repo", workflow.MsgURLInvalid},
		{"extra path", "https://github.com/owner/repo/tree/main", workflow.MsgURLInvalid},
	}

	tool := newTestTool(t, app)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, err := tool.HandleGenerate(context.Background(), nil, GenerateParams{URL: tt.url, N: 5})
			if err != nil {
				t.Fatalf("HandleGenerate() error = %v", err)
			}
			if !res.IsError {
				t.Fatal("expected error result")
			}
			if got := resultText(t, res); got != tt.want {
				t.Fatalf("text = %q, want %q", got, tt.want)
			}
		})
	}

	if calls := app.Calls(); len(calls) != 0 {
		t.Fatalf("expected no remote calls, got %d", len(calls))
	}
}

func TestHandleGenerate_RemoteFailure(t *testing.T) {
	app := gradiotest.NewServer()
	defer app.Close()
	app.Fail("/on_analyze", "repository too large")

	tool := newTestTool(t, app)
	res, _, err := tool.HandleGenerate(context.Background(), nil, GenerateParams{URL: "https://github.com/golang/go", N: 5})
	if err != nil {
		t.Fatalf("HandleGenerate() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result")
	}
	if got := resultText(t, res); !strings.HasPrefix(got, "Error: ") || !strings.Contains(got, "repository too large") {
		t.Fatalf("text = %q, want remote error", got)
	}
}

func TestHandleGenerate_EmptyOutput(t *testing.T) {
	app := gradiotest.NewServer()
	defer app.Close()
	app.SetGenerate(func(string, int) string { return "   " })

	tool := newTestTool(t, app)
	res, _, err := tool.HandleGenerate(context.Background(), nil, GenerateParams{URL: "https://github.com/golang/go", N: 5})
	if err != nil {
		t.Fatalf("HandleGenerate() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("expected error result for empty output")
	}
}

func TestServer_ListsAndCallsTool(t *testing.T) {
	app := gradiotest.NewServer()
	defer app.Close()

	cfg := &config.Config{
		GradioSpace:      app.URL,
		AnalyzeEndpoint:  workflow.DefaultAnalyzeEndpoint,
		GenerateEndpoint: workflow.DefaultGenerateEndpoint,
		DefaultQuestions: 1,
	}
	server := newServer(cfg, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer clientSession.Close()

	tools, err := clientSession.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(tools.Tools) != 1 || tools.Tools[0].Name != toolName {
		t.Fatalf("tools = %+v, want only %s", tools.Tools, toolName)
	}

	res, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: map[string]any{"url": "https://github.com/golang/go"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, res))
	}
	if got := resultText(t, res); got != "Q1: Question 1?\nA1: Answer 1." {
		t.Fatalf("text = %q", got)
	}
}
