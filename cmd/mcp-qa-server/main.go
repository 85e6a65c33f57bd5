package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cexll/repoqa/internal/config"
	"github.com/cexll/repoqa/internal/github"
	"github.com/cexll/repoqa/internal/gradio"
	"github.com/cexll/repoqa/internal/logging"
	"github.com/cexll/repoqa/internal/session"
	"github.com/cexll/repoqa/internal/status"
	"github.com/cexll/repoqa/internal/workflow"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const (
	serverName    = "repoqa"
	serverVersion = "v1.0.0"
	toolName      = "generate_repo_qa"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}

func run(ctx context.Context, transport mcp.Transport) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// stdout carries the protocol, logging.New writes to stderr.
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	server := newServer(cfg, logger)

	logger.Info("Starting MCP server",
		zap.String("space", cfg.GradioSpace),
		zap.String("tool", toolName))

	if err := server.Run(ctx, transport); err != nil {
		return err
	}
	logger.Info("MCP server stopped")
	return nil
}

func newServer(cfg *config.Config, logger *zap.Logger) *mcp.Server {
	sess := session.New(session.Gradio(cfg.GradioSpace,
		gradio.WithHubURL(cfg.HFHubURL),
		gradio.WithToken(cfg.HFToken),
		gradio.WithLogger(logger.Named("gradio")),
	), logger.Named("session"))

	wf := workflow.New(sess, status.NewBoard()).
		WithEndpoints(cfg.AnalyzeEndpoint, cfg.GenerateEndpoint).
		WithLogger(logger.Named("workflow"))
	if cfg.RepoInfo {
		wf.WithRepoLookup(github.NewRepoLookup(nil, cfg.GitHubToken))
	}

	tool := &qaTool{
		workflow:         wf,
		defaultQuestions: cfg.DefaultQuestions,
		logger:           logger.Named("mcp"),
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        toolName,
		Description: "Analyze a public GitHub repository and generate interview-style questions and answers about it",
	}, tool.HandleGenerate)

	return server
}
