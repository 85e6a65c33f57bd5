package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/cexll/repoqa/internal/config"
	"github.com/cexll/repoqa/internal/github"
	"github.com/cexll/repoqa/internal/gradio"
	"github.com/cexll/repoqa/internal/logging"
	"github.com/cexll/repoqa/internal/prefs"
	"github.com/cexll/repoqa/internal/runstore"
	"github.com/cexll/repoqa/internal/session"
	"github.com/cexll/repoqa/internal/status"
	"github.com/cexll/repoqa/internal/web"
	"github.com/cexll/repoqa/internal/workflow"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	loadDotEnv         = godotenv.Load
	newRunStore        = runstore.NewStore
	newWebHandler      = web.NewHandler
	defaultListenServe = http.ListenAndServe
)

func main() {
	if err := run(context.Background(), defaultListenServe); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(ctx context.Context, serve func(string, http.Handler) error) error {
	// Load .env file (ignore error if file doesn't exist)
	_ = loadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	logger.Info("Starting repoqa server",
		zap.Int("port", cfg.Port),
		zap.String("space", cfg.GradioSpace),
		zap.Bool("repo_info", cfg.RepoInfo))

	sess := session.New(session.Gradio(cfg.GradioSpace,
		gradio.WithHubURL(cfg.HFHubURL),
		gradio.WithToken(cfg.HFToken),
		gradio.WithLogger(logger.Named("gradio")),
	), logger.Named("session"))

	board := status.NewBoard()
	runs := newRunStore()

	wf := workflow.New(sess, board).
		WithStore(runs).
		WithEndpoints(cfg.AnalyzeEndpoint, cfg.GenerateEndpoint).
		WithLogger(logger.Named("workflow"))
	if cfg.RepoInfo {
		wf.WithRepoLookup(github.NewRepoLookup(nil, cfg.GitHubToken))
	}

	jar := prefs.NewCookieJar(cfg.SessionSecret, cfg.SecureCookies, logger.Named("prefs"))

	webHandler, err := newWebHandler(wf, board, runs, jar, web.Settings{
		DefaultQuestions: cfg.DefaultQuestions,
		MinQuestions:     cfg.MinQuestions,
		MaxQuestions:     cfg.MaxQuestions,
	}, logger.Named("web"))
	if err != nil {
		return fmt.Errorf("failed to initialize web handler: %w", err)
	}

	// Setup router
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// UI and API endpoints
	webHandler.RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Server listening",
		zap.String("addr", addr),
		zap.String("ui", fmt.Sprintf("http://localhost%s/", addr)),
		zap.String("health", fmt.Sprintf("http://localhost%s/health", addr)))

	if err := serve(addr, r); err != nil {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}
