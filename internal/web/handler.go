package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"mime"
	"net/http"
	"strings"

	"github.com/cexll/repoqa/internal/export"
	"github.com/cexll/repoqa/internal/prefs"
	"github.com/cexll/repoqa/internal/runstore"
	"github.com/cexll/repoqa/internal/status"
	"github.com/cexll/repoqa/internal/workflow"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

//go:embed templates/*
var templatesFS embed.FS

// Settings configures the question range control.
type Settings struct {
	DefaultQuestions int
	MinQuestions     int
	MaxQuestions     int
}

// Handler handles web UI requests
type Handler struct {
	workflow  *workflow.Workflow
	board     *status.Board
	runs      *runstore.Store
	jar       *prefs.CookieJar
	settings  Settings
	templates *template.Template
	logger    *zap.Logger
}

// NewHandler creates a new web handler
func NewHandler(wf *workflow.Workflow, board *status.Board, runs *runstore.Store, jar *prefs.CookieJar, settings Settings, logger *zap.Logger) (*Handler, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"statusColor":   statusColor,
		"statusIcon":    statusIcon,
		"logLevelColor": logLevelColor,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		workflow:  wf,
		board:     board,
		runs:      runs,
		jar:       jar,
		settings:  settings,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// RegisterRoutes registers web UI routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleIndex).Methods("GET")
	r.HandleFunc("/run", h.handleRun).Methods("POST")
	r.HandleFunc("/api/run", h.handleRun).Methods("POST")
	r.HandleFunc("/api/state", h.handleState).Methods("GET")
	r.HandleFunc("/api/clear", h.handleClear).Methods("POST")
	r.HandleFunc("/download", h.handleDownload).Methods("GET")
	r.HandleFunc("/runs", h.handleRunList).Methods("GET")
	r.HandleFunc("/runs/{id}", h.handleRunDetail).Methods("GET")
}

type runRequest struct {
	URL string          `json:"url"`
	N   json.RawMessage `json:"n"`
}

type runResponse struct {
	State status.Snapshot `json:"state"`
	RunID string          `json:"run_id,omitempty"`
	Pairs int             `json:"pairs,omitempty"`
	Error string          `json:"error,omitempty"`
	Field string          `json:"field,omitempty"`
}

// handleIndex renders the page with the last saved inputs
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	saved := h.jar.Bind(nil, r).Restore()

	url := ""
	if saved.URL != nil {
		url = *saved.URL
	}
	n := h.settings.DefaultQuestions
	if saved.Questions != nil {
		n = *saved.Questions
	}

	data := struct {
		URL       string
		Questions int
		Settings  Settings
		State     status.Snapshot
	}{
		URL:       url,
		Questions: n,
		Settings:  h.settings,
		State:     h.board.Snapshot(),
	}

	if err := h.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleRun runs the workflow. JSON requests get a JSON reply; form posts
// are redirected back to the page.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	asJSON := isJSON(r)

	var in workflow.Input
	if asJSON {
		var req runRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, runResponse{Error: "invalid request body"})
			return
		}
		in.URL = req.URL
		in.Questions = workflow.CoerceQuestions(strings.Trim(string(req.N), `"`), h.settings.DefaultQuestions)
	} else {
		in.URL = r.FormValue("url")
		in.Questions = workflow.CoerceQuestions(r.FormValue("n"), h.settings.DefaultQuestions)
	}
	in.Prefs = h.jar.Bind(w, r)

	// A run cannot be aborted from the page; a dropped connection only loses the reply.
	result, err := h.workflow.Run(context.WithoutCancel(r.Context()), in)

	if !asJSON {
		if errors.Is(err, workflow.ErrBusy) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	resp := runResponse{State: h.board.Snapshot()}
	var verr *workflow.ValidationError
	switch {
	case err == nil:
		resp.RunID = result.RunID
		resp.Pairs = len(result.Pairs)
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, workflow.ErrBusy):
		resp.Error = err.Error()
		writeJSON(w, http.StatusConflict, resp)
	case errors.As(err, &verr):
		resp.Error = verr.Message
		resp.Field = verr.Field
		writeJSON(w, http.StatusBadRequest, resp)
	default:
		resp.Error = resp.State.Error
		writeJSON(w, http.StatusBadGateway, resp)
	}
}

// handleState returns the current board for polling
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

// handleClear drops output, error and status
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if h.workflow.Running() {
		writeJSON(w, http.StatusConflict, runResponse{State: h.board.Snapshot(), Error: workflow.ErrBusy.Error()})
		return
	}
	h.board.Clear()
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

// handleDownload serves the last result as repo-qa.txt
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	raw := ""
	if out := h.board.Snapshot().Output; out != nil {
		raw = out.Raw
	}
	if !export.Download(w, raw) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleRunList renders the run history
func (h *Handler) handleRunList(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Runs []runstore.Run
	}{
		Runs: h.runs.List(),
	}

	if err := h.templates.ExecuteTemplate(w, "run_list.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleRunDetail renders one run with its log
func (h *Handler) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	run, ok := h.runs.Get(runID)
	if !ok {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	data := struct {
		Run runstore.Run
	}{
		Run: run,
	}

	if err := h.templates.ExecuteTemplate(w, "run_detail.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Helper functions for templates
func statusColor(s runstore.RunStatus) string {
	switch s {
	case runstore.StatusPending:
		return "#6c757d"
	case runstore.StatusRunning:
		return "#0d6efd"
	case runstore.StatusCompleted:
		return "#198754"
	case runstore.StatusFailed:
		return "#dc3545"
	default:
		return "#6c757d"
	}
}

func statusIcon(s runstore.RunStatus) string {
	switch s {
	case runstore.StatusPending:
		return "○"
	case runstore.StatusRunning:
		return "⟳"
	case runstore.StatusCompleted:
		return "✓"
	case runstore.StatusFailed:
		return "✗"
	default:
		return "○"
	}
}

func logLevelColor(level string) string {
	switch strings.ToLower(level) {
	case "error":
		return "#dc3545"
	case "success":
		return "#198754"
	case "info":
		return "#0d6efd"
	default:
		return "#6c757d"
	}
}
