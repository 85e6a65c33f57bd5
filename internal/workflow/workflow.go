// Package workflow runs the two-step remote exchange that turns a repository
// URL into generated Q&A text.
package workflow

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cexll/repoqa/internal/github"
	"github.com/cexll/repoqa/internal/prefs"
	"github.com/cexll/repoqa/internal/qa"
	"github.com/cexll/repoqa/internal/repourl"
	"github.com/cexll/repoqa/internal/runstore"
	"github.com/cexll/repoqa/internal/session"
	"github.com/cexll/repoqa/internal/status"
	"go.uber.org/zap"
)

// Status lines shown while a run progresses.
const (
	StatusConnecting = "Connecting…"
	StatusAnalyzing  = "Analyzing repository…"
	StatusGenerating = "Generating Q&A…"
	StatusDone       = "Done"
)

// Default remote endpoint names.
const (
	DefaultAnalyzeEndpoint  = "/on_analyze"
	DefaultGenerateEndpoint = "/on_generate"
)

// ClientSource yields the connected remote client.
type ClientSource interface {
	Client(ctx context.Context) (session.Client, error)
}

// Reporter receives user-visible progress. *status.Board implements it.
type Reporter interface {
	Begin(status string)
	SetStatus(status string)
	SetError(msg string)
	Succeed(out status.Output)
	End(status string)
}

// RepoLookup fetches repository metadata. *github.RepoLookup implements it.
type RepoLookup interface {
	Lookup(ctx context.Context, owner, repo string) (*github.RepoCard, error)
}

// RepoAttacher is an optional Reporter extension that receives the
// repository card once the run has ended. *status.Board implements it.
type RepoAttacher interface {
	AttachRepo(raw string, card *github.RepoCard)
}

// DefaultRepoLookupTimeout bounds the repository card lookup.
const DefaultRepoLookupTimeout = 5 * time.Second

// Input is one run request.
type Input struct {
	URL       string
	Questions int
	// Prefs overrides the workflow's preference store for this run.
	Prefs prefs.Store
}

// Result is a successful run.
type Result struct {
	RunID string
	Raw   string
	Text  string
	HTML  template.HTML
	Pairs []qa.Pair
	Repo  *github.RepoCard

	url string
}

const (
	idle int32 = iota
	running
)

// Workflow runs at most one analysis at a time.
type Workflow struct {
	source   ClientSource
	reporter Reporter
	prefs    prefs.Store
	store    *runstore.Store
	repos    RepoLookup
	logger   *zap.Logger

	repoTimeout time.Duration

	analyzeEndpoint  string
	generateEndpoint string

	state atomic.Int32
}

// New creates a workflow reading its client from source and reporting to reporter.
func New(source ClientSource, reporter Reporter) *Workflow {
	return &Workflow{
		source:           source,
		reporter:         reporter,
		logger:           zap.NewNop(),
		repoTimeout:      DefaultRepoLookupTimeout,
		analyzeEndpoint:  DefaultAnalyzeEndpoint,
		generateEndpoint: DefaultGenerateEndpoint,
	}
}

// WithPrefs sets the default preference store.
func (w *Workflow) WithPrefs(store prefs.Store) *Workflow {
	w.prefs = store
	return w
}

// WithStore records every run in store.
func (w *Workflow) WithStore(store *runstore.Store) *Workflow {
	w.store = store
	return w
}

// WithRepoLookup attaches repository metadata to successful results. The
// lookup runs after the run has ended.
func (w *Workflow) WithRepoLookup(lookup RepoLookup) *Workflow {
	w.repos = lookup
	return w
}

// WithRepoLookupTimeout bounds the repository lookup. Non-positive values
// keep DefaultRepoLookupTimeout.
func (w *Workflow) WithRepoLookupTimeout(d time.Duration) *Workflow {
	if d > 0 {
		w.repoTimeout = d
	}
	return w
}

// WithEndpoints overrides the remote endpoint names. Empty values keep the defaults.
func (w *Workflow) WithEndpoints(analyze, generate string) *Workflow {
	if analyze != "" {
		w.analyzeEndpoint = analyze
	}
	if generate != "" {
		w.generateEndpoint = generate
	}
	return w
}

// WithLogger sets the logger.
func (w *Workflow) WithLogger(logger *zap.Logger) *Workflow {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// Running reports whether a run is in flight.
func (w *Workflow) Running() bool {
	return w.state.Load() == running
}

// Validate checks a trimmed repository URL.
func Validate(url string) error {
	if url == "" {
		return &ValidationError{Field: FieldURL, Message: MsgURLRequired}
	}
	if !repourl.Valid(url) {
		return &ValidationError{Field: FieldURL, Message: MsgURLInvalid}
	}
	return nil
}

// Run validates in, then analyzes the repository and generates Q&A. It
// returns ErrBusy if another run is in flight, a *ValidationError for bad
// input, or the remote failure. The repository card, when enabled, is looked
// up after the board shows Done and the next run is allowed.
func (w *Workflow) Run(ctx context.Context, in Input) (*Result, error) {
	result, err := w.run(ctx, in)
	if err != nil {
		return nil, err
	}
	w.attachRepo(ctx, result)
	return result, nil
}

func (w *Workflow) run(ctx context.Context, in Input) (*Result, error) {
	if !w.state.CompareAndSwap(idle, running) {
		return nil, ErrBusy
	}
	defer w.state.Store(idle)

	url := strings.TrimSpace(in.URL)
	w.reporter.SetError("")
	if err := Validate(url); err != nil {
		w.reporter.SetError(err.Error())
		return nil, err
	}

	if store := w.prefsFor(in); store != nil {
		store.Save(url, in.Questions)
	}

	runID := w.record(url, in.Questions)

	final := ""
	w.reporter.Begin(StatusConnecting)
	defer func() { w.reporter.End(final) }()

	result, err := w.execute(ctx, runID, url, in.Questions)
	if err != nil {
		msg := "Error: " + errorMessage(err)
		w.reporter.SetError(msg)
		w.logger.Error("Analysis failed", zap.String("run_id", runID), zap.String("url", url), zap.Error(err))
		if w.store != nil {
			w.store.AddLog(runID, "error", msg)
			w.store.Fail(runID, msg)
		}
		return nil, err
	}

	w.reporter.Succeed(status.Output{
		HTML: result.HTML,
		Text: result.Text,
		Raw:  result.Raw,
	})
	final = StatusDone
	if w.store != nil {
		w.store.AddLog(runID, "success", StatusDone)
		w.store.Complete(runID, len(result.Pairs))
	}
	w.logger.Info("Analysis complete",
		zap.String("run_id", runID),
		zap.String("url", url),
		zap.Int("pairs", len(result.Pairs)))
	return result, nil
}

func (w *Workflow) execute(ctx context.Context, runID, url string, n int) (*Result, error) {
	client, err := w.source.Client(ctx)
	if err != nil {
		return nil, err
	}

	w.phase(runID, StatusAnalyzing)
	analyzed, err := client.Predict(ctx, w.analyzeEndpoint, map[string]any{"url": url})
	if err != nil {
		return nil, err
	}
	if note := analyzed.Text(0); note != "" {
		w.logger.Debug("Analyze finished", zap.String("run_id", runID), zap.String("note", note))
		w.log(runID, "info", "Remote: "+note)
	}

	w.phase(runID, StatusGenerating)
	generated, err := client.Predict(ctx, w.generateEndpoint, map[string]any{"n": n})
	if err != nil {
		return nil, err
	}

	raw := generated.Text(0)
	result := &Result{
		RunID: runID,
		Raw:   raw,
		Text:  qa.ExtractPlain(raw),
		HTML:  qa.RenderColored(raw),
		Pairs: qa.Pairs(raw),
		url:   url,
	}
	return result, nil
}

// attachRepo is best-effort; failures and timeouts are only logged.
func (w *Workflow) attachRepo(ctx context.Context, result *Result) {
	if w.repos == nil {
		return
	}
	repo, err := repourl.Parse(result.url)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.repoTimeout)
	defer cancel()

	card, err := w.repos.Lookup(ctx, repo.Owner, repo.Name)
	if err != nil {
		w.logger.Warn("Repository lookup failed", zap.String("run_id", result.RunID), zap.String("repo", repo.FullName()), zap.Error(err))
		return
	}
	if card == nil {
		return
	}
	result.Repo = card
	if a, ok := w.reporter.(RepoAttacher); ok {
		a.AttachRepo(result.Raw, card)
	}
}

func (w *Workflow) prefsFor(in Input) prefs.Store {
	if in.Prefs != nil {
		return in.Prefs
	}
	return w.prefs
}

func (w *Workflow) record(url string, n int) string {
	if w.store == nil {
		return ""
	}
	id := w.store.Create(url, n)
	w.store.UpdateStatus(id, runstore.StatusRunning)
	w.store.AddLog(id, "info", StatusConnecting)
	return id
}

func (w *Workflow) phase(runID, msg string) {
	w.reporter.SetStatus(msg)
	w.log(runID, "info", msg)
}

func (w *Workflow) log(runID, level, msg string) {
	if w.store != nil {
		w.store.AddLog(runID, level, msg)
	}
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fmt.Sprintf("%T", err)
}
