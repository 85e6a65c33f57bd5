package main

import (
	"fmt"
	"io"
	"time"

	"github.com/cexll/repoqa/internal/config"
	"github.com/cexll/repoqa/internal/export"
	"github.com/cexll/repoqa/internal/github"
	"github.com/cexll/repoqa/internal/gradio"
	"github.com/cexll/repoqa/internal/logging"
	"github.com/cexll/repoqa/internal/prefs"
	"github.com/cexll/repoqa/internal/qa"
	"github.com/cexll/repoqa/internal/session"
	"github.com/cexll/repoqa/internal/status"
	"github.com/cexll/repoqa/internal/workflow"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli holds the process streams and the clipboard so tests can swap them.
type cli struct {
	stdout    io.Writer
	stderr    io.Writer
	clipboard export.Clipboard
}

type askOptions struct {
	questions int
	copy      bool
	download  string
	plain     bool
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "repoqa",
		Short: "Generate interview Q&A for a GitHub repository",
		Long: `repoqa sends a GitHub repository to a hosted Gradio Space, which analyzes it
and writes interview-style questions and answers about the codebase.

The last URL and question count are remembered between runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.AddCommand(newAskCmd(c))
	return root
}

func newAskCmd(c *cli) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [repo-url]",
		Short: "Analyze a repository and print generated Q&A",
		Long: `Analyze a repository and print generated Q&A.

If repo-url or -n is omitted, the values from the previous run are used.
Questions are printed in blue and answers in green unless --plain is set.`,
		Example: `  repoqa ask https://github.com/owner/repo -n 8
  repoqa ask --copy
  repoqa ask https://github.com/owner/repo --download .`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.runAsk(cmd, args, opts)
			if err != nil {
				fmt.Fprintln(c.stderr, formatError(err))
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&opts.questions, "questions", "n", 0, "number of questions to generate")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "copy the Q&A text to the clipboard")
	cmd.Flags().StringVar(&opts.download, "download", "", "save the Q&A text as repo-qa.txt in `DIR`")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print without colours")
	return cmd
}

func (c *cli) runAsk(cmd *cobra.Command, args []string, opts *askOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	prefsPath := cfg.PrefsFile
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	store := prefs.NewFileStore(prefsPath, logger.Named("prefs"))
	saved := store.Restore()

	in := workflow.Input{Questions: cfg.DefaultQuestions}
	if len(args) > 0 {
		in.URL = args[0]
	} else if saved.URL != nil {
		in.URL = *saved.URL
	}
	if cmd.Flags().Changed("questions") {
		in.Questions = opts.questions
	} else if saved.Questions != nil {
		in.Questions = *saved.Questions
	}

	board := status.NewBoard()
	last := ""
	board.Subscribe(func(s status.Snapshot) {
		if s.Status != "" && s.Status != last {
			fmt.Fprintln(c.stderr, s.Status)
		}
		last = s.Status
	})

	sess := session.New(session.Gradio(cfg.GradioSpace,
		gradio.WithHubURL(cfg.HFHubURL),
		gradio.WithToken(cfg.HFToken),
		gradio.WithLogger(logger.Named("gradio")),
	), logger.Named("session"))

	wf := workflow.New(sess, board).
		WithPrefs(store).
		WithEndpoints(cfg.AnalyzeEndpoint, cfg.GenerateEndpoint).
		WithLogger(logger.Named("workflow"))
	if cfg.RepoInfo {
		wf.WithRepoLookup(github.NewRepoLookup(nil, cfg.GitHubToken))
	}

	result, err := wf.Run(cmd.Context(), in)
	if err != nil {
		return err
	}

	if result.Repo != nil {
		printRepoCard(c.stderr, result.Repo)
	}

	if opts.plain {
		fmt.Fprintln(c.stdout, result.Text)
	} else {
		fmt.Fprintln(c.stdout, qa.RenderTerminal(result.Raw, qa.DefaultTerminalStyles()))
	}

	if opts.copy {
		export.Copy(c.clipboard, lineFlasher{w: c.stderr}, result.Text)
	}

	if opts.download != "" {
		path, err := export.WriteFile(opts.download, result.Raw)
		if err != nil {
			return err
		}
		if path != "" {
			fmt.Fprintf(c.stderr, "Saved %s\n", path)
		}
	}

	logger.Debug("ask finished", zap.String("run_id", result.RunID))
	return nil
}

// formatError mirrors the error line the web page shows.
func formatError(err error) string {
	if workflow.IsValidation(err) {
		return err.Error()
	}
	return "Error: " + err.Error()
}

func printRepoCard(w io.Writer, card *github.RepoCard) {
	fmt.Fprintf(w, "%s ★ %d  forks %d", card.FullName, card.Stars, card.Forks)
	if card.Language != "" {
		fmt.Fprintf(w, "  %s", card.Language)
	}
	fmt.Fprintln(w)
	if card.Description != "" {
		fmt.Fprintln(w, card.Description)
	}
}

// lineFlasher prints flash messages once; a terminal has no status line to clear.
type lineFlasher struct {
	w io.Writer
}

func (f lineFlasher) Flash(msg string, _ time.Duration) {
	fmt.Fprintln(f.w, msg)
}
