package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/relgate/relgate/internal/actions"
	"github.com/relgate/relgate/internal/ci"
	"github.com/relgate/relgate/internal/config"
	"github.com/relgate/relgate/internal/exec"
	"github.com/relgate/relgate/internal/gate"
	"github.com/relgate/relgate/internal/git"
	"github.com/relgate/relgate/internal/history"
	"github.com/relgate/relgate/internal/tui"
	"github.com/relgate/relgate/internal/watch"
	"github.com/relgate/relgate/pkg/release"
)

var (
	checkProject     string
	checkManifest    string
	checkChangelog   string
	checkDisplayName string
	checkTagPrefix   string
	checkDate        string
	checkSkipCI      bool
	checkInteractive bool
	checkWatch       bool
	checkNoHistory   bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the publish gate",
	Long: `Run the publish gate pipeline against the current repository.

Steps:
  1. Parse the declared version from the package manifest
  2. Resolve HEAD and fetch the release tag from the remote
  3. Verify the tag points at HEAD
  4. Verify the gating CI check reported success
  5. Extract the changelog entry for this release

On success the version and changelog body are written to the workflow
output channel. Any failure prints an ::error:: annotation and exits
non-zero.

Examples:
  relgate check                    # full gate, headless
  relgate check --interactive      # live step display
  relgate check --watch            # re-check local files on change
  relgate check --project gadget   # use [projects.gadget] settings`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkProject, "project", "", "Named project from [projects.<name>]")
	checkCmd.Flags().StringVar(&checkManifest, "manifest", "", "Override the manifest path")
	checkCmd.Flags().StringVar(&checkChangelog, "changelog", "", "Override the changelog path")
	checkCmd.Flags().StringVar(&checkDisplayName, "display-name", "", "Override the changelog display name")
	checkCmd.Flags().StringVar(&checkTagPrefix, "tag-prefix", "", "Override the tag prefix")
	checkCmd.Flags().StringVar(&checkDate, "date", "", "Changelog header date (YYYY-MM-DD, default today)")
	checkCmd.Flags().BoolVar(&checkSkipCI, "skip-ci", false, "Skip the CI status step")
	checkCmd.Flags().BoolVar(&checkInteractive, "interactive", false, "Show live step progress in a terminal UI")
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "Re-run local checks when the manifest or changelog changes")
	checkCmd.Flags().BoolVar(&checkNoHistory, "no-history", false, "Do not record this run in the history database")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	project, err := cfg.ResolveProject(checkProject)
	if err != nil {
		return err
	}
	applyFlagOverrides(&project)

	if err := project.Validate(); err != nil {
		return err
	}

	now, err := dateClock(checkDate)
	if err != nil {
		return err
	}

	// Create context with cancellation for all modes
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if checkWatch {
		return runCheckWatch(ctx, project, now)
	}
	if checkInteractive {
		return runCheckInteractive(ctx, cfg, project, now)
	}
	return runCheckHeadless(ctx, cfg, project, now)
}

// runCheckHeadless runs the full pipeline with one printed line per
// step. This is the mode CI invokes.
func runCheckHeadless(ctx context.Context, cfg *config.Config, project release.Project, now func() time.Time) error {
	runner := exec.NewRunner()
	resolver := git.NewResolver(runner, ".")
	checker := ci.NewChecker(runner, ".", project.CI)
	emitter := actions.NewEmitter()

	engine := gate.New(project, resolver, checker,
		gate.WithEmitter(emitter),
		gate.WithObserver(printObserver()),
		gate.WithClock(now),
		gate.WithSkipCI(checkSkipCI),
	)

	startedAt := time.Now()
	res := engine.Run(ctx)
	recordRun(cfg, res, startedAt)

	if res.Status == release.RunPassed {
		printStatus("✓", fmt.Sprintf("release gate passed for %s %s", project.DisplayName, res.Version), color.FgGreen)
		return nil
	}

	emitter.Error(verdictMessage(res))
	os.Exit(1)
	return nil
}

// runCheckInteractive runs the full pipeline behind a live terminal
// display. The verdict and exit code match headless mode.
func runCheckInteractive(ctx context.Context, cfg *config.Config, project release.Project, now func() time.Time) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("--interactive requires a terminal (stdout is not a tty)")
	}

	runner := exec.NewRunner()
	resolver := git.NewResolver(runner, ".")
	checker := ci.NewChecker(runner, ".", project.CI)

	program, _ := tui.NewProgram(project.DisplayName, release.Pipeline())

	opts := []gate.Option{
		gate.WithObserver(tui.Observer(program)),
		gate.WithClock(now),
		gate.WithSkipCI(checkSkipCI),
	}
	// Outputs only go to a real channel here; legacy stdout emission
	// would fight the terminal display.
	if os.Getenv("GITHUB_OUTPUT") != "" {
		opts = append(opts, gate.WithEmitter(actions.NewEmitter()))
	}
	engine := gate.New(project, resolver, checker, opts...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startedAt := time.Now()
	resCh := make(chan *gate.Result, 1)
	go func() {
		res := engine.Run(ctx)
		resCh <- res
		program.Send(tui.RunDoneMsg{Status: res.Status, Message: verdictMessage(res)})
	}()

	_, runErr := program.Run()
	// Quitting the display aborts a still-running gate.
	cancel()
	res := <-resCh
	if runErr != nil {
		return fmt.Errorf("interactive display failed: %w", runErr)
	}

	recordRun(cfg, res, startedAt)

	switch res.Status {
	case release.RunPassed:
		printStatus("✓", verdictMessage(res), color.FgGreen)
		return nil
	case release.RunCanceled:
		printStatus("⚠", "run canceled", color.FgYellow)
	default:
		printStatus("✗", verdictMessage(res), color.FgRed)
	}
	os.Exit(1)
	return nil
}

// runCheckWatch re-runs the local-only steps whenever the manifest or
// changelog changes. Nothing is emitted or recorded; this is a dev
// loop for fixing a failing gate.
func runCheckWatch(ctx context.Context, project release.Project, now func() time.Time) error {
	runLocal := func() {
		engine := gate.New(project, nil, nil,
			gate.WithLocalOnly(true),
			gate.WithObserver(printObserver()),
			gate.WithClock(now),
		)
		res := engine.Run(ctx)
		if res.Status == release.RunPassed {
			printStatus("✓", fmt.Sprintf("local checks passed for %s %s", project.DisplayName, res.Version), color.FgGreen)
		}
		fmt.Println()
	}

	runLocal()

	w, err := watch.New([]string{project.Manifest, project.Changelog}, func(path string) {
		fmt.Printf("%s changed\n", path)
		runLocal()
	})
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	fmt.Println("Watching for changes. Press Ctrl-C to stop.")
	<-ctx.Done()
	fmt.Println("\nStopped.")
	return nil
}

// printObserver returns an observer that prints one line per finished
// step.
func printObserver() gate.Observer {
	return func(ev gate.Event) {
		if ev.Result == nil {
			return
		}
		if ev.Result.Passed {
			printStatus("✓", fmt.Sprintf("%s: %s", ev.Step.Title(), ev.Result.Detail), color.FgGreen)
		} else {
			printStatus("✗", fmt.Sprintf("%s: %v", ev.Step.Title(), ev.Result.Err), color.FgRed)
		}
	}
}

// verdictMessage summarizes a finished run in one line.
func verdictMessage(res *gate.Result) string {
	if res.Status == release.RunPassed {
		return fmt.Sprintf("release gate passed for %s %s", res.Project.DisplayName, res.Version)
	}
	if err := res.Err(); err != nil {
		return err.Error()
	}
	return "release gate failed"
}

// recordRun stores the outcome in the run history. Failures only log;
// history never affects the verdict.
func recordRun(cfg *config.Config, res *gate.Result, startedAt time.Time) {
	if checkNoHistory || !cfg.History.Enabled {
		return
	}

	db, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		log.Warn().Err(err).Msg("run history unavailable")
		return
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Warn().Err(err).Msg("run history migration failed")
		return
	}
	if err := db.CreateRun(history.NewRun(res, startedAt)); err != nil {
		log.Warn().Err(err).Msg("failed to record run")
	}
}

// applyFlagOverrides lets command-line flags take precedence over
// configuration.
func applyFlagOverrides(p *release.Project) {
	if checkManifest != "" {
		p.Manifest = checkManifest
	}
	if checkChangelog != "" {
		p.Changelog = checkChangelog
	}
	if checkDisplayName != "" {
		p.DisplayName = checkDisplayName
	}
	if checkTagPrefix != "" {
		p.TagPrefix = checkTagPrefix
	}
}

// dateClock returns the time source for the changelog header date.
func dateClock(date string) (func() time.Time, error) {
	if date == "" {
		return time.Now, nil
	}
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid --date %q (want YYYY-MM-DD): %w", date, err)
	}
	return func() time.Time { return t }, nil
}
