package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relgate/relgate/internal/config"
	"github.com/relgate/relgate/internal/history"
	"github.com/relgate/relgate/pkg/release"
)

var (
	historyProject      string
	historyLimit        int
	historyPurge        time.Duration
	historyClearProject string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded gate runs",
	Long: `Display gate runs recorded by 'relgate check'.

Shows the most recent runs first. Use --project to filter, --limit to
show more, and --purge to delete runs older than a duration.

Examples:
  relgate history
  relgate history --project gadget --limit 50
  relgate history --purge 720h
  relgate history show run-1a2b3c4d
  relgate history clear`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete recorded runs",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().StringVar(&historyProject, "project", "", "Only show runs for this project")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
	historyCmd.Flags().DurationVar(&historyPurge, "purge", 0, "Delete runs older than this duration (e.g. 720h)")

	historyClearCmd.Flags().StringVar(&historyClearProject, "project", "", "Only delete runs for this project")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
}

// openHistory opens the run database and applies migrations.
func openHistory(cfg *config.Config) (*history.DB, error) {
	db, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate run history: %w", err)
	}
	return db, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if historyPurge > 0 {
		n, err := db.PurgeOldRuns(historyPurge)
		if err != nil {
			return fmt.Errorf("purge runs: %w", err)
		}
		fmt.Printf("Purged %d runs older than %s.\n", n, historyPurge)
		return nil
	}

	runs, err := db.ListRuns(historyProject, historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs. Run 'relgate check' to record one.")
		return nil
	}

	for _, r := range runs {
		displayRunLine(&r)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	run, err := db.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("no run %s in history", args[0])
	}

	displayRunDetail(run)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.ClearRuns(historyClearProject)
	if err != nil {
		return fmt.Errorf("clear runs: %w", err)
	}

	fmt.Printf("Deleted %d runs.\n", n)
	return nil
}

// displayRunLine prints a one-line summary of a recorded run.
func displayRunLine(r *history.Run) {
	elapsed := formatDuration(time.Since(r.StartedAt))
	line := fmt.Sprintf("%s  %s %s  %s ago", r.ID, r.Project, r.Version, elapsed)

	switch r.Status {
	case release.RunPassed:
		printStatus("✓", line, color.FgGreen)
	case release.RunCanceled:
		printStatus("⚠", line+"  (canceled)", color.FgYellow)
	default:
		printStatus("✗", fmt.Sprintf("%s  (%s: %s)", line, r.FailedStep, r.Error), color.FgRed)
	}
}

// displayRunDetail prints a full recorded run with its steps.
func displayRunDetail(r *history.Run) {
	fmt.Printf("Run: %s\n", r.ID)
	fmt.Printf("  Project: %s\n", r.Project)
	fmt.Printf("  Version: %s\n", r.Version)
	fmt.Printf("  Status: %s\n", r.Status)
	fmt.Printf("  Started: %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("  Duration: %s\n", r.Duration)
	if r.HeadRev != "" {
		fmt.Printf("  HEAD: %s\n", r.HeadRev)
	}
	if r.TagRev != "" {
		fmt.Printf("  Tag: %s\n", r.TagRev)
	}
	if r.Error != "" {
		fmt.Printf("  Error: %s\n", r.Error)
	}

	if len(r.Steps) == 0 {
		return
	}
	fmt.Println("\nSteps:")
	for _, s := range r.Steps {
		if s.Passed {
			printStatus("✓", fmt.Sprintf("%s: %s", s.Step.Title(), s.Detail), color.FgGreen)
		} else {
			printStatus("✗", s.Step.Title(), color.FgRed)
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}
