package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relgate/relgate/internal/ci"
	"github.com/relgate/relgate/internal/exec"
)

var statusProject string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the CI status report",
	Long: `Query the CI status tool for the current revision and report
whether the gating check passed.

This runs the same check 'relgate check' gates on, without the rest of
the pipeline.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusProject, "project", "", "Named project from [projects.<name>]")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	project, err := cfg.ResolveProject(statusProject)
	if err != nil {
		return err
	}

	checker := ci.NewChecker(exec.NewRunner(), ".", project.CI)
	report := checker.Report(context.Background())

	if report == "" {
		fmt.Println("No CI status available.")
	} else {
		fmt.Print(report)
		if !strings.HasSuffix(report, "\n") {
			fmt.Println()
		}
	}
	fmt.Println()

	if err := checker.Verify(report); err != nil {
		printStatus("✗", err.Error(), color.FgRed)
		os.Exit(1)
	}
	printStatus("✓", fmt.Sprintf("%s reported success", project.CI.Check), color.FgGreen)
	return nil
}
