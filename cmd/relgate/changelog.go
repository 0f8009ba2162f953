package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relgate/relgate/internal/changelog"
	"github.com/relgate/relgate/internal/manifest"
)

var (
	changelogProject string
	changelogVersion string
	changelogDate    string
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Print the changelog entry for a release",
	Long: `Extract and print the changelog section for a release.

By default the version comes from the package manifest and the date is
today, matching what 'relgate check' would look for. Both can be
overridden to preview any entry.

Examples:
  relgate changelog
  relgate changelog --version 1.2.3 --date 2024-01-15`,
	RunE: runChangelog,
}

func init() {
	changelogCmd.Flags().StringVar(&changelogProject, "project", "", "Named project from [projects.<name>]")
	changelogCmd.Flags().StringVar(&changelogVersion, "version", "", "Version to look up (default: manifest version)")
	changelogCmd.Flags().StringVar(&changelogDate, "date", "", "Header date (YYYY-MM-DD, default today)")
}

func runChangelog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	project, err := cfg.ResolveProject(changelogProject)
	if err != nil {
		return err
	}
	if err := project.Validate(); err != nil {
		return err
	}

	version := changelogVersion
	if version == "" {
		version, err = manifest.ReadVersion(project.Manifest)
		if err != nil {
			return err
		}
	}

	now, err := dateClock(changelogDate)
	if err != nil {
		return err
	}

	header := changelog.Header(project.DisplayName, version, now())
	entry, err := changelog.ReadEntry(project.Changelog, header)
	if err != nil {
		return err
	}

	fmt.Printf("## %s\n\n%s\n", header, entry)
	return nil
}
