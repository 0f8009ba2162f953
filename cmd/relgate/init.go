package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relgate/relgate/internal/scaffold"
)

var (
	initDisplayName string
	initManifest    string
	initChangelog   string
	initTagPrefix   string
	initWorkflow    bool
	initForce       bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Scaffold a relgate project config",
	Long: `Initialize a directory for relgate.

Writes .relgate.toml populated from detected values (manifest present
in the directory, repository name from the git remote). With
--workflow, also writes a GitHub Actions workflow that runs the
publish gate and consumes its outputs.

The directory argument is optional and defaults to the current
directory. Existing files are never overwritten without --force.

Examples:
  relgate init
  relgate init --workflow
  relgate init --display-name Widget --manifest crates/widget/Cargo.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initDisplayName, "display-name", "", "Display name used in changelog headers")
	initCmd.Flags().StringVar(&initManifest, "manifest", "", "Package manifest path")
	initCmd.Flags().StringVar(&initChangelog, "changelog", "", "Changelog path")
	initCmd.Flags().StringVar(&initTagPrefix, "tag-prefix", "", "Tag prefix (default v)")
	initCmd.Flags().BoolVar(&initWorkflow, "workflow", false, "Also write a GitHub Actions publish workflow")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	opts := scaffold.Options{
		Dir:         dir,
		DisplayName: initDisplayName,
		Manifest:    initManifest,
		Changelog:   initChangelog,
		TagPrefix:   initTagPrefix,
		Force:       initForce,
	}

	path, err := scaffold.WriteProjectConfig(opts)
	if err != nil {
		if errors.Is(err, scaffold.ErrExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}
	printStatus("✓", fmt.Sprintf("Created %s", path), color.FgGreen)

	if initWorkflow {
		wfPath, err := scaffold.WriteWorkflow(opts)
		if err != nil {
			if errors.Is(err, scaffold.ErrExists) {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			return err
		}
		printStatus("✓", fmt.Sprintf("Created %s", wfPath), color.FgGreen)
	}

	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review .relgate.toml; display_name must match your changelog headers")
	fmt.Println("  2. Run 'relgate check' before publishing a release")
	return nil
}
