package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relgate/relgate/internal/config"
	"github.com/relgate/relgate/internal/logging"
)

var verbose bool

// closeLogs flushes the log file sink, set once logging is configured.
var closeLogs func() error

var rootCmd = &cobra.Command{
	Use:   "relgate",
	Short: "Publish gate for tagged releases",
	Long: `relgate verifies that a tagged release is safe to publish.

It checks, in order, that:
- the package manifest declares a version
- the release tag exists on the remote and points at HEAD
- the gating CI check reported success
- the changelog has an entry for this release

On success the version and changelog body are emitted as workflow
outputs for the publish job. Any failure stops the release with an
error annotation and a non-zero exit.`,
}

// Execute runs the root command
func Execute() {
	err := rootCmd.Execute()
	if closeLogs != nil {
		closeLogs()
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(changelogCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the configuration and applies its logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}

	closer, err := logging.Setup(logging.Options{
		Level:   level,
		File:    cfg.LogFilePath(),
		Console: true,
	})
	if err != nil {
		return nil, err
	}
	closeLogs = closer

	return cfg, nil
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
