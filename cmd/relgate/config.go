package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relgate/relgate/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Show or change configuration",
	Long: `Inspect and edit relgate settings.

With no arguments the resolved settings are listed along with the
config files in effect. One argument prints that key; a key and a
value store the value in the user config.

Settings live in ~/.config/relgate/config.toml; a .relgate.toml in
the working directory overrides them per project.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not load configuration: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			printSettings(cfg)
		case 1:
			printSetting(cfg, args[0])
		default:
			storeSetting(cfg, args[0], args[1])
		}
	},
}

// printSettings lists every setting plus the config files in effect.
func printSettings(cfg *config.Config) {
	displayName := cfg.Project.DisplayName
	if displayName == "" {
		displayName = "(not set)"
	}

	fmt.Printf("project.name: %s\n", cfg.Project.Name)
	fmt.Printf("project.manifest: %s\n", cfg.Project.Manifest)
	fmt.Printf("project.changelog: %s\n", cfg.Project.Changelog)
	fmt.Printf("project.display_name: %s\n", displayName)
	fmt.Printf("project.tag_prefix: %s\n", cfg.Project.TagPrefix)
	fmt.Printf("project.remote: %s\n", cfg.Project.Remote)
	fmt.Printf("project.strict_version: %t\n", cfg.Project.StrictVersion)
	fmt.Printf("ci.command: %s\n", cfg.CI.Command)
	fmt.Printf("ci.args: %s\n", strings.Join(cfg.CI.Args, " "))
	fmt.Printf("ci.check: %s\n", cfg.CI.Check)
	fmt.Printf("history.enabled: %t\n", cfg.History.Enabled)
	fmt.Printf("history.path: %s\n", cfg.HistoryDBPath())
	fmt.Printf("log.level: %s\n", cfg.Log.Level)
	fmt.Printf("log.file: %s\n", cfg.Log.File)

	fmt.Println()
	fmt.Printf("User config: %s\n", config.GetUserConfigPath())
	if p := config.GetProjectConfigPath(); p != "" {
		fmt.Printf("Project config: %s\n", p)
	} else {
		fmt.Println("Project config: (none found)")
	}
}

// printSetting prints the value of one dot-separated key.
func printSetting(cfg *config.Config, key string) {
	value, err := settingValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// storeSetting updates one key and writes the user config back.
func storeSetting(cfg *config.Config, key, value string) {
	if err := applySetting(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Could not save configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// settingValue resolves a dot-separated key to its display form.
func settingValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "project.name":
		return cfg.Project.Name, nil
	case "project.manifest":
		return cfg.Project.Manifest, nil
	case "project.changelog":
		return cfg.Project.Changelog, nil
	case "project.display_name":
		if cfg.Project.DisplayName == "" {
			return "(not set)", nil
		}
		return cfg.Project.DisplayName, nil
	case "project.tag_prefix":
		return cfg.Project.TagPrefix, nil
	case "project.remote":
		return cfg.Project.Remote, nil
	case "project.strict_version":
		return strconv.FormatBool(cfg.Project.StrictVersion), nil
	case "ci.command":
		return cfg.CI.Command, nil
	case "ci.args":
		return strings.Join(cfg.CI.Args, " "), nil
	case "ci.check":
		return cfg.CI.Check, nil
	case "history.enabled":
		return strconv.FormatBool(cfg.History.Enabled), nil
	case "history.path":
		return cfg.HistoryDBPath(), nil
	case "log.level":
		return cfg.Log.Level, nil
	case "log.file":
		return cfg.Log.File, nil
	default:
		return "", fmt.Errorf("unknown setting: %s", key)
	}
}

// applySetting parses and stores the value for a dot-separated key.
func applySetting(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "project.name":
		cfg.Project.Name = value
	case "project.manifest":
		cfg.Project.Manifest = value
	case "project.changelog":
		cfg.Project.Changelog = value
	case "project.display_name":
		cfg.Project.DisplayName = value
	case "project.tag_prefix":
		cfg.Project.TagPrefix = value
	case "project.remote":
		cfg.Project.Remote = value
	case "project.strict_version":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for strict_version: %w", err)
		}
		cfg.Project.StrictVersion = b
	case "ci.command":
		cfg.CI.Command = value
	case "ci.args":
		return fmt.Errorf("ci.args holds a list; edit %s directly", config.GetUserConfigPath())
	case "ci.check":
		cfg.CI.Check = value
	case "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for history.enabled: %w", err)
		}
		cfg.History.Enabled = b
	case "history.path":
		cfg.History.Path = value
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	default:
		return fmt.Errorf("unknown setting: %s", key)
	}
	return nil
}
