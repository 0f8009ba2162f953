// Package config resolves relgate settings from XDG config files,
// per-project overrides, and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/relgate/relgate/pkg/release"
)

// Config holds all configuration for relgate.
type Config struct {
	Project  ProjectConfig            `mapstructure:"project"`
	CI       CIConfig                 `mapstructure:"ci"`
	History  HistoryConfig            `mapstructure:"history"`
	Log      LogConfig                `mapstructure:"log"`
	Projects map[string]ProjectConfig `mapstructure:"projects"`
}

// ProjectConfig describes one project to gate.
type ProjectConfig struct {
	Name          string `mapstructure:"name"`
	Manifest      string `mapstructure:"manifest"`
	Changelog     string `mapstructure:"changelog"`
	DisplayName   string `mapstructure:"display_name"`
	TagPrefix     string `mapstructure:"tag_prefix"`
	Remote        string `mapstructure:"remote"`
	StrictVersion bool   `mapstructure:"strict_version"`
}

// CIConfig holds settings for the external CI status tool.
type CIConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
	Check   string   `mapstructure:"check"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load resolves the effective configuration. From weakest to strongest:
// built-in defaults, the user config (~/.config/relgate/config.toml), a
// .relgate.toml found in the working directory or a parent, and finally
// environment variables (RELGATE_DISPLAY_NAME, project_display_name).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// User config is optional; anything else that goes wrong reading it
	// is a real error.
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read user config: %w", err)
		}
	}

	// Load project config if present. A malformed project config is an
	// error rather than silently ignored: it decides whether a release
	// ships.
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("")

	// The lowercase binding is the variable the publish workflow has
	// always exported.
	v.BindEnv("project.display_name", "RELGATE_DISPLAY_NAME", "project_display_name")
	v.BindEnv("log.level", "RELGATE_LOG_LEVEL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	expandPaths(cfg)
	return cfg, nil
}

// LoadFromPath reads one specific config file, bypassing discovery.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	expandPaths(cfg)
	return cfg, nil
}

// Save persists cfg to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.toml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("project.name", cfg.Project.Name)
	v.Set("project.manifest", cfg.Project.Manifest)
	v.Set("project.changelog", cfg.Project.Changelog)
	v.Set("project.display_name", cfg.Project.DisplayName)
	v.Set("project.tag_prefix", cfg.Project.TagPrefix)
	v.Set("project.remote", cfg.Project.Remote)
	v.Set("project.strict_version", cfg.Project.StrictVersion)
	v.Set("ci.command", cfg.CI.Command)
	v.Set("ci.args", cfg.CI.Args)
	v.Set("ci.check", cfg.CI.Check)
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.path", cfg.History.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)

	return v.WriteConfig()
}

// GetUserConfigPath reports where the user config lives.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.toml")
}

// GetProjectConfigPath reports the discovered project config, or empty.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// ResolveProject returns the project to gate. An empty name selects the
// top-level [project] settings; otherwise the named [projects.<name>]
// entry overlays them.
func (c *Config) ResolveProject(name string) (release.Project, error) {
	pc := c.Project
	if name != "" {
		override, ok := c.Projects[name]
		if !ok {
			return release.Project{}, fmt.Errorf("unknown project %q (no [projects.%s] section)", name, name)
		}
		pc = overlay(pc, override)
		if pc.Name == "" {
			pc.Name = name
		}
	}

	return release.Project{
		Name:          pc.Name,
		Manifest:      pc.Manifest,
		Changelog:     pc.Changelog,
		DisplayName:   pc.DisplayName,
		TagPrefix:     pc.TagPrefix,
		Remote:        pc.Remote,
		StrictVersion: pc.StrictVersion,
		CI: release.CISettings{
			Command: c.CI.Command,
			Args:    c.CI.Args,
			Check:   c.CI.Check,
		},
	}, nil
}

// HistoryDBPath returns the run history database path, applying the XDG
// default when no explicit path is configured.
func (c *Config) HistoryDBPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	return filepath.Join(getUserDataDir(), "relgate.db")
}

// LogFilePath returns the log file sink, or empty when file logging is
// off. RELGATE_DEBUG=1 enables a default sink under the XDG state
// directory without touching the config file.
func (c *Config) LogFilePath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	if os.Getenv("RELGATE_DEBUG") == "1" {
		return filepath.Join(getUserStateDir(), "relgate.log")
	}
	return ""
}

// overlay merges the non-empty fields of o over base. strict_version is
// enabled when either level sets it.
func overlay(base, o ProjectConfig) ProjectConfig {
	if o.Name != "" {
		base.Name = o.Name
	}
	if o.Manifest != "" {
		base.Manifest = o.Manifest
	}
	if o.Changelog != "" {
		base.Changelog = o.Changelog
	}
	if o.DisplayName != "" {
		base.DisplayName = o.DisplayName
	}
	if o.TagPrefix != "" {
		base.TagPrefix = o.TagPrefix
	}
	if o.Remote != "" {
		base.Remote = o.Remote
	}
	base.StrictVersion = base.StrictVersion || o.StrictVersion
	return base
}

// setDefaults seeds the baseline settings.
func setDefaults(v *viper.Viper) {
	v.SetDefault("project.name", "")
	v.SetDefault("project.manifest", "Cargo.toml")
	v.SetDefault("project.changelog", "CHANGELOG.md")
	v.SetDefault("project.display_name", "")
	v.SetDefault("project.tag_prefix", "v")
	v.SetDefault("project.remote", "origin")
	v.SetDefault("project.strict_version", false)

	v.SetDefault("ci.command", "hub")
	v.SetDefault("ci.args", []string{"ci-status", "-f", "%t: %S%n"})
	v.SetDefault("ci.check", "bors")

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "")

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
}

// getUserConfigDir returns the XDG config directory for relgate,
// honoring XDG_CONFIG_HOME over the ~/.config default.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "relgate")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "relgate")
	}
	return filepath.Join(home, ".config", "relgate")
}

// getUserDataDir returns the XDG data directory for relgate.
func getUserDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "relgate")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "share", "relgate")
	}
	return filepath.Join(home, ".local", "share", "relgate")
}

// getUserStateDir returns the XDG state directory for relgate.
func getUserStateDir() string {
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, "relgate")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".local", "state", "relgate")
	}
	return filepath.Join(home, ".local", "state", "relgate")
}

// findProjectConfig searches for .relgate.toml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".relgate.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv resolves ${VAR} references.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// expandPaths expands ${VAR} references in the configured file paths.
func expandPaths(cfg *Config) {
	cfg.Project.Manifest = expandEnv(cfg.Project.Manifest)
	cfg.Project.Changelog = expandEnv(cfg.Project.Changelog)
	cfg.History.Path = expandEnv(cfg.History.Path)
	cfg.Log.File = expandEnv(cfg.Log.File)
	for name, p := range cfg.Projects {
		p.Manifest = expandEnv(p.Manifest)
		p.Changelog = expandEnv(p.Changelog)
		cfg.Projects[name] = p
	}
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Manifest:  "Cargo.toml",
			Changelog: "CHANGELOG.md",
			TagPrefix: "v",
			Remote:    "origin",
		},
		CI: CIConfig{
			Command: "hub",
			Args:    []string{"ci-status", "-f", "%t: %S%n"},
			Check:   "bors",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
