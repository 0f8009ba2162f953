// Package scaffold writes starter configuration for new projects.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ErrExists is returned when a target file is already present and
// force is off.
var ErrExists = errors.New("file already exists")

// ConfigName is the project configuration file written by init.
const ConfigName = ".relgate.toml"

// WorkflowPath is the workflow file written by init --workflow,
// relative to the project directory.
var WorkflowPath = filepath.Join(".github", "workflows", "publish-checks.yml")

// Options controls what init writes.
type Options struct {
	// Dir is the project directory.
	Dir string
	// DisplayName is the name used in changelog headers.
	DisplayName string
	// Manifest is the package manifest path.
	Manifest string
	// Changelog is the changelog path.
	Changelog string
	// TagPrefix is prepended to versions to form tag names.
	TagPrefix string
	// Force overwrites existing files.
	Force bool
}

// configTemplate is the project configuration written by init. The
// display name must match the changelog headers byte for byte.
const configTemplate = `# relgate project configuration
# Values here override ~/.config/relgate/config.toml for this repository.

[project]
# display_name must match your changelog headers exactly:
#   ## <display_name> <version> (<date>)
display_name = %q
manifest = %q
changelog = %q
tag_prefix = %q
remote = "origin"

# [ci]
# command = "hub"
# args = ["ci-status", "-f", "%%t: %%S%%n"]
# check = "bors"
`

// WriteProjectConfig writes the project configuration file and
// returns its path.
func WriteProjectConfig(opts Options) (string, error) {
	opts = withDefaults(opts)

	content := fmt.Sprintf(configTemplate,
		opts.DisplayName, opts.Manifest, opts.Changelog, opts.TagPrefix)

	path := filepath.Join(opts.Dir, ConfigName)
	if err := writeFile(path, []byte(content), opts.Force); err != nil {
		return "", err
	}
	return path, nil
}

// workflow mirrors the GitHub Actions document structure.
type workflow struct {
	Name string         `yaml:"name"`
	On   workflowOn     `yaml:"on"`
	Jobs map[string]job `yaml:"jobs"`
}

type workflowOn struct {
	Push pushTrigger `yaml:"push"`
}

type pushTrigger struct {
	Tags []string `yaml:"tags"`
}

type job struct {
	RunsOn string `yaml:"runs-on"`
	Steps  []step `yaml:"steps"`
}

type step struct {
	Name string            `yaml:"name,omitempty"`
	ID   string            `yaml:"id,omitempty"`
	Uses string            `yaml:"uses,omitempty"`
	With map[string]any    `yaml:"with,omitempty"`
	Env  map[string]string `yaml:"env,omitempty"`
	Run  string            `yaml:"run,omitempty"`
}

// WriteWorkflow writes a GitHub Actions workflow that gates the
// publish job on relgate check and returns its path.
func WriteWorkflow(opts Options) (string, error) {
	opts = withDefaults(opts)

	doc := workflow{
		Name: "publish-checks",
		On: workflowOn{
			Push: pushTrigger{Tags: []string{opts.TagPrefix + "*"}},
		},
		Jobs: map[string]job{
			"publish": {
				RunsOn: "ubuntu-latest",
				Steps: []step{
					{
						Uses: "actions/checkout@v4",
						// Tag comparison needs the full history.
						With: map[string]any{"fetch-depth": 0},
					},
					{
						Name: "Run publish gate",
						ID:   "gate",
						Run:  "relgate check",
					},
					{
						Name: "Publish release",
						Env: map[string]string{
							"VERSION":   "${{ steps.gate.outputs.version }}",
							"CHANGELOG": "${{ steps.gate.outputs.changelog }}",
							"GH_TOKEN":  "${{ github.token }}",
						},
						Run: fmt.Sprintf("gh release create %q --notes \"${CHANGELOG}\"",
							opts.TagPrefix+"${VERSION}"),
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encoding workflow: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding workflow: %w", err)
	}

	path := filepath.Join(opts.Dir, WorkflowPath)
	if err := writeFile(path, buf.Bytes(), opts.Force); err != nil {
		return "", err
	}
	return path, nil
}

// withDefaults fills unset options from detection and defaults.
func withDefaults(opts Options) Options {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Manifest == "" {
		opts.Manifest = DetectManifest(opts.Dir)
	}
	if opts.Changelog == "" {
		opts.Changelog = "CHANGELOG.md"
	}
	if opts.DisplayName == "" {
		opts.DisplayName = DetectDisplayName(opts.Dir)
	}
	if opts.TagPrefix == "" {
		opts.TagPrefix = "v"
	}
	return opts
}

// DetectManifest returns the first manifest present in dir whose
// format carries a version = "..." line, defaulting to Cargo.toml.
func DetectManifest(dir string) string {
	candidates := []string{"Cargo.toml", "pyproject.toml"}
	for _, name := range candidates {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return name
		}
	}
	return "Cargo.toml"
}

// DetectDisplayName guesses a display name from the git remote URL,
// falling back to the directory name.
func DetectDisplayName(dir string) string {
	cmd := exec.Command("git", "config", "--get", "remote.origin.url")
	cmd.Dir = dir
	if output, err := cmd.Output(); err == nil {
		if name := repoName(strings.TrimSpace(string(output))); name != "" {
			return name
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Base(dir)
	}
	return filepath.Base(abs)
}

// repoName extracts the repository name from a remote URL. Handles
// both https and scp-style ssh remotes.
func repoName(url string) string {
	url = strings.TrimSuffix(url, ".git")
	idx := strings.LastIndexAny(url, "/:")
	if idx < 0 || idx == len(url)-1 {
		return ""
	}
	return url[idx+1:]
}

// writeFile writes data to path, refusing to overwrite unless force
// is set.
func writeFile(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0644)
}
