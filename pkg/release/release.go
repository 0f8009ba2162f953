package release

import "errors"

// Step identifies one check in the publish gate pipeline.
type Step string

const (
	// StepManifest extracts the declared version from the package manifest.
	StepManifest Step = "manifest"
	// StepRevisions resolves HEAD and the release tag to revision ids.
	StepRevisions Step = "revisions"
	// StepTagMatch compares the HEAD revision against the tag revision.
	StepTagMatch Step = "tag-match"
	// StepCIStatus verifies that the gating CI check reported success.
	StepCIStatus Step = "ci-status"
	// StepChangelog extracts the release notes section from the changelog.
	StepChangelog Step = "changelog"
)

// Valid returns true if the step is a known value.
func (s Step) Valid() bool {
	switch s {
	case StepManifest, StepRevisions, StepTagMatch, StepCIStatus, StepChangelog:
		return true
	default:
		return false
	}
}

// Title returns the human-readable name of the step.
func (s Step) Title() string {
	switch s {
	case StepManifest:
		return "Parse manifest version"
	case StepRevisions:
		return "Resolve revisions"
	case StepTagMatch:
		return "Match tag against HEAD"
	case StepCIStatus:
		return "Verify CI status"
	case StepChangelog:
		return "Extract changelog entry"
	default:
		return string(s)
	}
}

// Pipeline returns the gate steps in execution order.
func Pipeline() []Step {
	return []Step{StepManifest, StepRevisions, StepTagMatch, StepCIStatus, StepChangelog}
}

// RunStatus represents the overall outcome of a gate run.
type RunStatus string

const (
	// RunPassed indicates every step passed.
	RunPassed RunStatus = "passed"
	// RunFailed indicates a step failed and the run was aborted.
	RunFailed RunStatus = "failed"
	// RunCanceled indicates the run was interrupted before a verdict.
	RunCanceled RunStatus = "canceled"
)

// Valid returns true if the status is a known value.
func (s RunStatus) Valid() bool {
	switch s {
	case RunPassed, RunFailed, RunCanceled:
		return true
	default:
		return false
	}
}

// CISettings describes how to query the CI status collaborator.
type CISettings struct {
	// Command is the status tool executable, e.g. "hub".
	Command string `json:"command"`
	// Args are the arguments requesting a "name: status" report.
	Args []string `json:"args"`
	// Check is the name of the gating check that must succeed.
	Check string `json:"check"`
}

// Marker returns the literal report substring that proves the gating
// check passed.
func (c CISettings) Marker() string {
	return c.Check + ": success"
}

// Project holds the per-project settings a gate run operates on.
type Project struct {
	// Name is the configured project key, empty for the default project.
	Name string `json:"name,omitempty"`
	// Manifest is the path to the package manifest.
	Manifest string `json:"manifest"`
	// Changelog is the path to the changelog document.
	Changelog string `json:"changelog"`
	// DisplayName is the human-readable name used in changelog headers.
	DisplayName string `json:"display_name"`
	// TagPrefix is prepended to the version to form the tag name.
	TagPrefix string `json:"tag_prefix"`
	// Remote is the git remote release tags are fetched from.
	Remote string `json:"remote"`
	// StrictVersion rejects manifest versions that are not valid semver.
	StrictVersion bool `json:"strict_version,omitempty"`
	// CI configures the status collaborator.
	CI CISettings `json:"ci"`
}

// TagRef returns the fully qualified tag reference for a version,
// e.g. refs/tags/v1.2.3.
func (p Project) TagRef(version string) string {
	return "refs/tags/" + p.TagPrefix + version
}

// Tag returns the short tag name for a version, e.g. v1.2.3.
func (p Project) Tag(version string) string {
	return p.TagPrefix + version
}

// Validate checks that the fields a gate run depends on are set.
func (p Project) Validate() error {
	if p.Manifest == "" {
		return errors.New("project manifest path not configured")
	}
	if p.Changelog == "" {
		return errors.New("project changelog path not configured")
	}
	if p.DisplayName == "" {
		return errors.New("project display name not configured (set project.display_name or the project_display_name environment variable)")
	}
	return nil
}
