package release

import "testing"

func TestStep_Valid(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want bool
	}{
		{"manifest is valid", StepManifest, true},
		{"revisions is valid", StepRevisions, true},
		{"tag-match is valid", StepTagMatch, true},
		{"ci-status is valid", StepCIStatus, true},
		{"changelog is valid", StepChangelog, true},
		{"empty string is invalid", Step(""), false},
		{"unknown step is invalid", Step("publish"), false},
		{"uppercase is invalid", Step("MANIFEST"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.step.Valid(); got != tt.want {
				t.Errorf("Step(%q).Valid() = %v, want %v", tt.step, got, tt.want)
			}
		})
	}
}

func TestPipeline_Order(t *testing.T) {
	want := []Step{StepManifest, StepRevisions, StepTagMatch, StepCIStatus, StepChangelog}

	got := Pipeline()
	if len(got) != len(want) {
		t.Fatalf("Pipeline() returned %d steps, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Pipeline()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPipeline_AllValid(t *testing.T) {
	for _, step := range Pipeline() {
		if !step.Valid() {
			t.Errorf("Pipeline step %q should be valid", step)
		}
	}
}

func TestStep_TitlesAreDistinct(t *testing.T) {
	seen := make(map[string]Step)
	for _, step := range Pipeline() {
		title := step.Title()
		if title == "" {
			t.Errorf("Step(%q).Title() is empty", step)
		}
		if prev, ok := seen[title]; ok {
			t.Errorf("Steps %q and %q share title %q", prev, step, title)
		}
		seen[title] = step
	}
}

func TestRunStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status RunStatus
		want   bool
	}{
		{"passed is valid", RunPassed, true},
		{"failed is valid", RunFailed, true},
		{"canceled is valid", RunCanceled, true},
		{"empty string is invalid", RunStatus(""), false},
		{"unknown status is invalid", RunStatus("pending"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("RunStatus(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestCISettings_Marker(t *testing.T) {
	tests := []struct {
		name  string
		check string
		want  string
	}{
		{"bors check", "bors", "bors: success"},
		{"custom check", "ci/release", "ci/release: success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ci := CISettings{Check: tt.check}
			if got := ci.Marker(); got != tt.want {
				t.Errorf("Marker() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProject_Validate(t *testing.T) {
	valid := Project{
		Manifest:    "Cargo.toml",
		Changelog:   "CHANGELOG.md",
		DisplayName: "Widget",
	}

	tests := []struct {
		name    string
		mutate  func(*Project)
		wantErr bool
	}{
		{"complete project", func(p *Project) {}, false},
		{"missing manifest", func(p *Project) { p.Manifest = "" }, true},
		{"missing changelog", func(p *Project) { p.Changelog = "" }, true},
		{"missing display name", func(p *Project) { p.DisplayName = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProject_TagRef(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		version string
		want    string
	}{
		{"v prefix", "v", "1.2.3", "refs/tags/v1.2.3"},
		{"empty prefix", "", "1.2.3", "refs/tags/1.2.3"},
		{"release prefix", "release-", "2.0.0", "refs/tags/release-2.0.0"},
		{"prerelease version", "v", "1.0.0-rc.1", "refs/tags/v1.0.0-rc.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project{TagPrefix: tt.prefix}
			if got := p.TagRef(tt.version); got != tt.want {
				t.Errorf("TagRef(%q) = %q, want %q", tt.version, got, tt.want)
			}
			wantShort := tt.prefix + tt.version
			if got := p.Tag(tt.version); got != wantShort {
				t.Errorf("Tag(%q) = %q, want %q", tt.version, got, wantShort)
			}
		})
	}
}
