package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "plain version",
			text: "[package]\nname = \"zwohash\"\nversion = \"1.2.3\"\nedition = \"2021\"\n",
			want: "1.2.3",
		},
		{
			name: "prerelease and build suffix",
			text: "version = \"1.0.0-rc.1+build.5\"\n",
			want: "1.0.0-rc.1+build.5",
		},
		{
			name: "first matching line wins",
			text: "version = \"0.1.0\"\n[dependencies.other]\nversion = \"9.9.9\"\n",
			want: "0.1.0",
		},
		{
			name: "empty token still parses",
			text: "version = \"\"\n",
			want: "",
		},
		{
			name:    "no version line",
			text:    "[package]\nname = \"zwohash\"\n",
			wantErr: true,
		},
		{
			name:    "empty manifest",
			text:    "",
			wantErr: true,
		},
		{
			name:    "indented line does not match",
			text:    "  version = \"1.2.3\"\n",
			wantErr: true,
		},
		{
			name:    "prefixed key does not match",
			text:    "xversion = \"1.2.3\"\n",
			wantErr: true,
		},
		{
			name:    "trailing content after quote does not match",
			text:    "version = \"1.2.3\" # release\n",
			wantErr: true,
		},
		{
			name:    "single quotes do not match",
			text:    "version = '1.2.3'\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrVersionNotFound) {
					t.Fatalf("ParseVersion() error = %v, want ErrVersionNotFound", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseVersion_ErrorMessage(t *testing.T) {
	_, err := ParseVersion("no version here")
	if err == nil {
		t.Fatal("ParseVersion() expected error")
	}
	if err.Error() != "Could not parse version" {
		t.Errorf("error message = %q, want %q", err.Error(), "Could not parse version")
	}
}

func TestReadVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.toml")
	content := "[package]\nname = \"demo\"\nversion = \"2.4.6\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadVersion(path)
	if err != nil {
		t.Fatalf("ReadVersion() error = %v", err)
	}
	if got != "2.4.6" {
		t.Errorf("ReadVersion() = %q, want %q", got, "2.4.6")
	}
}

func TestReadVersion_MissingFile(t *testing.T) {
	_, err := ReadVersion(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("ReadVersion() expected error for missing file")
	}
	if errors.Is(err, ErrVersionNotFound) {
		t.Error("missing file should not report a parse failure")
	}
}

func TestCheckSemver(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"release version", "1.2.3", false},
		{"prerelease", "1.0.0-rc.1", false},
		{"build metadata", "1.0.0+build.5", false},
		{"two components", "1.2", true},
		{"v prefix", "v1.2.3", true},
		{"word", "latest", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSemver(tt.version)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckSemver(%q) error = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
		})
	}
}
