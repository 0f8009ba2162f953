package changelog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleDoc = `# Changelog

## MyProj 1.2.3 (2024-01-15)

Fixed a bug.

## MyProj 1.2.2 (2023-12-01)

* Added a feature.
* Removed a misfeature.
`

func TestHeader(t *testing.T) {
	tests := []struct {
		name        string
		displayName string
		version     string
		date        time.Time
		want        string
	}{
		{
			name:        "plain release",
			displayName: "MyProj",
			version:     "1.2.3",
			date:        time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			want:        "MyProj 1.2.3 (2024-01-15)",
		},
		{
			name:        "display name with spaces",
			displayName: "My Project",
			version:     "0.1.0",
			date:        time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
			want:        "My Project 0.1.0 (2023-12-01)",
		},
		{
			name:        "single digit month and day are padded",
			displayName: "Lib",
			version:     "2.0.0",
			date:        time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
			want:        "Lib 2.0.0 (2024-03-07)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Header(tt.displayName, tt.version, tt.date); got != tt.want {
				t.Errorf("Header() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		header string
		want   string
	}{
		{
			name:   "entry followed by another section",
			doc:    sampleDoc,
			header: "MyProj 1.2.3 (2024-01-15)",
			want:   "Fixed a bug.",
		},
		{
			name:   "last entry in document",
			doc:    sampleDoc,
			header: "MyProj 1.2.2 (2023-12-01)",
			want:   "* Added a feature.\n* Removed a misfeature.",
		},
		{
			name:   "multi paragraph body is captured whole",
			doc:    "\n## Lib 1.0.0 (2024-06-01)\n\nFirst paragraph.\n\nSecond paragraph.\n\n## Lib 0.9.0 (2024-05-01)\n\nOld.\n",
			header: "Lib 1.0.0 (2024-06-01)",
			want:   "First paragraph.\n\nSecond paragraph.",
		},
		{
			name:   "single newline before next heading terminates",
			doc:    "\n## Lib 1.0.0 (2024-06-01)\n\nBody line.\n## Lib 0.9.0 (2024-05-01)\n\nOld.\n",
			header: "Lib 1.0.0 (2024-06-01)",
			want:   "Body line.",
		},
		{
			name:   "trailing blank lines are excluded",
			doc:    "\n## Lib 1.0.0 (2024-06-01)\n\nBody.\n\n\n\n## Lib 0.9.0 (2024-05-01)\n\nOld.\n",
			header: "Lib 1.0.0 (2024-06-01)",
			want:   "Body.",
		},
		{
			name:   "body with quotes and backslashes",
			doc:    "\n## Lib 1.0.0 (2024-06-01)\n\nHandle \"quoted\\path\" input.\n",
			header: "Lib 1.0.0 (2024-06-01)",
			want:   "Handle \"quoted\\path\" input.",
		},
		{
			name:   "empty body extracts as empty",
			doc:    "\n## Lib 1.0.0 (2024-06-01)\n\n\n## Lib 0.9.0 (2024-05-01)\n\nOld.\n",
			header: "Lib 1.0.0 (2024-06-01)",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.doc, tt.header)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		header string
	}{
		{
			name:   "version absent from document",
			doc:    sampleDoc,
			header: "MyProj 9.9.9 (2024-01-15)",
		},
		{
			name:   "date mismatch",
			doc:    sampleDoc,
			header: "MyProj 1.2.3 (2024-01-16)",
		},
		{
			name:   "heading at document start has no preceding newline",
			doc:    "## Lib 1.0.0 (2024-06-01)\n\nBody.\n",
			header: "Lib 1.0.0 (2024-06-01)",
		},
		{
			name:   "body missing trailing newline at end of document",
			doc:    "\n## Lib 1.0.0 (2024-06-01)\n\nBody.",
			header: "Lib 1.0.0 (2024-06-01)",
		},
		{
			name:   "empty document",
			doc:    "",
			header: "Lib 1.0.0 (2024-06-01)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.doc, tt.header)
			if err == nil {
				t.Fatal("Extract() expected error")
			}
			if !errors.Is(err, ErrEntryNotFound) {
				t.Errorf("Extract() error = %v, want ErrEntryNotFound", err)
			}
		})
	}
}

func TestExtract_ErrorMessageNamesHeader(t *testing.T) {
	_, err := Extract(sampleDoc, "MyProj 9.9.9 (2024-01-15)")
	if err == nil {
		t.Fatal("Extract() expected error")
	}
	want := "Did not find changelog entry for MyProj 9.9.9 (2024-01-15)"
	if err.Error() != want {
		t.Errorf("error message = %q, want %q", err.Error(), want)
	}
}

// The computed header contains parentheses; an unescaped pattern would
// treat them as a group and match a document that spells the date
// without them.
func TestExtract_HeaderMetacharactersAreLiteral(t *testing.T) {
	noParens := "\n## MyProj 1.2.3 2024-01-15\n\nBody.\n\n## Older\n\nOld.\n"
	if _, err := Extract(noParens, "MyProj 1.2.3 (2024-01-15)"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("unparenthesized heading matched a parenthesized header: %v", err)
	}

	withParens := "\n## MyProj 1.2.3 (2024-01-15)\n\nBody.\n"
	got, err := Extract(withParens, "MyProj 1.2.3 (2024-01-15)")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "Body." {
		t.Errorf("Extract() = %q, want %q", got, "Body.")
	}

	plusName := "\n## C++ Kit 1.0.0 (2024-06-01)\n\nBody.\n"
	got, err = Extract(plusName, "C++ Kit 1.0.0 (2024-06-01)")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "Body." {
		t.Errorf("Extract() = %q, want %q", got, "Body.")
	}
}

func TestReadEntry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "CHANGELOG.md")
	if err := os.WriteFile(path, []byte(sampleDoc), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadEntry(path, "MyProj 1.2.3 (2024-01-15)")
	if err != nil {
		t.Fatalf("ReadEntry() error = %v", err)
	}
	if got != "Fixed a bug." {
		t.Errorf("ReadEntry() = %q, want %q", got, "Fixed a bug.")
	}
}

func TestReadEntry_MissingFile(t *testing.T) {
	_, err := ReadEntry(filepath.Join(t.TempDir(), "absent.md"), "X 1.0.0 (2024-01-01)")
	if err == nil {
		t.Fatal("ReadEntry() expected error for missing file")
	}
	if errors.Is(err, ErrEntryNotFound) {
		t.Error("missing file should not report entry-not-found")
	}
}
