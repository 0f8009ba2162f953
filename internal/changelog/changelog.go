// Package changelog locates release-note sections in a changelog
// document.
package changelog

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"
)

// ErrEntryNotFound classifies extraction failures.
var ErrEntryNotFound = errors.New("changelog entry not found")

// EntryNotFoundError reports the header that had no matching section.
type EntryNotFoundError struct {
	Header string
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("Did not find changelog entry for %s", e.Header)
}

// Is matches ErrEntryNotFound.
func (e *EntryNotFoundError) Is(target error) bool {
	return target == ErrEntryNotFound
}

// Header computes the section heading text for a release:
// "{display name} {version} ({iso date})".
func Header(displayName, version string, date time.Time) string {
	return fmt.Sprintf("%s %s (%s)", displayName, version, date.Format("2006-01-02"))
}

// Extract returns the body of the section whose `## ` heading matches
// header exactly. The body runs to the newline(s) preceding the next
// `## ` heading, or to the end of the document. The header is escaped
// before compiling, so dates' parentheses and any other metacharacters
// match literally.
func Extract(doc, header string) (string, error) {
	pattern := `\n## ` + regexp.QuoteMeta(header) + `\n+(?s:(.*?))\n\n*(## |$)`
	m := regexp.MustCompile(pattern).FindStringSubmatch(doc)
	if m == nil {
		return "", &EntryNotFoundError{Header: header}
	}
	return m[1], nil
}

// ReadEntry reads the changelog file at path and extracts the section
// for header.
func ReadEntry(path, header string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read changelog %s: %w", path, err)
	}
	return Extract(string(data), header)
}
