package git

import (
	"errors"
	"fmt"
)

var (
	// ErrRevisionNotFound classifies failures to resolve a reference.
	ErrRevisionNotFound = errors.New("revision not found")
	// ErrFetchFailed classifies failures to fetch a remote reference.
	ErrFetchFailed = errors.New("fetch failed")
)

// RefError describes a failed operation on a git reference. Its message
// is the user-facing gate failure text; the underlying cause is kept for
// logs only.
type RefError struct {
	kind error
	Ref  string
	Err  error
}

func (e *RefError) Error() string {
	if e.kind == ErrFetchFailed {
		return fmt.Sprintf("Could not fetch revision %s", e.Ref)
	}
	return fmt.Sprintf("No git revision %s found", e.Ref)
}

// Is matches the sentinel the error was created with.
func (e *RefError) Is(target error) bool {
	return target == e.kind
}

func (e *RefError) Unwrap() error {
	return e.Err
}

func notFound(ref string, cause error) *RefError {
	return &RefError{kind: ErrRevisionNotFound, Ref: ref, Err: cause}
}

func fetchFailed(ref string, cause error) *RefError {
	return &RefError{kind: ErrFetchFailed, Ref: ref, Err: cause}
}
