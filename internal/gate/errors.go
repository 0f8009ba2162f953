package gate

import (
	"errors"
	"fmt"
)

// ErrTagMismatch classifies a release tag that does not point at the
// revision being published.
var ErrTagMismatch = errors.New("tag mismatch")

// MismatchError reports the tag whose revision differs from HEAD.
type MismatchError struct {
	Tag string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("Tag %s does not point at current HEAD", e.Tag)
}

// Is matches ErrTagMismatch.
func (e *MismatchError) Is(target error) bool {
	return target == ErrTagMismatch
}
