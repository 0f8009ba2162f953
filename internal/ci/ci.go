// Package ci queries the external CI status collaborator.
package ci

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/relgate/relgate/internal/exec"
	"github.com/relgate/relgate/pkg/release"
)

// ErrNotVerified classifies a missing success entry for the gating check.
var ErrNotVerified = errors.New("ci status not verified")

// NotVerifiedError reports the gating check that lacked a success entry.
type NotVerifiedError struct {
	Check string
}

func (e *NotVerifiedError) Error() string {
	return fmt.Sprintf("Commit not successfully checked by %s", e.Check)
}

// Is matches ErrNotVerified.
func (e *NotVerifiedError) Is(target error) bool {
	return target == ErrNotVerified
}

// Checker invokes a status tool and verifies the gating check passed.
type Checker struct {
	runner   exec.CommandRunner
	workDir  string
	settings release.CISettings
}

// NewChecker creates a checker for the repository at workDir.
func NewChecker(runner exec.CommandRunner, workDir string, settings release.CISettings) *Checker {
	return &Checker{runner: runner, workDir: workDir, settings: settings}
}

// Report invokes the status tool and returns its report text. Invocation
// failure degrades to an empty report rather than an error: the tool is
// best-effort and may be absent or unauthenticated, and the verdict
// belongs to Verify either way.
func (c *Checker) Report(ctx context.Context) string {
	stdout, stderr, err := c.runner.Run(ctx, c.workDir, c.settings.Command, c.settings.Args...)
	if err != nil {
		log.Debug().
			Str("cmd", c.settings.Command).
			Strs("args", c.settings.Args).
			Str("stderr", strings.TrimSpace(string(stderr))).
			Err(err).
			Msg("status tool invocation failed, treating report as empty")
		return ""
	}
	return string(stdout)
}

// Verify checks the report for the gating check's success marker. An
// empty report fails the same way as a report without the marker.
func (c *Checker) Verify(report string) error {
	if !strings.Contains(report, c.settings.Marker()) {
		return &NotVerifiedError{Check: c.settings.Check}
	}
	return nil
}

// Check runs Report then Verify.
func (c *Checker) Check(ctx context.Context) error {
	return c.Verify(c.Report(ctx))
}
