// Package exec runs external commands on behalf of the gate steps.
package exec

import (
	"context"
)

// CommandRunner abstracts subprocess execution so tests can substitute
// canned results for git and the CI tool.
type CommandRunner interface {
	// Run invokes a command and returns stdout and stderr separately.
	// workDir, when non-empty, becomes the working directory. A non-nil
	// error means the command failed to start or exited non-zero.
	Run(ctx context.Context, workDir string, name string, args ...string) (stdout, stderr []byte, err error)
}
