package exec

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// ExecRunner shells out through os/exec.
type ExecRunner struct{}

// NewRunner returns a runner backed by the host system.
func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes a command and captures stdout and stderr separately.
func (r *ExecRunner) Run(ctx context.Context, workDir string, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	log.Debug().
		Str("cmd", name).
		Strs("args", args).
		Dur("took", time.Since(start)).
		Err(err).
		Msg("ran external command")

	return stdout.Bytes(), stderr.Bytes(), err
}

var _ CommandRunner = (*ExecRunner)(nil)
