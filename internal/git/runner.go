package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/relgate/relgate/internal/exec"
)

// ExecResolver implements Resolver by shelling out to git through a
// CommandRunner.
type ExecResolver struct {
	runner   exec.CommandRunner
	repoPath string
}

// NewResolver creates a resolver for the repository at the given path.
// An empty path means the current working directory.
func NewResolver(runner exec.CommandRunner, repoPath string) *ExecResolver {
	return &ExecResolver{runner: runner, repoPath: repoPath}
}

// Resolve runs git rev-parse on ref and returns the trimmed revision id.
func (r *ExecResolver) Resolve(ctx context.Context, ref string) (string, error) {
	stdout, stderr, err := r.runner.Run(ctx, r.repoPath, "git", "rev-parse", ref)
	if err != nil {
		log.Debug().
			Str("ref", ref).
			Str("stderr", strings.TrimSpace(string(stderr))).
			Err(err).
			Msg("rev-parse failed")
		return "", notFound(ref, fmt.Errorf("git rev-parse %s: %w: %s", ref, err, strings.TrimSpace(string(stderr))))
	}
	return strings.TrimSpace(string(stdout)), nil
}

// FetchRef fetches ref from the remote into an identically named local
// reference (git fetch <remote> <ref>:<ref>).
func (r *ExecResolver) FetchRef(ctx context.Context, remote, ref string) error {
	refspec := ref + ":" + ref
	_, stderr, err := r.runner.Run(ctx, r.repoPath, "git", "fetch", remote, refspec)
	if err != nil {
		log.Debug().
			Str("remote", remote).
			Str("refspec", refspec).
			Str("stderr", strings.TrimSpace(string(stderr))).
			Err(err).
			Msg("fetch failed")
		return fetchFailed(ref, fmt.Errorf("git fetch %s %s: %w: %s", remote, refspec, err, strings.TrimSpace(string(stderr))))
	}
	return nil
}

// ResolveRemoteTag fetches ref from the remote, then resolves it.
func (r *ExecResolver) ResolveRemoteTag(ctx context.Context, remote, ref string) (string, error) {
	if err := r.FetchRef(ctx, remote, ref); err != nil {
		return "", err
	}
	return r.Resolve(ctx, ref)
}

// Verify ExecResolver implements Resolver at compile time.
var _ Resolver = (*ExecResolver)(nil)
