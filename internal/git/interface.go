// Package git provides an interface for git revision operations.
package git

import "context"

// Resolver defines the interface for mapping git references to canonical
// revision identifiers. This abstraction allows faking git in tests.
type Resolver interface {
	// Resolve maps a reference (branch, tag, HEAD) to its revision id.
	// Returns an error satisfying errors.Is(err, ErrRevisionNotFound)
	// when the reference is unknown to the repository.
	Resolve(ctx context.Context, ref string) (string, error)

	// FetchRef fetches a remote reference into an identically named
	// local reference. Returns an error satisfying
	// errors.Is(err, ErrFetchFailed) when the fetch does not succeed.
	FetchRef(ctx context.Context, remote, ref string) error

	// ResolveRemoteTag fetches ref from the remote and then resolves it.
	// The fetch runs unconditionally so a tag created after the local
	// clone is still found; release tags are frequently absent from the
	// shallow clones CI jobs work in.
	ResolveRemoteTag(ctx context.Context, remote, ref string) (string, error)
}
