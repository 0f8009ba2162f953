// Package gate orchestrates the publish-gate pipeline: manifest version,
// revision match, CI status, changelog entry, output emission.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/relgate/relgate/internal/actions"
	"github.com/relgate/relgate/internal/changelog"
	"github.com/relgate/relgate/internal/git"
	"github.com/relgate/relgate/internal/manifest"
	"github.com/relgate/relgate/pkg/release"
)

// StatusChecker verifies the CI gating check for the current revision.
type StatusChecker interface {
	Check(ctx context.Context) error
}

// StepResult contains the result of a single gate step.
type StepResult struct {
	// Step identifies the check.
	Step release.Step
	// Passed indicates whether the step passed.
	Passed bool
	// Detail is a short human-readable note about the outcome.
	Detail string
	// Duration is the time the step took.
	Duration time.Duration
	// Err is the fatal error when the step failed.
	Err error
}

// Result is the outcome of one gate run.
type Result struct {
	// Project is the project the run checked.
	Project release.Project
	// Version is the manifest version, once parsed.
	Version string
	// HeadRev and TagRev are the resolved revision ids.
	HeadRev string
	TagRev  string
	// Header is the computed changelog heading.
	Header string
	// Entry is the extracted changelog body.
	Entry string
	// Steps holds the results of the attempted steps, in order.
	Steps []StepResult
	// Status is the overall verdict.
	Status release.RunStatus
	// Duration is the total run time.
	Duration time.Duration
}

// Err returns the error of the failed step, or nil when the run passed.
func (r *Result) Err() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return s.Err
		}
	}
	return nil
}

// FailedStep returns the step that aborted the run, or an empty step.
func (r *Result) FailedStep() release.Step {
	for _, s := range r.Steps {
		if s.Err != nil {
			return s.Step
		}
	}
	return ""
}

// Event reports step progress to an observer. Result is nil when the
// step starts and set when it finishes.
type Event struct {
	Step   release.Step
	Result *StepResult
}

// Observer receives step progress events during a run.
type Observer func(Event)

// Runner executes the gate pipeline for one project.
type Runner struct {
	project  release.Project
	resolver git.Resolver
	status   StatusChecker
	emitter  actions.Emitter
	observer Observer
	now      func() time.Time
	skipCI   bool
	local    bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithEmitter publishes version and changelog outputs during the run.
func WithEmitter(e actions.Emitter) Option {
	return func(r *Runner) { r.emitter = e }
}

// WithObserver reports step progress to fn.
func WithObserver(fn Observer) Option {
	return func(r *Runner) { r.observer = fn }
}

// WithClock overrides the time source used for the changelog header
// date.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithSkipCI skips the CI status step.
func WithSkipCI(skip bool) Option {
	return func(r *Runner) { r.skipCI = skip }
}

// WithLocalOnly restricts the run to the steps that depend only on
// local files: manifest parsing and changelog extraction. Used by
// watch mode.
func WithLocalOnly(local bool) Option {
	return func(r *Runner) { r.local = local }
}

// New creates a gate runner for the project.
func New(project release.Project, resolver git.Resolver, status StatusChecker, opts ...Option) *Runner {
	r := &Runner{
		project:  project,
		resolver: resolver,
		status:   status,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type stepFunc func(context.Context, *Result) *StepResult

type pipelineStep struct {
	step release.Step
	run  stepFunc
}

func (r *Runner) pipeline() []pipelineStep {
	if r.local {
		return []pipelineStep{
			{release.StepManifest, r.runManifest},
			{release.StepChangelog, r.runChangelog},
		}
	}
	return []pipelineStep{
		{release.StepManifest, r.runManifest},
		{release.StepRevisions, r.runRevisions},
		{release.StepTagMatch, r.runTagMatch},
		{release.StepCIStatus, r.runCIStatus},
		{release.StepChangelog, r.runChangelog},
	}
}

// Run executes the pipeline in order, stopping at the first failure.
// The verdict and the failing error are both on the returned Result.
func (r *Runner) Run(ctx context.Context) *Result {
	start := time.Now()
	result := &Result{Project: r.project, Status: release.RunFailed}

	for _, ps := range r.pipeline() {
		sr := r.runStep(ctx, ps, result)
		result.Steps = append(result.Steps, *sr)
		if !sr.Passed {
			if ctx.Err() != nil {
				result.Status = release.RunCanceled
			}
			result.Duration = time.Since(start)
			log.Debug().
				Str("step", string(sr.Step)).
				Err(sr.Err).
				Msg("gate run failed")
			return result
		}
	}

	result.Status = release.RunPassed
	result.Duration = time.Since(start)
	return result
}

// runStep wraps a step with timing and observer notifications.
func (r *Runner) runStep(ctx context.Context, ps pipelineStep, result *Result) *StepResult {
	if r.observer != nil {
		r.observer(Event{Step: ps.step})
	}

	start := time.Now()
	sr := ps.run(ctx, result)
	sr.Step = ps.step
	sr.Duration = time.Since(start)

	if r.observer != nil {
		r.observer(Event{Step: ps.step, Result: sr})
	}
	return sr
}

func (r *Runner) runManifest(ctx context.Context, result *Result) *StepResult {
	sr := &StepResult{}

	version, err := manifest.ReadVersion(r.project.Manifest)
	if err != nil {
		sr.Err = err
		return sr
	}

	if err := manifest.CheckSemver(version); err != nil {
		if r.project.StrictVersion {
			sr.Err = fmt.Errorf("%w: %v", manifest.ErrVersionNotFound, err)
			return sr
		}
		log.Warn().Str("version", version).Msg("manifest version is not valid semver")
	}

	if r.emitter != nil {
		if err := r.emitter.SetOutput("version", version); err != nil {
			sr.Err = fmt.Errorf("emit version: %w", err)
			return sr
		}
	}

	result.Version = version
	sr.Passed = true
	sr.Detail = version
	return sr
}

func (r *Runner) runRevisions(ctx context.Context, result *Result) *StepResult {
	sr := &StepResult{}

	head, err := r.resolver.Resolve(ctx, "HEAD")
	if err != nil {
		sr.Err = err
		return sr
	}
	result.HeadRev = head

	tagRev, err := r.resolver.ResolveRemoteTag(ctx, r.project.Remote, r.project.TagRef(result.Version))
	if err != nil {
		sr.Err = err
		return sr
	}
	result.TagRev = tagRev

	sr.Passed = true
	sr.Detail = fmt.Sprintf("HEAD=%s tag=%s", shortRev(head), shortRev(tagRev))
	return sr
}

func (r *Runner) runTagMatch(ctx context.Context, result *Result) *StepResult {
	sr := &StepResult{}

	if result.HeadRev != result.TagRev {
		sr.Err = &MismatchError{Tag: r.project.Tag(result.Version)}
		return sr
	}

	sr.Passed = true
	sr.Detail = fmt.Sprintf("%s points at HEAD", r.project.Tag(result.Version))
	return sr
}

func (r *Runner) runCIStatus(ctx context.Context, result *Result) *StepResult {
	sr := &StepResult{}

	if r.skipCI {
		sr.Passed = true
		sr.Detail = "skipped"
		return sr
	}

	if err := r.status.Check(ctx); err != nil {
		sr.Err = err
		return sr
	}

	sr.Passed = true
	sr.Detail = r.project.CI.Marker()
	return sr
}

func (r *Runner) runChangelog(ctx context.Context, result *Result) *StepResult {
	sr := &StepResult{}

	header := changelog.Header(r.project.DisplayName, result.Version, r.now())
	result.Header = header

	entry, err := changelog.ReadEntry(r.project.Changelog, header)
	if err != nil {
		sr.Err = err
		return sr
	}
	result.Entry = entry

	if r.emitter != nil {
		if err := r.emitter.SetOutput("changelog", actions.JSONString(entry)); err != nil {
			sr.Err = fmt.Errorf("emit changelog: %w", err)
			return sr
		}
	}

	sr.Passed = true
	sr.Detail = header
	return sr
}

// shortRev abbreviates a revision id for step details.
func shortRev(rev string) string {
	if len(rev) > 8 {
		return rev[:8]
	}
	return rev
}
