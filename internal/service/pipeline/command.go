package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/kreilos/leggio-release/internal/config"
	"github.com/kreilos/leggio-release/internal/domain/release"
	"github.com/kreilos/leggio-release/internal/logger"
	"github.com/kreilos/leggio-release/internal/service/common"
	"github.com/kreilos/leggio-release/internal/service/deployer"
	"github.com/kreilos/leggio-release/internal/service/packager"
)

// Step selects which part of the pipeline runs.
type Step string

const (
	// StepAll runs rename then deploy.
	StepAll Step = "all"
	// StepRename runs the version-qualify step only.
	StepRename Step = "rename"
	// StepDeploy runs the deploy step only.
	StepDeploy Step = "deploy"
)

// Options contains inputs for the pipeline entry point.
type Options struct {
	// Config is shared by both steps.
	Config *config.Config
	// Stdout receives the status lines.
	Stdout io.Writer
	// Runner executes the copy command.
	Runner common.Runner
	// Progress is shown during the copy.
	Progress common.Progress
	// DryRun skips the copy command.
	DryRun bool
	// Only restricts the run to one step; empty means StepAll.
	Only Step
}

// Result reports how far the run got.
type Result struct {
	// Stage is the last stage reached, release.StageFailed on error.
	Stage release.Stage
	// Rename is set when the rename step completed.
	Rename *packager.Result
	// Deploy is set when the deploy step completed.
	Deploy *deployer.Result
}

var (
	// errConfigRequired is returned when Run is called without configuration.
	errConfigRequired = errors.New("pipeline configuration is not set")
	// ErrUnknownStep is returned for an Only value outside the Step constants.
	ErrUnknownStep = errors.New("unknown step")
)

// ParseStep converts a CLI value to a Step.
func ParseStep(s string) (Step, error) {
	switch Step(s) {
	case "", StepAll:
		return StepAll, nil
	case StepRename, StepDeploy:
		return Step(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
}

// runner carries one pass through the stages. Callers use Run.
type runner struct {
	opts    *Options
	tracker *release.Tracker
	result  *Result
}

// Run executes the selected steps in order. The returned Result is non-nil
// even on error so callers can see the stage that failed.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	ctx = logger.WithName(ctx, "pipeline")

	if opts == nil || opts.Config == nil {
		return nil, errConfigRequired
	}

	step, err := ParseStep(string(opts.Only))
	if err != nil {
		return nil, err
	}

	r := &runner{
		opts:    opts,
		tracker: release.NewTracker(release.StageBuildPending),
		result:  &Result{Stage: release.StageBuildPending},
	}

	err = r.Run(ctx, step)
	r.result.Stage = r.tracker.Current()

	if err != nil {
		logger.ErrorKV(ctx, "Release pipeline failed", "stage", r.result.Stage, "error", err)

		return r.result, err
	}

	logger.InfoKV(ctx, "Release pipeline finished", "stage", r.result.Stage)

	return r.result, nil
}

// Run walks the stages for step.
func (r *runner) Run(ctx context.Context, step Step) error {
	// Being invoked means assembleRelease has finished.
	if err := r.advance(ctx, release.StageBuildDone); err != nil {
		return err
	}

	if step == StepAll || step == StepRename {
		if err := r.rename(ctx); err != nil {
			return r.fail(ctx, err)
		}
	}

	if step == StepAll || step == StepDeploy {
		if err := r.deploy(ctx); err != nil {
			return r.fail(ctx, err)
		}
	}

	return nil
}

// rename runs the version-qualify step and records Renamed or Skipped.
func (r *runner) rename(ctx context.Context) error {
	res, err := packager.Run(ctx, &packager.Options{
		Config: r.opts.Config,
		Stdout: r.opts.Stdout,
	})
	if err != nil {
		return fmt.Errorf("rename artifact: %w", err)
	}

	r.result.Rename = res

	return r.advance(ctx, res.Stage)
}

// deploy runs the copy and records Done only after it succeeded.
func (r *runner) deploy(ctx context.Context) error {
	if err := r.advance(ctx, release.StageDeployAttempted); err != nil {
		return err
	}

	res, err := deployer.Run(ctx, &deployer.Options{
		Config:   r.opts.Config,
		Stdout:   r.opts.Stdout,
		Runner:   r.opts.Runner,
		Progress: r.opts.Progress,
		DryRun:   r.opts.DryRun,
	})
	if err != nil {
		return fmt.Errorf("deploy artifact: %w", err)
	}

	r.result.Deploy = res

	if !res.Deployed {
		return nil
	}

	return r.advance(ctx, release.StageDone)
}

// advance moves the tracker and logs the new stage.
func (r *runner) advance(ctx context.Context, next release.Stage) error {
	if err := r.tracker.Advance(next); err != nil {
		return err
	}

	logger.DebugKV(ctx, "Stage reached", "stage", next)

	return nil
}

// fail records StageFailed and returns err unchanged.
func (r *runner) fail(ctx context.Context, err error) error {
	if advanceErr := r.advance(ctx, release.StageFailed); advanceErr != nil {
		return errors.Join(err, advanceErr)
	}

	return err
}
