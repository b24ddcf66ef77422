package release

import (
	"errors"
	"fmt"
)

// Stage is a step of the single forward pass of a release run.
type Stage int

const (
	// StageBuildPending means assembleRelease has not completed yet.
	StageBuildPending Stage = iota
	// StageBuildDone means the build finished and the pipeline may start.
	StageBuildDone
	// StageRenamed means the versioned copy was written.
	StageRenamed
	// StageSkipped means no source artifact existed, so nothing was copied.
	StageSkipped
	// StageDeployAttempted means the copy command has been launched.
	StageDeployAttempted
	// StageDone means the copy command reported success.
	StageDone
	// StageFailed is terminal and reachable from every non-terminal stage.
	StageFailed
)

// ErrIllegalTransition reports a transition outside the forward pass.
var ErrIllegalTransition = errors.New("illegal stage transition")

//nolint:gochecknoglobals // Immutable lookup table.
var stageNames = map[Stage]string{
	StageBuildPending:    "build_pending",
	StageBuildDone:       "build_done",
	StageRenamed:         "renamed",
	StageSkipped:         "skipped",
	StageDeployAttempted: "deploy_attempted",
	StageDone:            "done",
	StageFailed:          "failed",
}

//nolint:gochecknoglobals // Immutable lookup table.
var transitions = map[Stage][]Stage{
	StageBuildPending:    {StageBuildDone},
	StageBuildDone:       {StageRenamed, StageSkipped, StageDeployAttempted},
	StageRenamed:         {StageDeployAttempted},
	StageSkipped:         {StageDeployAttempted},
	StageDeployAttempted: {StageDone},
}

// String returns the snake_case name used in logs.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}

	return fmt.Sprintf("stage(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// CanTransition reports whether next directly follows s.
func (s Stage) CanTransition(next Stage) bool {
	if next == StageFailed {
		return !s.Terminal()
	}

	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Tracker records the current stage of one run.
type Tracker struct {
	current Stage
}

// NewTracker starts a tracker at the given stage.
func NewTracker(start Stage) *Tracker {
	return &Tracker{current: start}
}

// Current returns the stage reached so far.
func (t *Tracker) Current() Stage {
	return t.current
}

// Advance moves to next or returns ErrIllegalTransition.
func (t *Tracker) Advance(next Stage) error {
	if !t.current.CanTransition(next) {
		return fmt.Errorf("%s -> %s: %w", t.current, next, ErrIllegalTransition)
	}

	t.current = next

	return nil
}
