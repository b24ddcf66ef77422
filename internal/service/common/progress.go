//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// spinnerDelay is the frame interval of the progress spinner.
const spinnerDelay = 100 * time.Millisecond

// Progress shows that a long operation is running.
type Progress interface {
	Start(message string)
	Stop()
}

// NoProgress is a Progress that shows nothing.
type NoProgress struct{}

// Start implements Progress.
func (NoProgress) Start(string) {}

// Stop implements Progress.
func (NoProgress) Stop() {}

// spinnerProgress draws a spinner on a terminal.
type spinnerProgress struct {
	loader *spinner.Spinner
}

// NewProgress returns a spinner on out when enabled and out is a terminal,
// NoProgress otherwise.
//
//nolint:ireturn // Callers only need the behaviour.
func NewProgress(out *os.File, enabled bool) Progress {
	if !enabled || out == nil || !term.IsTerminal(int(out.Fd())) { //nolint:gosec // Fd fits in int.
		return NoProgress{}
	}

	loader := spinner.New(spinner.CharSets[11], spinnerDelay, spinner.WithWriter(out))
	_ = loader.Color("yellow")

	return &spinnerProgress{loader: loader}
}

// Start implements Progress.
func (p *spinnerProgress) Start(message string) {
	p.loader.Suffix = " " + message
	p.loader.Start()
}

// Stop implements Progress.
func (p *spinnerProgress) Stop() {
	p.loader.Stop()
}
