//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kreilos/leggio-release/internal/logger"
)

// Command describes one external program invocation.
type Command struct {
	// Name is the program, resolved through PATH.
	Name string
	// Args are passed verbatim, without a shell.
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the current environment.
	Env []string
}

// String renders the command for logs, quoting arguments that need it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Name))

	for _, arg := range c.Args {
		parts = append(parts, quote(arg))
	}

	return strings.Join(parts, " ")
}

// Runner executes commands and reports failure through the returned error.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// waitDelay bounds how long Run waits for grandchildren (ssh under scp)
// holding the output pipes after the child was killed.
const waitDelay = 2 * time.Second

// ErrCommandFailed is wrapped by every error caused by a non-zero exit.
var ErrCommandFailed = errors.New("command failed")

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// Output receives the child's stdout. Nil means stderr, keeping our stdout clean.
	Output io.Writer
}

// NewExecRunner creates a runner forwarding child stdout to output.
func NewExecRunner(output io.Writer) *ExecRunner {
	return &ExecRunner{Output: output}
}

// Run starts cmd, waits for it and checks the exit status. Cancelling ctx kills the child.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	osCmd := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	osCmd.Dir = cmd.Dir
	osCmd.Env = append(os.Environ(), cmd.Env...)
	osCmd.WaitDelay = waitDelay

	var stderr bytes.Buffer

	osCmd.Stdout = r.Output
	if osCmd.Stdout == nil {
		osCmd.Stdout = os.Stderr
	}

	osCmd.Stderr = &stderr

	logger.DebugKV(ctx, "Running command", "command", cmd.String(), "dir", cmd.Dir)

	err := osCmd.Run()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", cmd.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%s exited with code %d: %s: %w",
			cmd.Name, exitErr.ExitCode(), strings.TrimSpace(stderr.String()), ErrCommandFailed)
	}

	return fmt.Errorf("start %s: %w", cmd.Name, err)
}

// quote wraps s in double quotes when it is empty or contains spaces or quotes.
func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\") {
		return s
	}

	return strconv.Quote(s)
}
