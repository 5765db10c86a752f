package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// SubprocessFailure reports a command line that exited non-zero or was
// killed by a signal. ExitCode is the child's status, or 128+signal when
// the child was signaled, and becomes griddle's own exit status.
type SubprocessFailure struct {
	Recipe   string
	Command  string
	ExitCode int
	Signaled bool
}

func (e *SubprocessFailure) Error() string {
	if e.Signaled {
		return fmt.Sprintf("recipe %q: command %q terminated by signal (status %d)",
			e.Recipe, e.Command, e.ExitCode)
	}
	return fmt.Sprintf("recipe %q: command %q exited with status %d",
		e.Recipe, e.Command, e.ExitCode)
}

// InterruptedError reports that griddle itself received an interrupt and
// stopped the plan after forwarding the signal to the running child.
type InterruptedError struct {
	Sig os.Signal
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("interrupted by %v", e.Sig)
}

// ExitCode returns the conventional 128+signal exit status.
func (e *InterruptedError) ExitCode() int {
	if sig, ok := e.Sig.(syscall.Signal); ok {
		return 128 + int(sig)
	}
	return 130
}

// exitStatus extracts a subprocess exit status from a Wait error.
// Signaled children report the conventional 128+signal status.
func exitStatus(err error) (code int, signaled bool) {
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return 1, false
	}
	if ws, ok := ee.Sys().(interface {
		Signaled() bool
		Signal() syscall.Signal
	}); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), true
	}
	if c := ee.ExitCode(); c >= 0 {
		return c, false
	}
	return 1, false
}
