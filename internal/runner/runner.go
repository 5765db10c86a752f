// Package runner executes a resolved recipe plan: one subprocess per
// command line, strictly sequential, halting on the first failure.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/griddle-dev/griddle/internal/recipe"
	"github.com/griddle-dev/griddle/internal/style"
)

// Options configures a Runner.
type Options struct {
	// Shell is the invocation each command line is handed to, e.g.
	// ["sh", "-c"]. The expanded line is appended as the final argument.
	Shell []string

	// ExtraEnv is appended to the inherited environment for every
	// subprocess (e.g. entries loaded from a .env file).
	ExtraEnv []string

	// Quiet suppresses command echo for the whole run.
	Quiet bool

	// DryRun prints the plan and its expanded command lines without
	// spawning anything.
	DryRun bool

	// LockPath, if non-empty, is an advisory lock file acquired for the
	// duration of the run so concurrent invocations against the same
	// recipe file serialize.
	LockPath string

	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes plans. Each Runner carries a unique run ID, exported to
// subprocesses as GRIDDLE_RUN so recipe commands can correlate output.
type Runner struct {
	opts  Options
	runID string
}

// New creates a Runner, filling in defaults for unset options.
func New(opts Options) *Runner {
	if len(opts.Shell) == 0 {
		opts.Shell = []string{"sh", "-c"}
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	return &Runner{
		opts:  opts,
		runID: uuid.New().String(),
	}
}

// RunID returns the unique identifier for this invocation.
func (r *Runner) RunID() string {
	return r.runID
}

// Run executes the plan in order, binding call-time args to the requested
// (last) recipe and declared defaults to every prerequisite. All bindings
// are validated before any subprocess starts, so argument errors never
// leave partial side effects. The first command line that exits non-zero
// halts the run; nothing later in the plan is attempted.
func (r *Runner) Run(ctx context.Context, plan recipe.Plan, args []string) error {
	bindings, err := bindPlan(plan, args)
	if err != nil {
		return err
	}

	if r.opts.DryRun {
		r.printPlan(plan, bindings)
		return nil
	}

	if r.opts.LockPath != "" {
		fl := flock.New(r.opts.LockPath)
		if err := fl.Lock(); err != nil {
			return fmt.Errorf("acquiring run lock %s: %w", r.opts.LockPath, err)
		}
		defer fl.Unlock() //nolint:errcheck // releasing on exit, nothing to do on failure
	}

	// An interrupt is forwarded to the running child; once it exits the
	// rest of the plan is abandoned.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for _, rec := range plan {
		vals := bindings[rec.Name]
		for _, line := range rec.Body {
			cmdline := recipe.Expand(line, vals)
			if !r.opts.Quiet && !rec.Quiet {
				fmt.Fprintf(r.opts.Stderr, "%s %s\n", style.ArrowPrefix, style.Dim.Render(cmdline))
			}
			if err := r.runCommand(ctx, rec.Name, cmdline, sigCh); err != nil {
				return err
			}
		}
	}
	return nil
}

// bindPlan resolves parameter values for every recipe in the plan.
// Only the requested recipe sees the caller's arguments; transitively
// pulled-in prerequisites always run on their own declared defaults.
func bindPlan(plan recipe.Plan, args []string) (map[string]map[string]string, error) {
	requested := plan.Requested()
	bindings := make(map[string]map[string]string, len(plan))
	for _, rec := range plan {
		var vals map[string]string
		var err error
		if rec == requested {
			vals, err = recipe.BindArgs(rec, args)
		} else {
			vals, err = recipe.DefaultBindings(rec)
		}
		if err != nil {
			return nil, err
		}
		bindings[rec.Name] = vals
	}
	return bindings, nil
}

// printPlan writes the dry-run view: each planned recipe followed by its
// expanded command lines.
func (r *Runner) printPlan(plan recipe.Plan, bindings map[string]map[string]string) {
	for _, rec := range plan {
		fmt.Fprintln(r.opts.Stdout, style.Bold.Render(rec.Name))
		for _, line := range rec.Body {
			fmt.Fprintf(r.opts.Stdout, "  %s %s\n", style.ArrowPrefix, recipe.Expand(line, bindings[rec.Name]))
		}
	}
}

// runCommand spawns one command line and blocks until it exits. A signal
// received by griddle is forwarded to the child; the child's exit is then
// reported as an interruption rather than a plain failure.
func (r *Runner) runCommand(ctx context.Context, recipeName, cmdline string, sigCh <-chan os.Signal) error {
	shell := r.opts.Shell
	cmd := exec.Command(shell[0], append(shell[1:], cmdline)...) //nolint:gosec // G204: running user-authored recipe lines is the point
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.opts.Stdout
	cmd.Stderr = r.opts.Stderr
	cmd.Env = append(os.Environ(), r.opts.ExtraEnv...)
	cmd.Env = append(cmd.Env, "GRIDDLE_RUN="+r.runID, "GRIDDLE_RECIPE="+recipeName)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("recipe %q: starting %q: %w", recipeName, cmdline, err)
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	select {
	case sig := <-sigCh:
		_ = cmd.Process.Signal(sig)
		<-waitCh
		return &InterruptedError{Sig: sig}
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-waitCh
		return ctx.Err()
	case err := <-waitCh:
		if err == nil {
			return nil
		}
		code, signaled := exitStatus(err)
		return &SubprocessFailure{
			Recipe:   recipeName,
			Command:  cmdline,
			ExitCode: code,
			Signaled: signaled,
		}
	}
}
