package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/griddle-dev/griddle/internal/recipe"
)

// requireShell skips tests that spawn real subprocesses where sh is not
// available.
func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests require sh")
	}
}

// resolvePlan parses recipe text and resolves the named recipe.
func resolvePlan(t *testing.T, text, name string) recipe.Plan {
	t.Helper()
	set, err := recipe.Parse([]byte(text))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	plan, err := recipe.Resolve(set, name)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return plan
}

func TestRun_SequentialOrder(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "order.log")

	text := fmt.Sprintf(`
lint: fmt-check
    echo lint >> %[1]s

fmt-check:
    echo fmt-check >> %[1]s
`, log)

	r := New(Options{Quiet: true})
	if err := r.Run(context.Background(), resolvePlan(t, text, "lint"), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatal(err)
	}
	want := "fmt-check\nlint\n"
	if string(data) != want {
		t.Errorf("execution log = %q, want %q", data, want)
	}
}

func TestRun_SharedPrerequisiteRunsOnce(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "c.log")

	text := fmt.Sprintf(`
top: a b
    true

a: c
    true

b: c
    true

c:
    echo c >> %s
`, log)

	r := New(Options{Quiet: true})
	if err := r.Run(context.Background(), resolvePlan(t, text, "top"), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "c\n"); got != 1 {
		t.Errorf("shared prerequisite ran %d times, want 1", got)
	}
}

func TestRun_FailureShortCircuits(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	after := filepath.Join(dir, "after")
	next := filepath.Join(dir, "next")

	text := fmt.Sprintf(`
all: broken
    touch %s

broken:
    exit 7
    touch %s
`, next, after)

	r := New(Options{Quiet: true})
	err := r.Run(context.Background(), resolvePlan(t, text, "all"), nil)

	var sf *SubprocessFailure
	if !errors.As(err, &sf) {
		t.Fatalf("error type = %T, want *SubprocessFailure (%v)", err, err)
	}
	if sf.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", sf.ExitCode)
	}
	if sf.Recipe != "broken" {
		t.Errorf("Recipe = %q, want %q", sf.Recipe, "broken")
	}
	if _, err := os.Stat(after); !os.IsNotExist(err) {
		t.Error("command after the failing line ran, want short-circuit")
	}
	if _, err := os.Stat(next); !os.IsNotExist(err) {
		t.Error("later plan entry ran after a failure, want short-circuit")
	}
}

func TestRun_ParameterExpansion(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "out")

	text := fmt.Sprintf(`
greet(name, greeting="hello"):
    echo "{greeting} {name}" > %s
`, out)

	r := New(Options{Quiet: true})
	if err := r.Run(context.Background(), resolvePlan(t, text, "greet"), []string{"world"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "hello world" {
		t.Errorf("output = %q, want %q", got, "hello world")
	}
}

func TestRun_PrerequisiteUsesOwnDefaults(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "dep-out")

	// The caller's argument binds to the requested recipe only; the
	// prerequisite must see its own default.
	text := fmt.Sprintf(`
main(mode): setup
    true

setup(level="basic"):
    echo {level} > %s
`, out)

	r := New(Options{Quiet: true})
	if err := r.Run(context.Background(), resolvePlan(t, text, "main"), []string{"full"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "basic" {
		t.Errorf("prerequisite saw %q, want its default %q", got, "basic")
	}
}

func TestRun_MissingArgumentFailsBeforeAnySubprocess(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	text := fmt.Sprintf(`
deploy(target): build
    true

build:
    touch %s
`, marker)

	r := New(Options{Quiet: true})
	err := r.Run(context.Background(), resolvePlan(t, text, "deploy"), nil)

	var me *recipe.MissingArgumentError
	if !errors.As(err, &me) {
		t.Fatalf("error type = %T, want *MissingArgumentError (%v)", err, err)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("prerequisite ran despite binding error, want fail-fast")
	}
}

func TestRun_RequiredParamOnPrerequisiteFails(t *testing.T) {
	text := `
main: dep
    true

dep(required):
    true
`

	r := New(Options{Quiet: true})
	err := r.Run(context.Background(), resolvePlan(t, text, "main"), nil)

	var me *recipe.MissingArgumentError
	if !errors.As(err, &me) {
		t.Fatalf("error type = %T, want *MissingArgumentError (%v)", err, err)
	}
	if me.Recipe != "dep" {
		t.Errorf("Recipe = %q, want %q", me.Recipe, "dep")
	}
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	text := fmt.Sprintf(`
lint: fmt-check
    touch %s

fmt-check:
    gofmt -l .
`, marker)

	var out strings.Builder
	r := New(Options{DryRun: true, Stdout: &out, Stderr: &out})
	if err := r.Run(context.Background(), resolvePlan(t, text, "lint"), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("dry run spawned a subprocess")
	}
	for _, want := range []string{"fmt-check", "lint", "gofmt -l ."} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("dry-run output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRun_CommandEcho(t *testing.T) {
	requireShell(t)

	text := `
loud:
    true

@hushed:
    true
`

	var stderr strings.Builder
	r := New(Options{Stderr: &stderr})
	if err := r.Run(context.Background(), resolvePlan(t, text, "loud"), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(stderr.String(), "true") {
		t.Errorf("expected command echo, got %q", stderr.String())
	}

	stderr.Reset()
	r = New(Options{Stderr: &stderr})
	if err := r.Run(context.Background(), resolvePlan(t, text, "hushed"), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.Contains(stderr.String(), "true") {
		t.Errorf("quiet recipe echoed its command: %q", stderr.String())
	}
}

func TestRun_EnvironmentPassthrough(t *testing.T) {
	requireShell(t)

	text := `
check:
    test "$EXTRA_VALUE" = "from-dotenv"
    test -n "$GRIDDLE_RUN"
    test "$GRIDDLE_RECIPE" = "check"
`

	r := New(Options{Quiet: true, ExtraEnv: []string{"EXTRA_VALUE=from-dotenv"}})
	if err := r.Run(context.Background(), resolvePlan(t, text, "check"), nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRun_ContextCancelKillsChild(t *testing.T) {
	requireShell(t)

	text := `
slow:
    sleep 30
`

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	r := New(Options{Quiet: true})
	err := r.Run(ctx, resolvePlan(t, text, "slow"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("cancellation took %v, child was not killed", elapsed)
	}
}

func TestRunID_UniqueAndStable(t *testing.T) {
	a := New(Options{})
	b := New(Options{})
	if a.RunID() == "" {
		t.Fatal("RunID() is empty")
	}
	if a.RunID() != a.RunID() {
		t.Error("RunID() changed between calls")
	}
	if a.RunID() == b.RunID() {
		t.Error("two runners share a RunID")
	}
}

func TestExitStatus(t *testing.T) {
	requireShell(t)

	err := exec.Command("sh", "-c", "exit 3").Run()
	code, signaled := exitStatus(err)
	if code != 3 || signaled {
		t.Errorf("exitStatus = (%d, %v), want (3, false)", code, signaled)
	}

	code, signaled = exitStatus(errors.New("not an exit error"))
	if code != 1 || signaled {
		t.Errorf("exitStatus = (%d, %v), want (1, false)", code, signaled)
	}
}
