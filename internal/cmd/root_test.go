package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"

	"github.com/griddle-dev/griddle/internal/runner"
)

func TestFindRecipeFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	if _, err := findRecipeFile(""); err == nil {
		t.Error("findRecipeFile succeeded in empty directory, want error")
	}

	path := filepath.Join(dir, "griddlefile")
	if err := os.WriteFile(path, []byte("a:\n    x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := findRecipeFile("")
	if err != nil {
		t.Fatalf("findRecipeFile failed: %v", err)
	}
	if got != "griddlefile" {
		t.Errorf("findRecipeFile() = %q, want lowercase fallback", got)
	}

	// Capitalized name wins over the fallback.
	upper := filepath.Join(dir, "Griddlefile")
	if err := os.WriteFile(upper, []byte("a:\n    x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err = findRecipeFile("")
	if err != nil {
		t.Fatalf("findRecipeFile failed: %v", err)
	}
	if got != "Griddlefile" {
		t.Errorf("findRecipeFile() = %q, want %q", got, "Griddlefile")
	}
}

func TestFindRecipeFile_ExplicitMissing(t *testing.T) {
	_, err := findRecipeFile(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Error("findRecipeFile succeeded for missing explicit file, want error")
	}
}

func TestReportExit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "silent exit carries its code", err: NewSilentExit(7), want: 7},
		{
			name: "generic error is a usage error",
			err:  errors.New("unknown recipe"),
			want: exitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reportExit(tt.err); got != tt.want {
				t.Errorf("reportExit() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRunError(t *testing.T) {
	err := runError(&runner.SubprocessFailure{Recipe: "lint", Command: "x", ExitCode: 5})
	if code, ok := IsSilentExit(err); !ok || code != 5 {
		t.Errorf("runError(SubprocessFailure) = %v, want silent exit 5", err)
	}

	err = runError(&runner.InterruptedError{Sig: syscall.SIGINT})
	if code, ok := IsSilentExit(err); !ok || code != 130 {
		t.Errorf("runError(InterruptedError) = %v, want silent exit 130", err)
	}

	// Binding errors are not subprocess failures; they pass through and
	// classify as usage errors.
	bindErr := errors.New("missing argument")
	if got := runError(bindErr); got != bindErr {
		t.Errorf("runError(%v) = %v, want the error unchanged", bindErr, got)
	}
	if got := reportExit(runError(bindErr)); got != exitUsage {
		t.Errorf("exit status = %d, want %d", got, exitUsage)
	}
}

// TestRootEndToEnd drives the cobra command against a real recipe file.
func TestRootEndToEnd(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires sh")
	}
	dir := t.TempDir()
	t.Chdir(dir)

	marker := filepath.Join(dir, "ran")
	content := "# Touch the marker\nmark:\n    touch " + marker + "\n"
	if err := os.WriteFile(filepath.Join(dir, "Griddlefile"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"--no-lock", "--quiet", "mark"})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("recipe did not run: %v", err)
	}
}

func TestRootEndToEnd_FailureExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test requires sh")
	}
	dir := t.TempDir()
	t.Chdir(dir)

	content := "broken:\n    exit 5\n"
	if err := os.WriteFile(filepath.Join(dir, "Griddlefile"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"--no-lock", "--quiet", "broken"})
	err := rootCmd.ExecuteContext(context.Background())
	if code, ok := IsSilentExit(err); !ok || code != 5 {
		t.Errorf("Execute returned %v, want silent exit 5", err)
	}
}

func TestRootListFlag(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := "# Greet\nhello:\n    echo hi\n"
	if err := os.WriteFile(filepath.Join(dir, "Griddlefile"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{"--list"})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Errorf("--list output missing recipe name:\n%s", out.String())
	}
}
