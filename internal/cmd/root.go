// Package cmd implements the griddle command-line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/griddle-dev/griddle/internal/config"
	"github.com/griddle-dev/griddle/internal/recipe"
	"github.com/griddle-dev/griddle/internal/runner"
	"github.com/griddle-dev/griddle/internal/style"
	"github.com/griddle-dev/griddle/internal/tui/chooser"
	"github.com/griddle-dev/griddle/internal/ui"
)

// exitUsage is returned for parse, resolution, and binding errors so
// callers can tell an invalid request apart from failed work.
const exitUsage = 2

var (
	flagList   bool
	flagChoose bool
	flagFile   string
	flagDryRun bool
	flagQuiet  bool
	flagShell  string
	flagNoLock bool
)

var rootCmd = &cobra.Command{
	Use:   "griddle [recipe] [args...]",
	Short: "Run recipes from a Griddlefile",
	Long: `Griddle runs named recipes from a Griddlefile in the current directory.

A recipe declares the recipes it depends on and an indented body of shell
command lines. Requesting a recipe runs its transitive prerequisites first,
each at most once, then the recipe itself. The first failing command stops
the run and its exit status becomes griddle's.

With no recipe name, griddle runs the recipe named on a "default:" line,
or lists the available recipes if there is none.

Examples:
  griddle              # run the default recipe, or list
  griddle test         # run the test recipe and its prerequisites
  griddle build linux  # run build with "linux" bound to its first parameter
  griddle --list       # list recipes with descriptions
  griddle --choose     # pick a recipe interactively`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	// Flags after the recipe name belong to the recipe, not to griddle.
	rootCmd.Flags().SetInterspersed(false)

	rootCmd.Flags().BoolVarP(&flagList, "list", "l", false, "List available recipes and exit")
	rootCmd.Flags().BoolVar(&flagChoose, "choose", false, "Pick a recipe interactively")
	rootCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Recipe file to read (default: Griddlefile)")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the execution plan without running anything")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "Do not echo commands before running them")
	rootCmd.Flags().StringVar(&flagShell, "shell", "", "Shell invocation for command lines (overrides config)")
	rootCmd.Flags().BoolVar(&flagNoLock, "no-lock", false, "Skip the advisory run lock")
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	return reportExit(rootCmd.Execute())
}

// reportExit maps an error from the command tree to griddle's exit status.
// Run failures arrive already reported as silent exits carrying the child's
// status; anything else is an invalid request.
func reportExit(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := IsSilentExit(err); ok {
		return code
	}
	style.PrintError("%v", err)
	return exitUsage
}

// runError reports a runner failure and wraps it into a silent exit so the
// child's status propagates without being printed twice. Binding and
// resolution errors pass through untouched and classify as usage errors.
func runError(err error) error {
	var ie *runner.InterruptedError
	if errors.As(err, &ie) {
		style.PrintWarning("%v", ie)
		return NewSilentExit(ie.ExitCode())
	}
	var sf *runner.SubprocessFailure
	if errors.As(err, &sf) {
		style.PrintError("%v", sf)
		return NewSilentExit(sf.ExitCode)
	}
	return err
}

func runRoot(cmd *cobra.Command, args []string) error {
	path, err := findRecipeFile(flagFile)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)

	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	ui.InitTheme(cfg.Theme)

	set, err := recipe.ParseFile(path)
	if err != nil {
		return err
	}

	if flagList {
		printListing(cmd.OutOrStdout(), set)
		return nil
	}

	requested := ""
	recipeArgs := args
	if len(args) > 0 {
		requested = args[0]
		recipeArgs = args[1:]
	}

	if flagChoose {
		if requested != "" {
			return fmt.Errorf("--choose cannot be combined with a recipe name")
		}
		if !ui.IsTerminal() {
			return fmt.Errorf("--choose requires a terminal")
		}
		name, err := chooser.Choose(set)
		if err != nil {
			return err
		}
		if name == "" {
			// Dismissed without choosing; nothing to run.
			return nil
		}
		requested = name
	}

	if requested == "" {
		if set.Default == "" {
			printListing(cmd.OutOrStdout(), set)
			return nil
		}
		requested = set.Default
	}

	plan, err := recipe.Resolve(set, requested)
	if err != nil {
		return err
	}

	shell := cfg.ShellCommand()
	if flagShell != "" {
		shell = strings.Fields(flagShell)
	}

	extraEnv, err := cfg.DotenvVars(dir)
	if err != nil {
		return err
	}

	lockPath := ""
	if !flagNoLock {
		lockPath = path + ".lock"
	}

	r := runner.New(runner.Options{
		Shell:    shell,
		ExtraEnv: extraEnv,
		Quiet:    flagQuiet,
		DryRun:   flagDryRun,
		LockPath: lockPath,
	})
	if err := r.Run(cmd.Context(), plan, recipeArgs); err != nil {
		return runError(err)
	}
	return nil
}

// findRecipeFile locates the recipe file: the explicit --file value, then
// Griddlefile, then griddlefile, in the current directory.
func findRecipeFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("recipe file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, name := range []string{"Griddlefile", "griddlefile"} {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("no Griddlefile found in current directory (see --file)")
}
