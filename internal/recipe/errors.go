package recipe

import (
	"fmt"
	"strings"
)

// ParseError reports malformed Griddlefile syntax or a dangling reference
// discovered while loading. Line is 1-based; 0 means the error is not tied
// to a single line.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	path := e.Path
	if path == "" {
		path = "griddlefile"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", path, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", path, e.Msg)
}

// UnknownRecipeError reports a requested recipe name that is not in the set.
type UnknownRecipeError struct {
	Name string
}

func (e *UnknownRecipeError) Error() string {
	return fmt.Sprintf("unknown recipe %q", e.Name)
}

// CyclicDependencyError reports a dependency cycle reachable from the
// requested recipe. Cycle holds the names along the cycle, first == last.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// MissingArgumentError reports a required parameter left unfilled.
type MissingArgumentError struct {
	Recipe string
	Param  string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("recipe %q: missing argument for required parameter %q", e.Recipe, e.Param)
}

// ExtraArgumentError reports more call-time arguments than the recipe
// declares parameters for.
type ExtraArgumentError struct {
	Recipe string
	Params int
	Args   int
}

func (e *ExtraArgumentError) Error() string {
	return fmt.Sprintf("recipe %q takes at most %d argument(s), got %d", e.Recipe, e.Params, e.Args)
}
