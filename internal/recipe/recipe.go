// Package recipe provides parsing, validation, and execution planning for
// Griddlefile recipe definitions.
//
// A Griddlefile is a line-oriented text file of named recipes. Each recipe
// declares optional parameters, the recipes it depends on, and an indented
// body of shell command lines:
//
//	# Build the release binary
//	build(target, mode="release"): fmt-check
//	    go build -o bin/{target} -tags {mode} ./...
//
// Parse produces a Set, Resolve turns one requested name into a Plan (a
// deduplicated, dependency-respecting order), and the runner package
// executes the plan.
package recipe

import (
	"fmt"
	"strings"
)

// Param is a declared recipe parameter. Parameters without a default are
// required at call time.
type Param struct {
	Name       string
	Default    string
	HasDefault bool
}

// Recipe is a named, parameterized, dependency-ordered unit of shell
// command lines.
type Recipe struct {
	// Name uniquely identifies the recipe within its Set.
	Name string

	// Doc is the comment block immediately preceding the recipe header,
	// shown in listings.
	Doc string

	// Params are the declared parameters in declaration order.
	Params []Param

	// Deps are the names of recipes that must complete successfully
	// before this recipe's body runs.
	Deps []string

	// Body holds the shell command lines, one subprocess each.
	Body []string

	// Quiet suppresses command echo for this recipe (header prefixed
	// with '@').
	Quiet bool
}

// Hidden reports whether the recipe is omitted from listings. Recipes
// whose name starts with '_' are hidden.
func (r *Recipe) Hidden() bool {
	return strings.HasPrefix(r.Name, "_")
}

// Signature returns the recipe name with its parameter list, as shown in
// listings: "build(target, mode=\"release\")".
func (r *Recipe) Signature() string {
	if len(r.Params) == 0 {
		return r.Name
	}
	parts := make([]string, len(r.Params))
	for i, p := range r.Params {
		if p.HasDefault {
			parts[i] = fmt.Sprintf("%s=%q", p.Name, p.Default)
		} else {
			parts[i] = p.Name
		}
	}
	return fmt.Sprintf("%s(%s)", r.Name, strings.Join(parts, ", "))
}

// Set is an ordered collection of recipes parsed from one Griddlefile.
// Insertion order is preserved for listings.
type Set struct {
	order  []string
	byName map[string]*Recipe

	// Default is the recipe run when no name is requested, from a
	// top-level "default: <name>" line. Empty if unset.
	Default string
}

// NewSet returns an empty Set. Parse is the usual constructor; NewSet
// exists for building sets in memory (tests, tooling).
func NewSet() *Set {
	return &Set{byName: make(map[string]*Recipe)}
}

// Add appends a recipe to the set. It fails if the name is already taken.
func (s *Set) Add(r *Recipe) error {
	if _, exists := s.byName[r.Name]; exists {
		return fmt.Errorf("duplicate recipe %q", r.Name)
	}
	s.order = append(s.order, r.Name)
	s.byName[r.Name] = r
	return nil
}

// Lookup returns the recipe with the given name.
func (s *Set) Lookup(name string) (*Recipe, bool) {
	r, ok := s.byName[name]
	return r, ok
}

// Names returns all recipe names in file order.
func (s *Set) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Recipes returns all recipes in file order.
func (s *Set) Recipes() []*Recipe {
	recipes := make([]*Recipe, 0, len(s.order))
	for _, name := range s.order {
		recipes = append(recipes, s.byName[name])
	}
	return recipes
}

// Len returns the number of recipes in the set.
func (s *Set) Len() int {
	return len(s.order)
}
