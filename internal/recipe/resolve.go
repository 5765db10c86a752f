package recipe

// Plan is the deduplicated, dependency-respecting order in which recipes
// run for one request. The requested recipe is always last.
type Plan []*Recipe

// Names returns the plan's recipe names in execution order.
func (p Plan) Names() []string {
	names := make([]string, len(p))
	for i, r := range p {
		names[i] = r.Name
	}
	return names
}

// Requested returns the plan's final entry. For a plan from Resolve this
// is the requested recipe; it is the one that receives call-time
// arguments.
func (p Plan) Requested() *Recipe {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Visit colors for cycle detection.
const (
	colorWhite = iota // not visited
	colorGray         // on the current resolution path
	colorBlack        // fully resolved
)

// Resolve computes the execution plan for one requested recipe: a
// depth-first postorder walk of its dependency graph, appending each
// recipe the first time it is fully resolved. A shared prerequisite
// therefore appears exactly once, before everything that depends on it.
//
// Returns UnknownRecipeError if the name is not in the set and
// CyclicDependencyError if a cycle is reachable from it.
func Resolve(set *Set, name string) (Plan, error) {
	return ResolveAll(set, []string{name})
}

// ResolveAll resolves several requested recipes into a single plan.
// Resolution state is shared across the requests, so a prerequisite
// reachable from more than one of them still appears exactly once.
func ResolveAll(set *Set, names []string) (Plan, error) {
	for _, name := range names {
		if _, ok := set.Lookup(name); !ok {
			return nil, &UnknownRecipeError{Name: name}
		}
	}

	var plan Plan
	colors := make(map[string]int)
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch colors[name] {
		case colorBlack:
			return nil
		case colorGray:
			return &CyclicDependencyError{Cycle: cycleFrom(path, name)}
		}

		colors[name] = colorGray
		path = append(path, name)

		r, ok := set.Lookup(name)
		if !ok {
			// Parse guarantees dependency names exist; this guards
			// hand-built sets.
			return &UnknownRecipeError{Name: name}
		}
		for _, dep := range r.Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		colors[name] = colorBlack
		plan = append(plan, r)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// cycleFrom extracts the cycle from the resolution path: the segment from
// the first occurrence of name to the end, closed back on name.
func cycleFrom(path []string, name string) []string {
	for i, n := range path {
		if n == name {
			cycle := make([]string, 0, len(path)-i+1)
			cycle = append(cycle, path[i:]...)
			return append(cycle, name)
		}
	}
	return []string{name, name}
}
