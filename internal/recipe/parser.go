package recipe

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// validName matches recipe and parameter identifiers.
var validName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ParseFile reads and parses a Griddlefile from disk.
func ParseFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe file: %w", err)
	}
	return parse(data, path)
}

// Parse parses Griddlefile text into a Set.
func Parse(data []byte) (*Set, error) {
	return parse(data, "")
}

func parse(data []byte, path string) (*Set, error) {
	set := NewSet()

	var current *Recipe
	var pendingDoc []string

	lines := strings.Split(string(data), "\n")
	for i, raw := range lines {
		lineno := i + 1
		trimmed := strings.TrimSpace(raw)

		// Blank lines separate doc comments from later headers but do
		// not terminate a body.
		if trimmed == "" {
			pendingDoc = nil
			continue
		}

		indented := raw[0] == ' ' || raw[0] == '\t'

		if strings.HasPrefix(trimmed, "#") {
			if indented {
				// Comment inside a body, not a doc comment.
				continue
			}
			pendingDoc = append(pendingDoc, strings.TrimSpace(strings.TrimPrefix(trimmed, "#")))
			continue
		}

		if indented {
			if current == nil {
				return nil, &ParseError{Path: path, Line: lineno, Msg: "command line outside of any recipe"}
			}
			current.Body = append(current.Body, trimmed)
			pendingDoc = nil
			continue
		}

		// Header line.
		current = nil
		header, err := parseHeader(trimmed)
		if err != nil {
			return nil, &ParseError{Path: path, Line: lineno, Msg: err.Error()}
		}

		if header.isDefault {
			if set.Default != "" {
				return nil, &ParseError{Path: path, Line: lineno, Msg: "default recipe already set"}
			}
			set.Default = header.deps[0]
			pendingDoc = nil
			continue
		}

		r := &Recipe{
			Name:   header.name,
			Doc:    strings.Join(pendingDoc, " "),
			Params: header.params,
			Deps:   header.deps,
			Quiet:  header.quiet,
		}
		pendingDoc = nil
		if err := set.Add(r); err != nil {
			return nil, &ParseError{Path: path, Line: lineno, Msg: err.Error()}
		}
		current = r
	}

	// Dangling references are load-time errors. Forward references within
	// the file are fine; the name just has to exist in the final set.
	for _, r := range set.Recipes() {
		for _, dep := range r.Deps {
			if _, ok := set.Lookup(dep); !ok {
				return nil, &ParseError{
					Path: path,
					Msg:  fmt.Sprintf("recipe %q depends on undefined recipe %q", r.Name, dep),
				}
			}
		}
	}
	if set.Default != "" {
		if _, ok := set.Lookup(set.Default); !ok {
			return nil, &ParseError{
				Path: path,
				Msg:  fmt.Sprintf("default recipe %q is not defined", set.Default),
			}
		}
	}

	return set, nil
}

type headerLine struct {
	name      string
	params    []Param
	deps      []string
	quiet     bool
	isDefault bool
}

// parseHeader parses "name(p, q=\"v\"): dep1 dep2" into its parts.
func parseHeader(line string) (*headerLine, error) {
	h := &headerLine{}

	rest := line
	if strings.HasPrefix(rest, "@") {
		h.quiet = true
		rest = strings.TrimPrefix(rest, "@")
	}

	// The colon separating name from dependencies sits after the
	// parameter list, if any, so defaults may contain colons.
	searchFrom := 0
	if open := strings.IndexByte(rest, '('); open >= 0 && !strings.ContainsRune(rest[:open], ':') {
		end := closingParen(rest, open)
		if end < 0 {
			return nil, fmt.Errorf("unterminated parameter list")
		}
		searchFrom = end
	}
	colon := strings.IndexByte(rest[searchFrom:], ':')
	if colon < 0 {
		return nil, fmt.Errorf("missing ':' in recipe header")
	}
	colon += searchFrom

	head := strings.TrimSpace(rest[:colon])
	h.deps = strings.Fields(rest[colon+1:])

	if open := strings.IndexByte(head, '('); open >= 0 {
		if closingParen(head, open) != len(head)-1 {
			return nil, fmt.Errorf("unterminated parameter list")
		}
		params, err := parseParams(head[open+1 : len(head)-1])
		if err != nil {
			return nil, err
		}
		h.params = params
		head = head[:open]
	}

	h.name = strings.TrimSpace(head)
	if !validName.MatchString(h.name) {
		return nil, fmt.Errorf("invalid recipe name %q", h.name)
	}

	if h.name == "default" && !h.quiet && len(h.params) == 0 {
		if len(h.deps) != 1 {
			return nil, fmt.Errorf("default line must name exactly one recipe")
		}
		h.isDefault = true
	}

	for _, dep := range h.deps {
		if !validName.MatchString(dep) {
			return nil, fmt.Errorf("invalid dependency name %q", dep)
		}
	}

	return h, nil
}

// parseParams parses the inside of a parameter list: `target, mode="debug"`.
func parseParams(inner string) ([]Param, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return nil, nil
	}

	var params []Param
	seen := make(map[string]bool)
	for _, tok := range splitParams(inner) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return nil, fmt.Errorf("empty parameter declaration")
		}

		p := Param{Name: tok}
		if eq := strings.IndexByte(tok, '='); eq >= 0 {
			p.Name = strings.TrimSpace(tok[:eq])
			val := strings.TrimSpace(tok[eq+1:])
			if len(val) < 2 || val[0] != '"' || val[len(val)-1] != '"' {
				return nil, fmt.Errorf("parameter %q: default value must be double-quoted", p.Name)
			}
			p.Default = val[1 : len(val)-1]
			p.HasDefault = true
		}

		if !validName.MatchString(p.Name) {
			return nil, fmt.Errorf("invalid parameter name %q", p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate parameter %q", p.Name)
		}
		seen[p.Name] = true
		params = append(params, p)
	}
	return params, nil
}

// closingParen returns the index of the ')' matching the '(' at open,
// skipping over double-quoted defaults. Returns -1 if unclosed.
func closingParen(s string, open int) int {
	inQuote := false
	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case ')':
			if !inQuote {
				return i
			}
		}
	}
	return -1
}

// splitParams splits a parameter list on commas, honoring double quotes so
// defaults may contain commas.
func splitParams(inner string) []string {
	var parts []string
	var sb strings.Builder
	inQuote := false
	for _, r := range inner {
		switch {
		case r == '"':
			inQuote = !inQuote
			sb.WriteRune(r)
		case r == ',' && !inQuote:
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteRune(r)
		}
	}
	parts = append(parts, sb.String())
	return parts
}
