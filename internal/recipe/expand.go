package recipe

import "strings"

// Expand substitutes {param} placeholders in a command line with the bound
// values. A single left-to-right pass over the original line: substituted
// values are emitted as-is, never re-scanned, so an argument that happens
// to contain {braces} cannot trigger further substitution. Placeholders
// without a binding are left verbatim, so shell brace syntax passes
// through untouched.
func Expand(line string, vals map[string]string) string {
	var sb strings.Builder
	for i := 0; i < len(line); {
		open := strings.IndexByte(line[i:], '{')
		if open < 0 {
			sb.WriteString(line[i:])
			break
		}
		open += i
		end := strings.IndexByte(line[open:], '}')
		if end < 0 {
			sb.WriteString(line[i:])
			break
		}
		end += open
		if val, ok := vals[line[open+1:end]]; ok {
			sb.WriteString(line[i:open])
			sb.WriteString(val)
			i = end + 1
			continue
		}
		// Not a bound placeholder; emit the brace and keep scanning after it.
		sb.WriteString(line[i : open+1])
		i = open + 1
	}
	return sb.String()
}

// BindArgs binds positional call-time arguments to a recipe's declared
// parameters in order. Unfilled parameters fall back to their defaults;
// a required parameter left unfilled is a MissingArgumentError.
func BindArgs(r *Recipe, args []string) (map[string]string, error) {
	if len(args) > len(r.Params) {
		return nil, &ExtraArgumentError{Recipe: r.Name, Params: len(r.Params), Args: len(args)}
	}

	vals := make(map[string]string, len(r.Params))
	for i, p := range r.Params {
		switch {
		case i < len(args):
			vals[p.Name] = args[i]
		case p.HasDefault:
			vals[p.Name] = p.Default
		default:
			return nil, &MissingArgumentError{Recipe: r.Name, Param: p.Name}
		}
	}
	return vals, nil
}

// DefaultBindings binds a recipe's parameters using declared defaults only.
// Used for prerequisites pulled in transitively: they never receive the
// caller's arguments, so every parameter they declare must carry a default.
func DefaultBindings(r *Recipe) (map[string]string, error) {
	return BindArgs(r, nil)
}
