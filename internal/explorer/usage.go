package explorer

import (
	"fmt"
	"strings"

	"github.com/quocvuong92/pve-cli/internal/output"
	"github.com/quocvuong92/pve-cli/internal/schema"
)

// Usage describes the methods of a resource, all of them or only verb's.
// verbose adds descriptions and a parameter table, returns the table of
// returned fields.
func (e *Explorer) Usage(path, verb string, returns, verbose bool) (string, error) {
	node, ok := e.tree.Resolve(path)
	if !ok {
		return "", noSuchResource(path)
	}

	var b strings.Builder
	for _, m := range node.Methods {
		if verb != "" && m.Verb() != strings.ToLower(verb) {
			continue
		}

		var params []schema.Parameter
		for _, p := range m.Parameters {
			if !node.IsKey(p.Name) {
				params = append(params, p)
			}
		}

		fmt.Fprintf(&b, "USAGE: %s %s", m.Verb(), path)
		hasOptional := false
		for _, p := range params {
			if p.Optional {
				hasOptional = true
				continue
			}
			fmt.Fprintf(&b, " %s:<%s>", p.Name, p.Type)
		}
		if hasOptional {
			b.WriteString(" [OPTIONS]")
		}
		b.WriteString("\n")

		if verbose {
			b.WriteString("\n  " + m.Description + "\n")
			b.WriteString(output.ParamTable(params))
		}
		if returns {
			b.WriteString("RETURNS:\n")
			b.WriteString(output.ParamTable(m.ReturnParameters))
		}
		if verbose {
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
