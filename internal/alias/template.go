package alias

import (
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`{\s*(.+?)\s*}`)

// ExtractPlaceholders returns the {name} arguments of a template in order,
// duplicates included.
func ExtractPlaceholders(template string) []string {
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}

// Render binds values to names positionally and replaces every placeholder
// of the template in a single pass. This is not the same as replacing each
// "{name}" in turn: a value that itself contains "{other}" is kept as typed
// instead of being substituted by a later placeholder. "{ name }" matches
// name, since spaces inside the braces are ignored. A name bound twice
// keeps its first value; unbound placeholders are left as they are.
func Render(template string, names, values []string) string {
	bound := make(map[string]string, len(names))
	for i, name := range names {
		if i >= len(values) {
			break
		}
		if _, ok := bound[name]; !ok {
			bound[name] = values[i]
		}
	}

	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := bound[name]; ok {
			return v
		}
		return m
	})
}

// Title is the line printed before an alias runs
func Title(d Definition, values []string) string {
	var b strings.Builder
	b.WriteString(d.Description)
	for i, name := range d.Placeholders() {
		if i >= len(values) {
			break
		}
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(values[i])
	}
	return b.String()
}
