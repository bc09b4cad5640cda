package output

import (
	"strings"

	"github.com/quocvuong92/pve-cli/internal/alias"
	"github.com/quocvuong92/pve-cli/internal/schema"
)

// Column widths of the parameter table
const (
	descriptionWidth = 45
	typeWidth        = 18
)

// JoinWord packs words into lines of at least width characters, joining
// them with sep. A line is emitted as soon as it reaches width, so a
// single long word is never split.
func JoinWord(words []string, width int, sep string) []string {
	var lines []string
	line := ""
	for _, w := range words {
		if strings.TrimSpace(line) != "" {
			line += sep
		}
		line += w
		if len(line) >= width {
			lines = append(lines, strings.TrimSpace(line))
			line = ""
		}
	}
	if strings.TrimSpace(line) != "" {
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}

// ParamTable renders a param/type/description table. Long types and
// descriptions continue on the following rows with an empty name cell.
func ParamTable(params []schema.Parameter) string {
	if len(params) == 0 {
		return ""
	}

	var rows [][]string
	for _, p := range params {
		description := strings.TrimSpace(strings.ReplaceAll(p.Description, "\n", " "))
		descParts := JoinWord(strings.Split(description, " "), descriptionWidth, " ")

		typeParts := []string{p.Type}
		switch {
		case strings.TrimSpace(p.TypeText) != "":
			typeParts = JoinWord(strings.Split(p.TypeText, " "), typeWidth, "")
		case len(p.Enum) > 0:
			typeParts = JoinWord(p.Enum, typeWidth, ",")
		}

		n := len(typeParts)
		if len(descParts) > n {
			n = len(descParts)
		}
		for i := 0; i < n; i++ {
			cells := []string{"", "", ""}
			if i == 0 {
				cells[0] = p.Name
			}
			if i < len(typeParts) {
				cells[1] = typeParts[i]
			}
			if i < len(descParts) {
				cells[2] = descParts[i]
			}
			rows = append(rows, cells)
		}
	}
	return Table([]string{"param", "type", "description"}, rows)
}

// AliasTable lists aliases; verbose adds the command and system columns
func AliasTable(defs []alias.Definition, verbose bool) string {
	header := []string{"name", "description"}
	if verbose {
		header = append(header, "command", "system")
	}

	rows := make([][]string, len(defs))
	for i, d := range defs {
		cells := []string{d.Name, d.Description}
		if verbose {
			system := ""
			if d.System {
				system = "X"
			}
			cells = append(cells, d.Command, system)
		}
		rows[i] = cells
	}
	return Table(header, rows)
}
