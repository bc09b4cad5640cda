package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(true)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// Table renders rows under header
func Table(header []string, rows [][]string) string {
	var b strings.Builder
	table := newTable(&b, header)
	table.AppendBulk(rows)
	table.Render()
	return b.String()
}

// DataTable renders the data member of a result. keys are the declared
// return columns; when empty, objects use the union of their keys.
//
//   - a list of objects is one row per object
//   - a single object is one row with keys, or a key/value table without
//   - a list of scalars is a single "value" column
//   - a scalar is printed as is
func DataTable(data interface{}, keys []string) string {
	switch v := data.(type) {
	case nil:
		return ""
	case []interface{}:
		if len(v) == 0 {
			if len(keys) == 0 {
				return ""
			}
			return Table(keys, nil)
		}
		if !allObjects(v) {
			rows := make([][]string, len(v))
			for i, item := range v {
				rows[i] = []string{FormatValue(item)}
			}
			return Table([]string{"value"}, rows)
		}
		if len(keys) == 0 {
			keys = unionKeys(v)
		}
		rows := make([][]string, len(v))
		for i, item := range v {
			rows[i] = row(item.(map[string]interface{}), keys)
		}
		return Table(keys, rows)
	case map[string]interface{}:
		if len(keys) > 0 {
			return Table(keys, [][]string{row(v, keys)})
		}
		names := make([]string, 0, len(v))
		for k := range v {
			names = append(names, k)
		}
		sort.Strings(names)
		rows := make([][]string, len(names))
		for i, k := range names {
			rows[i] = []string{k, FormatValue(v[k])}
		}
		return Table([]string{"key", "value"}, rows)
	default:
		return FormatValue(v) + "\n"
	}
}

func allObjects(items []interface{}) bool {
	for _, item := range items {
		if _, ok := item.(map[string]interface{}); !ok {
			return false
		}
	}
	return true
}

func unionKeys(items []interface{}) []string {
	seen := map[string]bool{}
	var keys []string
	for _, item := range items {
		for k := range item.(map[string]interface{}) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func row(obj map[string]interface{}, keys []string) []string {
	cells := make([]string, len(keys))
	for i, k := range keys {
		cells[i] = FormatValue(obj[k])
	}
	return cells
}

// FormatValue renders one cell. Nested values are compact JSON.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return fmt.Sprint(t)
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
