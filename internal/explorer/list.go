package explorer

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/quocvuong92/pve-cli/internal/api"
	"github.com/quocvuong92/pve-cli/internal/output"
	"github.com/quocvuong92/pve-cli/internal/schema"
)

// Entry is one child of a listed resource
type Entry struct {
	Attribute string // "Dr--c": D has children, c accepts create
	Value     string
}

func attribute(n *schema.Node) string {
	var b strings.Builder
	if n.HasChildren() {
		b.WriteByte('D')
	} else {
		b.WriteByte('-')
	}
	b.WriteString("r--")
	if n.HasMethod(http.MethodPost) {
		b.WriteByte('c')
	} else {
		b.WriteByte('-')
	}
	return b.String()
}

// ListValues returns the children of a resource sorted by name. An indexed
// child is expanded by reading the resource and collecting the link key of
// every item. Entries gathered before a failure are returned with the error.
func (e *Explorer) ListValues(ctx context.Context, path string) ([]Entry, error) {
	node, ok := e.tree.Resolve(path)
	if !ok {
		return nil, noSuchResource(path)
	}
	if !node.HasChildren() {
		return nil, fmt.Errorf("resource '%s' %w", path, ErrNoChildLinks)
	}

	children := append([]*schema.Node(nil), node.Children()...)
	sort.SliceStable(children, func(i, j int) bool { return children[i].Name < children[j].Name })

	var entries []Entry
	for _, child := range children {
		attr := attribute(child)
		if !child.Indexed {
			entries = append(entries, Entry{Attribute: attr, Value: child.Name})
			continue
		}

		values, err := e.indexValues(ctx, node, child, path)
		if err != nil {
			return entries, err
		}
		for _, v := range values {
			entries = append(entries, Entry{Attribute: attr, Value: v})
		}
	}
	return entries, nil
}

func (e *Explorer) indexValues(ctx context.Context, node, child *schema.Node, path string) ([]string, error) {
	if trimmed := strings.TrimRight(path, "/"); trimmed != "" {
		path = trimmed
	}
	result, err := e.transport.Execute(ctx, api.Request{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, err
	}
	if !result.IsSuccessStatusCode() || result.InError() {
		return nil, api.NewRemoteError(result, false)
	}

	key := child.Key()
	if get, ok := schema.GetMethod(node); ok && get.ReturnLinkKey() != "" {
		key = get.ReturnLinkKey()
	}

	items, _ := result.Data().([]interface{})
	var values []string
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if v, ok := obj[key]; ok && v != nil {
			values = append(values, output.FormatValue(v))
		}
	}
	sortValues(values)
	return values, nil
}

// sortValues sorts numerically when every value is a number
func sortValues(values []string) {
	nums := make(map[string]float64, len(values))
	for _, v := range values {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			sort.Strings(values)
			return
		}
		nums[v] = n
	}
	sort.SliceStable(values, func(i, j int) bool { return nums[values[i]] < nums[values[j]] })
}

// List formats ListValues as "<attribute>        <value>" lines
func (e *Explorer) List(ctx context.Context, path string) (string, error) {
	entries, err := e.ListValues(ctx, path)
	lines := make([]string, len(entries))
	for i, en := range entries {
		lines[i] = en.Attribute + "        " + en.Value
	}
	text := strings.Join(lines, "\n")
	if text != "" {
		text += "\n"
	}
	return text, err
}
