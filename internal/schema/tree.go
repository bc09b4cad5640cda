// Package schema models the Proxmox VE API as a tree of resources.
//
// The tree is built once per session from the apidoc document published by
// the server (see api.SchemaLoader) and is read-only afterwards. Paths are
// resolved segment by segment: a fixed child name wins over the single
// indexed child ({node}, {vmid}, ...) of each level.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// Tree is the resource tree of one API version
type Tree struct {
	Root  *Node
	count int
}

// Len returns the number of resources, the root excluded
func (t *Tree) Len() int {
	return t.count
}

type rawNode struct {
	Path     string               `json:"path"`
	Text     *string              `json:"text"`
	Info     map[string]rawMethod `json:"info"`
	Children []rawNode            `json:"children"`
}

type rawMethod struct {
	Method      string     `json:"method"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Protected   flexBool   `json:"protected"`
	Parameters  *rawSchema `json:"parameters"`
	Returns     *rawSchema `json:"returns"`
}

type rawSchema struct {
	Type        interface{}           `json:"type"`
	Description string                `json:"description"`
	Optional    flexBool              `json:"optional"`
	TypeText    string                `json:"typetext"`
	Enum        []interface{}         `json:"enum"`
	Properties  map[string]*rawSchema `json:"properties"`
	Items       *rawSchema            `json:"items"`
	Links       []struct {
		Rel  string `json:"rel"`
		Href string `json:"href"`
	} `json:"links"`
}

// flexBool accepts 1/0, true/false and "1"/"0"
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(bytes.TrimSpace(data)), `"`) {
	case "1", "true":
		*b = true
	default:
		*b = false
	}
	return nil
}

// Build parses the schema document, a JSON array of resource nodes.
// Comments and trailing commas are tolerated.
func Build(doc []byte) (*Tree, error) {
	var nodes []rawNode
	if err := json.Unmarshal(jsonc.ToJSON(doc), &nodes); err != nil {
		return nil, &Error{Msg: "malformed document", Err: err}
	}

	t := &Tree{Root: &Node{Path: "/", static: map[string]*Node{}}}
	for i := range nodes {
		if err := t.add(t.Root, &nodes[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree) add(parent *Node, raw *rawNode) error {
	if raw.Text == nil || *raw.Text == "" {
		path := raw.Path
		if path == "" {
			path = parent.Path
		}
		return &Error{Path: path, Msg: "resource without text"}
	}

	name := *raw.Text
	n := &Node{
		Name:    name,
		Indexed: strings.HasPrefix(name, "{") && strings.HasSuffix(name, "}"),
		Path:    raw.Path,
		parent:  parent,
		static:  map[string]*Node{},
	}
	if n.Path == "" {
		n.Path = strings.TrimSuffix(parent.Path, "/") + "/" + name
	}

	n.Keys = append([]string(nil), parent.Keys...)
	if n.Indexed {
		n.Keys = append(n.Keys, n.Key())
		if parent.indexed != nil {
			return &Error{Path: n.Path, Msg: fmt.Sprintf("second indexed child %s beside %s", name, parent.indexed.Name)}
		}
		parent.indexed = n
	} else {
		if _, dup := parent.static[name]; dup {
			return &Error{Path: n.Path, Msg: "duplicate resource " + name}
		}
		parent.static[name] = n
	}

	n.Methods = buildMethods(raw.Info)
	parent.children = append(parent.children, n)
	t.count++

	for i := range raw.Children {
		if err := t.add(n, &raw.Children[i]); err != nil {
			return err
		}
	}
	return nil
}

func buildMethods(info map[string]rawMethod) []Method {
	methods := make([]Method, 0, len(info))
	for httpMethod, rm := range info {
		m := Method{
			HTTPMethod:  strings.ToUpper(httpMethod),
			Name:        rm.Name,
			Description: rm.Description,
			Protected:   bool(rm.Protected),
		}
		if rm.Method != "" {
			m.HTTPMethod = strings.ToUpper(rm.Method)
		}
		if rm.Parameters != nil {
			m.Parameters = buildParameters(rm.Parameters.Properties)
		}
		if r := rm.Returns; r != nil {
			m.ReturnType = typeString(r.Type)
			props := r.Properties
			if r.Items != nil && r.Items.Properties != nil {
				props = r.Items.Properties
			}
			m.ReturnParameters = buildParameters(props)
			if len(r.Links) > 0 {
				m.ReturnLinkHRef = r.Links[0].Href
			}
		}
		methods = append(methods, m)
	}

	sort.Slice(methods, func(i, j int) bool {
		return verbRank(methods[i].HTTPMethod) < verbRank(methods[j].HTTPMethod)
	})
	return methods
}

// buildParameters returns the properties sorted by name
func buildParameters(props map[string]*rawSchema) []Parameter {
	if len(props) == 0 {
		return nil
	}
	params := make([]Parameter, 0, len(props))
	for name, p := range props {
		if p == nil {
			continue
		}
		param := Parameter{
			Name:        name,
			Type:        typeString(p.Type),
			Description: p.Description,
			TypeText:    p.TypeText,
			Optional:    bool(p.Optional),
		}
		for _, e := range p.Enum {
			param.Enum = append(param.Enum, fmt.Sprint(e))
		}
		params = append(params, param)
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return params
}

func typeString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []interface{}:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, "|")
	default:
		return fmt.Sprint(t)
	}
}

// Resolve maps a concrete path such as /nodes/pve1/qemu/100 to its node.
// Empty segments are ignored, so "", "/" and "//" all resolve to the root.
func (t *Tree) Resolve(path string) (*Node, bool) {
	n := t.Root
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if c, ok := n.static[seg]; ok {
			n = c
			continue
		}
		if n.indexed == nil {
			return nil, false
		}
		n = n.indexed
	}
	return n, true
}

// Bind returns the path variables of a concrete path, {"node": "pve1", "vmid": "100"}
func (t *Tree) Bind(path string) (map[string]string, bool) {
	values := map[string]string{}
	n := t.Root
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if c, ok := n.static[seg]; ok {
			n = c
			continue
		}
		if n.indexed == nil {
			return nil, false
		}
		n = n.indexed
		values[n.Key()] = seg
	}
	return values, true
}

// MethodsFor returns the node's methods matching the verb
func MethodsFor(n *Node, verb string) []Method {
	httpMethod, ok := HTTPMethod(verb)
	if !ok || n == nil {
		return nil
	}
	var out []Method
	for _, m := range n.Methods {
		if m.HTTPMethod == httpMethod {
			out = append(out, m)
		}
	}
	return out
}

// GetMethod is a shortcut for the node's GET method
func GetMethod(n *Node) (*Method, bool) {
	return n.Method(http.MethodGet)
}
