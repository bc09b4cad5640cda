package schema

import (
	"net/http"
	"sort"
	"strings"
)

// Verbs exposed by the shell
const (
	VerbGet    = "get"
	VerbSet    = "set"
	VerbCreate = "create"
	VerbDelete = "delete"
)

// Verbs lists the shell verbs in display order
var Verbs = []string{VerbGet, VerbSet, VerbCreate, VerbDelete}

var verbMethods = map[string]string{
	VerbGet:    http.MethodGet,
	VerbSet:    http.MethodPut,
	VerbCreate: http.MethodPost,
	VerbDelete: http.MethodDelete,
}

// HTTPMethod maps a verb to its HTTP method
func HTTPMethod(verb string) (string, bool) {
	m, ok := verbMethods[strings.ToLower(verb)]
	return m, ok
}

// VerbFor maps an HTTP method to its verb
func VerbFor(method string) string {
	for v, m := range verbMethods {
		if m == strings.ToUpper(method) {
			return v
		}
	}
	return strings.ToLower(method)
}

func verbRank(method string) int {
	for i, v := range Verbs {
		if verbMethods[v] == method {
			return i
		}
	}
	return len(Verbs)
}

// Parameter describes a method argument or a return field
type Parameter struct {
	Name        string
	Type        string
	Description string
	TypeText    string
	Optional    bool
	Enum        []string
}

// Method is one HTTP method of a resource
type Method struct {
	HTTPMethod  string // GET, PUT, POST, DELETE
	Name        string // API method name, e.g. vm_start
	Description string
	Protected   bool

	Parameters       []Parameter
	ReturnType       string
	ReturnParameters []Parameter
	ReturnLinkHRef   string // e.g. {vmid}
}

// Verb returns the shell verb for the method
func (m *Method) Verb() string {
	return VerbFor(m.HTTPMethod)
}

// ReturnKeys returns the return parameter names, required ones first,
// then by name.
func (m *Method) ReturnKeys() []string {
	params := make([]Parameter, len(m.ReturnParameters))
	copy(params, m.ReturnParameters)
	sort.SliceStable(params, func(i, j int) bool {
		if params[i].Optional != params[j].Optional {
			return !params[i].Optional
		}
		return params[i].Name < params[j].Name
	})

	keys := make([]string, len(params))
	for i, p := range params {
		keys[i] = p.Name
	}
	return keys
}

// ReturnLinkKey returns the child link href without braces
func (m *Method) ReturnLinkKey() string {
	return strings.NewReplacer("{", "", "}", "").Replace(m.ReturnLinkHRef)
}

// Node is one resource of the API tree. Nodes are immutable once the tree is built.
type Node struct {
	Name    string // segment, "{vmid}" for indexed nodes
	Indexed bool
	Path    string   // template path, e.g. /nodes/{node}/qemu
	Keys    []string // path variables from the root down to this node
	Methods []Method

	parent   *Node
	children []*Node
	static   map[string]*Node
	indexed  *Node
}

// Parent returns the parent node, nil for the root
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child nodes in document order
func (n *Node) Children() []*Node {
	return n.children
}

// HasChildren reports whether the resource defines child links
func (n *Node) HasChildren() bool {
	return len(n.children) > 0
}

// Child returns the static child with the given name
func (n *Node) Child(name string) (*Node, bool) {
	c, ok := n.static[name]
	return c, ok
}

// IndexedChild returns the {id} child, if any
func (n *Node) IndexedChild() *Node {
	return n.indexed
}

// Key returns the variable name of an indexed node, "vmid" for "{vmid}"
func (n *Node) Key() string {
	if !n.Indexed {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(n.Name, "{"), "}")
}

// Method returns the first method with the given HTTP method
func (n *Node) Method(httpMethod string) (*Method, bool) {
	for i := range n.Methods {
		if n.Methods[i].HTTPMethod == httpMethod {
			return &n.Methods[i], true
		}
	}
	return nil, false
}

// HasMethod reports whether the node supports the HTTP method
func (n *Node) HasMethod(httpMethod string) bool {
	_, ok := n.Method(httpMethod)
	return ok
}

// IsKey reports whether name is one of the node's path variables
func (n *Node) IsKey(name string) bool {
	for _, k := range n.Keys {
		if k == name {
			return true
		}
	}
	return false
}
