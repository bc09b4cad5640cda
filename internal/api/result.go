package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ResponseType selects the API endpoint flavour
type ResponseType int

const (
	// ResponseJSON requests /api2/json
	ResponseJSON ResponseType = iota
	// ResponsePNG requests /api2/png, used by rrd endpoints
	ResponsePNG
)

func (t ResponseType) pathPrefix() string {
	if t == ResponsePNG {
		return "/api2/png/"
	}
	return "/api2/json/"
}

// Result is a decoded API response
type Result struct {
	StatusCode   int
	ReasonPhrase string
	ResponseType ResponseType

	// Response is the decoded JSON body, with "data" and optionally "errors".
	// For PNG results it holds "data" as a data URL.
	Response map[string]interface{}

	Raw []byte
}

// IsSuccessStatusCode reports a 2xx status
func (r *Result) IsSuccessStatusCode() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Data returns the "data" member of the response
func (r *Result) Data() interface{} {
	if r.Response == nil {
		return nil
	}
	return r.Response["data"]
}

// InError reports whether the response carries a non-empty errors object
func (r *Result) InError() bool {
	if r.Response == nil {
		return false
	}
	switch errs := r.Response["errors"].(type) {
	case nil:
		return false
	case map[string]interface{}:
		return len(errs) > 0
	case []interface{}:
		return len(errs) > 0
	case string:
		return errs != ""
	default:
		return true
	}
}

// ErrorSummary formats the errors object as "field : message" lines
func (r *Result) ErrorSummary() string {
	if !r.InError() {
		return ""
	}
	switch errs := r.Response["errors"].(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(errs))
		for k := range errs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s : %v", k, strings.TrimSpace(fmt.Sprint(errs[k]))))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(errs)
	}
}

// decodeResult fills Response from the raw body
func decodeResult(r *Result) {
	if r.ResponseType == ResponsePNG && r.IsSuccessStatusCode() {
		r.Response = map[string]interface{}{
			"data": "data:image/png;base64," + base64.StdEncoding.EncodeToString(r.Raw),
		}
		return
	}

	// UseNumber keeps large integers such as memory sizes exact in tables
	dec := json.NewDecoder(bytes.NewReader(r.Raw))
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		body = map[string]interface{}{"data": nil}
	}
	r.Response = body
}

// ToJSON marshals v, indented when pretty is set. HTML escaping is off so
// messages such as "value must be >= 100" print as sent.
func ToJSON(v interface{}, pretty bool) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
