package shell

import (
	"context"
	"strings"

	"github.com/quocvuong92/pve-cli/internal/explorer"
)

var pathVerbs = []string{"ls /", "create /", "delete /", "get /", "set /", "usage /"}

// Completable reports whether text is a path-taking verb followed by a path
func Completable(text string) bool {
	for _, p := range pathVerbs {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// Complete suggests the next path segment for text such as "get /nodes/pv".
// A path ending in "/" lists the children of that path. Otherwise, or when
// that fails, the last segment is taken as partially typed: the parent is
// listed and filtered by prefix. Suggestions replace the text after the
// last "/".
func Complete(ctx context.Context, exp *explorer.Explorer, text string) []string {
	if exp == nil || !Completable(text) {
		return nil
	}
	resource := strings.TrimSpace(text[strings.Index(text, "/"):])

	if strings.HasSuffix(resource, "/") {
		if entries, err := exp.ListValues(ctx, resource); err == nil {
			return values(entries, "")
		}
	}

	pos := strings.LastIndex(resource, "/")
	parent, prefix := resource[:pos], resource[pos+1:]
	if parent == "" {
		parent = "/"
	}
	entries, _ := exp.ListValues(ctx, parent)
	return values(entries, prefix)
}

func values(entries []explorer.Entry, prefix string) []string {
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Value, prefix) {
			out = append(out, e.Value)
		}
	}
	return out
}

// Complete suggests path segments using the session's explorer
func (s *Session) Complete(ctx context.Context, text string) []string {
	return Complete(ctx, s.Explorer, text)
}
