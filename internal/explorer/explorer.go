// Package explorer runs shell verbs against the resource tree: it executes
// requests, prints usage and lists child resources.
package explorer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quocvuong92/pve-cli/internal/api"
	"github.com/quocvuong92/pve-cli/internal/constants"
	"github.com/quocvuong92/pve-cli/internal/display"
	"github.com/quocvuong92/pve-cli/internal/logging"
	"github.com/quocvuong92/pve-cli/internal/output"
	"github.com/quocvuong92/pve-cli/internal/schema"
)

// Errors
var (
	ErrNoSuchResource   = errors.New("no such resource")
	ErrNoChildLinks     = errors.New("does not define child links")
	ErrInvalidParameter = errors.New("invalid parameter, expected name:value")
	ErrUnknownVerb      = errors.New("unknown verb")
	ErrTaskFailed       = errors.New("task failed")
)

// Invocation is one resource command as typed in the shell
type Invocation struct {
	Verb    string // get, set, create, delete
	Path    string
	Params  map[string]string
	Wait    bool
	Verbose bool
	Output  output.Format
}

// Explorer binds the resource tree to a transport
type Explorer struct {
	tree      *schema.Tree
	transport api.Transport

	TaskPoll    time.Duration
	TaskTimeout time.Duration
}

// New creates an explorer with the default task timings
func New(tree *schema.Tree, transport api.Transport) *Explorer {
	return &Explorer{
		tree:        tree,
		transport:   transport,
		TaskPoll:    constants.DefaultTaskPoll,
		TaskTimeout: constants.DefaultTaskTimeout,
	}
}

// Tree returns the resource tree
func (e *Explorer) Tree() *schema.Tree {
	return e.tree
}

func noSuchResource(path string) error {
	return fmt.Errorf("%w '%s'", ErrNoSuchResource, path)
}

// Execute performs the invocation and renders the result. A failed request
// is an *api.RemoteError. With Wait set the returned task is awaited; the
// rendered output is returned even when waiting fails.
func (e *Explorer) Execute(ctx context.Context, inv Invocation) (string, error) {
	method, ok := schema.HTTPMethod(inv.Verb)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownVerb, inv.Verb)
	}
	node, ok := e.tree.Resolve(inv.Path)
	if !ok {
		return "", noSuchResource(inv.Path)
	}

	req := api.Request{Method: method, Path: inv.Path, Params: inv.Params}
	if inv.Output == output.FormatPNG {
		req.ResponseType = api.ResponsePNG
	}

	logging.Debug("executing", logging.Fields{"verb": inv.Verb, "path": inv.Path, "params": len(inv.Params)})
	result, err := e.transport.Execute(ctx, req)
	if err != nil {
		return "", err
	}

	switch {
	case !result.IsSuccessStatusCode():
		return "", api.NewRemoteError(result, inv.Verbose)
	case result.InError():
		return "", &api.RemoteError{StatusCode: result.StatusCode, Reason: result.ReasonPhrase}
	}

	text := render(node, result, inv)
	if !inv.Wait {
		return text, nil
	}
	return text, e.wait(ctx, result)
}

func render(node *schema.Node, result *api.Result, inv Invocation) string {
	if inv.Verbose {
		return api.ToJSON(result.Response, true) + "\n"
	}

	switch inv.Output {
	case output.FormatPNG:
		return output.FormatValue(result.Data()) + "\n"
	case output.FormatJSON:
		return api.ToJSON(result.Data(), false) + "\n"
	case output.FormatJSONPretty:
		return api.ToJSON(result.Data(), true) + "\n"
	default:
		var keys []string
		if get, ok := schema.GetMethod(node); ok {
			keys = get.ReturnKeys()
		}
		return output.DataTable(result.Data(), keys)
	}
}

func (e *Explorer) wait(ctx context.Context, result *api.Result) error {
	upid, _ := result.Data().(string)
	node, err := api.NodeFromUPID(upid)
	if err != nil {
		return fmt.Errorf("cannot wait: %w", err)
	}

	sp := display.NewSpinner("waiting for " + upid)
	sp.Start()
	outcome, err := e.transport.WaitForTask(ctx, node, upid, e.TaskPoll, e.TaskTimeout)
	sp.Stop()
	if err != nil {
		return err
	}

	logging.Debug("task finished", logging.Fields{"upid": upid, "exitstatus": outcome.ExitStatus})
	if outcome.ExitStatus != "" && outcome.ExitStatus != "OK" {
		return fmt.Errorf("%w: %s: %s", ErrTaskFailed, upid, outcome.ExitStatus)
	}
	return nil
}

// ParseParameters turns name:value tokens into a parameter bag. The value
// starts after the first colon and may be empty.
func ParseParameters(tokens []string) (map[string]string, error) {
	params := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		name, value, found := strings.Cut(tok, ":")
		if !found || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidParameter, tok)
		}
		params[name] = value
	}
	return params, nil
}
