package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// TaskOutcome is the final state of an awaited task
type TaskOutcome struct {
	UPID       string
	Node       string
	Status     string // "stopped" once finished
	ExitStatus string // "OK" on success
	TimedOut   bool
}

// Executor is the part of Transport PollTask needs
type Executor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

// NodeFromUPID returns the node field of a task id (UPID:node:pid:...)
func NodeFromUPID(upid string) (string, error) {
	parts := strings.Split(upid, ":")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("invalid task id %q", upid)
	}
	return parts[1], nil
}

// WaitForTask polls the task status until it is no longer running
func (c *Client) WaitForTask(ctx context.Context, node, upid string, poll, timeout time.Duration) (*TaskOutcome, error) {
	return PollTask(ctx, c, node, upid, poll, timeout)
}

// PollTask checks GET /nodes/{node}/tasks/{upid}/status immediately and then
// every poll until the task stops. When timeout elapses first the outcome is
// returned with TimedOut set, together with an error wrapping ErrTaskTimeout.
func PollTask(ctx context.Context, ex Executor, node, upid string, poll, timeout time.Duration) (*TaskOutcome, error) {
	outcome := &TaskOutcome{UPID: upid, Node: node}
	req := Request{Method: http.MethodGet, Path: "/nodes/" + node + "/tasks/" + upid + "/status"}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		r, err := ex.Execute(ctx, req)
		if err != nil {
			return nil, err
		}
		if !r.IsSuccessStatusCode() || r.InError() {
			return nil, NewRemoteError(r, false)
		}

		data, _ := r.Data().(map[string]interface{})
		outcome.Status = fmt.Sprint(data["status"])
		if es, ok := data["exitstatus"]; ok {
			outcome.ExitStatus = fmt.Sprint(es)
		}
		if outcome.Status != "running" {
			return outcome, nil
		}

		select {
		case <-ctx.Done():
			return outcome, ctx.Err()
		case <-deadline.C:
			outcome.TimedOut = true
			return outcome, fmt.Errorf("%w %s after %s", ErrTaskTimeout, upid, timeout)
		case <-ticker.C:
		}
	}
}
