package api

import (
	"errors"
	"fmt"
)

// ErrTaskTimeout is returned by WaitForTask when the task is still running at the deadline
var ErrTaskTimeout = errors.New("timed out waiting for task")

// APIError represents an error with status code.
// The client returns it for transient statuses so WithRetry can retry them.
type APIError struct {
	StatusCode int
	Message    string
	Result     *Result
}

func (e *APIError) Error() string {
	return e.Message
}

// RemoteError is a request the server answered with a failure status or an errors payload
type RemoteError struct {
	StatusCode int
	Reason     string
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return e.Reason
	}
	return e.Reason + "\n" + e.Detail
}

// NewRemoteError builds a RemoteError from a result. verbose puts the JSON of
// the errors object in Detail instead of the one-line-per-field summary.
func NewRemoteError(r *Result, verbose bool) *RemoteError {
	e := &RemoteError{StatusCode: r.StatusCode, Reason: r.ReasonPhrase}
	if e.Reason == "" {
		e.Reason = fmt.Sprintf("status %d", r.StatusCode)
	}
	if verbose {
		if errs, ok := r.Response["errors"]; ok && errs != nil {
			e.Detail = ToJSON(errs, true)
		}
	} else {
		e.Detail = r.ErrorSummary()
	}
	return e
}
