package schema

import "errors"

// ErrSchema matches every *Error with errors.Is
var ErrSchema = errors.New("invalid API schema")

// Error reports a schema document that cannot be turned into a Tree
type Error struct {
	Path string // resource path where the problem was found, empty for document errors
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := ErrSchema.Error()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	msg += ": " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrSchema) true
func (e *Error) Is(target error) bool {
	return target == ErrSchema
}

func (e *Error) Unwrap() error {
	return e.Err
}
