package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a run did not succeed.
type ErrorKind string

const (
	KindValidation   ErrorKind = "ValidationError"
	KindSelection    ErrorKind = "SelectionError"
	KindCollaborator ErrorKind = "CollaboratorError"
)

// Error carries the failure kind and a human-readable message.
type Error struct {
	Kind ErrorKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// SelectionErrorf builds a SelectionError for op.
func SelectionErrorf(op, format string, args ...any) error {
	return &Error{Kind: KindSelection, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// CollaboratorError wraps a failing collaborator call made during op.
func CollaboratorError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindCollaborator, Op: op, Err: err}
}
