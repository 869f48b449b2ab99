package types

import (
	"errors"
	"fmt"
)

// GeneratedFile is one file reconstructed from the model output.
type GeneratedFile struct {
	Name    string `json:"name" yaml:"name" binding:"required"` // relative path, e.g. "app/page.tsx"
	Content string `json:"content" yaml:"content"`
}

// ErrorKind classifies failures that cross a package boundary.
type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid_request"
	KindUpstream       ErrorKind = "upstream"
	KindCanceled       ErrorKind = "canceled"
	KindEmptyOutput    ErrorKind = "empty_output"
)

// Error carries a kind alongside the failing operation and its cause.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a kind and operation name.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUpstream
// for unclassified errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// Result is the envelope every API call answers with.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Ok builds a successful result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail builds a failed result with a user-facing reason.
func Fail[T any](reason string) Result[T] {
	return Result[T]{Success: false, Error: reason}
}
