// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error types and error handling utilities for hioload-mem.

package api

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors used across the library.
var (
	ErrOutOfMemory     = errors.New("out of memory")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownParam    = errors.New("unknown tuning parameter")
	ErrPoolDestroyed   = errors.New("pool is destroyed")
	ErrInvalidPointer  = errors.New("pointer not owned by a managed pool")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeOutOfMemory
	ErrCodeInvalidPointer
	ErrCodeDoubleFree
	ErrCodeForeignPointer
	ErrCodePoolDestroyed
	ErrCodeInternal
)

var codeNames = map[ErrorCode]string{
	ErrCodeOK:              "ok",
	ErrCodeInvalidArgument: "invalid_argument",
	ErrCodeOutOfMemory:     "out_of_memory",
	ErrCodeInvalidPointer:  "invalid_pointer",
	ErrCodeDoubleFree:      "double_free",
	ErrCodeForeignPointer:  "foreign_pointer",
	ErrCodePoolDestroyed:   "pool_destroyed",
	ErrCodeInternal:        "internal",
}

func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error represents a structured error with code and context.
// Contract violations (bad pointers, double free, cross-pool free) are
// raised as panics carrying an *Error.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap maps pointer and lifecycle codes onto the package sentinels so
// callers can use errors.Is on recovered panics.
func (e *Error) Unwrap() error {
	switch e.Code {
	case ErrCodeInvalidPointer, ErrCodeDoubleFree, ErrCodeForeignPointer:
		return ErrInvalidPointer
	case ErrCodePoolDestroyed:
		return ErrPoolDestroyed
	case ErrCodeOutOfMemory:
		return ErrOutOfMemory
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	}
	return nil
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
