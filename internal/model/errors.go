package model

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// CodeConfiguration covers malformed pragmas, compiler versions and root paths.
	CodeConfiguration ErrorCode = "CONFIGURATION"
	// CodeContractViolation means a module emitted a code missing from its catalog.
	CodeContractViolation ErrorCode = "CONTRACT_VIOLATION"
	// CodeMissingData means an artifact reached the walker without a syntax tree.
	CodeMissingData ErrorCode = "MISSING_DATA"
	// CodeDegradedInput is never returned by a traversal; it tags logged, absorbed failures.
	CodeDegradedInput ErrorCode = "DEGRADED_INPUT"
)

const (
	CtxArtifact = "artifact"
	CtxFile     = "file"
	CtxModule   = "module"
	CtxCode     = "code"
	CtxToken    = "token"
	CtxPath     = "path"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func WrapError(err error, code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsFatal reports whether err must abort a traversal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !IsCode(err, CodeDegradedInput)
}
