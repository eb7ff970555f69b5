package ads

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies failures so callers can decide between skip, retry and abort.
type ErrorCode string

const (
	CodeConfig         ErrorCode = "config"
	CodeValidation     ErrorCode = "validation"
	CodeNotFound       ErrorCode = "not_found"
	CodeRetryable      ErrorCode = "retryable"
	CodeMalformed      ErrorCode = "malformed"
	CodeUnknownChannel ErrorCode = "unknown_channel"
	CodeMissingParent  ErrorCode = "missing_parent"
	CodeUpstream       ErrorCode = "upstream"
	CodeInternal       ErrorCode = "internal"
)

var (
	ErrUnknownChannel = errors.New("unknown channel")
	ErrMissingParent  = errors.New("parent row not found")
	ErrMalformedSpec  = errors.New("malformed creative spec")
	ErrMissingConfig  = errors.New("missing required configuration")
	ErrNotFound       = errors.New("not found")
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf reports the code of the outermost *Error in the chain. Bare sentinels
// map onto their natural code so adapters can return them unwrapped.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	switch {
	case errors.Is(err, ErrUnknownChannel):
		return CodeUnknownChannel
	case errors.Is(err, ErrMissingParent):
		return CodeMissingParent
	case errors.Is(err, ErrMalformedSpec):
		return CodeMalformed
	case errors.Is(err, ErrMissingConfig):
		return CodeConfig
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}
