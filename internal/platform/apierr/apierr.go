package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps domain error codes onto HTTP statuses.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	code := ads.CodeOf(err)
	switch code {
	case ads.CodeUnknownChannel, ads.CodeValidation, ads.CodeMalformed:
		return New(http.StatusBadRequest, string(code), err)
	case ads.CodeNotFound:
		return New(http.StatusNotFound, string(code), err)
	case ads.CodeUpstream:
		return New(http.StatusBadGateway, string(code), err)
	default:
		return New(http.StatusInternalServerError, string(ads.CodeInternal), err)
	}
}
