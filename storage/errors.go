package storage

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
)

// Error is the structured failure returned by every remote collection call.
type Error struct {
	Op         string
	Collection string
	Status     int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s (status %d)", e.Op, e.Collection, e.Message, e.Status)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Collection, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether the store answered 404.
func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// IsNotFound reports whether err is a store 404.
func IsNotFound(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.NotFound()
}

func wrapError(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	out := &Error{Op: op, Collection: collection, Message: err.Error(), Err: err}
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		out.Status = respErr.StatusCode
		out.Code = respErr.ErrorCode
		out.Message = http.StatusText(respErr.StatusCode)
		if respErr.ErrorCode != "" {
			out.Message = respErr.ErrorCode
		}
	}
	return out
}
