package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing primary-store entity.
	ErrNotFound = errors.New("not found")
	// ErrUnknownStore signals a query against a store name that is not registered.
	ErrUnknownStore = errors.New("unknown store")
	// ErrInvalidRequest signals a request that cannot be decoded at all.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownEvent signals a mutation event of an unsupported kind.
	ErrUnknownEvent = errors.New("unknown event kind")
)

// InvalidParamError wraps ErrInvalidRequest with the offending parameter name.
type InvalidParamError struct {
	Param string
	Err   error
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("%s: parameter %q: %v", ErrInvalidRequest.Error(), e.Param, e.Err)
}

func (e *InvalidParamError) Unwrap() error { return ErrInvalidRequest }

// NewInvalidParam creates an invalid parameter error.
func NewInvalidParam(param string, err error) error {
	return &InvalidParamError{Param: param, Err: err}
}
