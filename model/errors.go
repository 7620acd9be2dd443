package model

import (
	"fmt"

	"xdao.co/ledgerview/resolution"
)

type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrInvalidIdentifier  ErrorCode = "INVALID_IDENTIFIER"
	ErrInvalidBound       ErrorCode = "INVALID_BOUND"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrGatewayUnavailable ErrorCode = "GATEWAY_UNAVAILABLE"
	ErrBoundLookupFailed  ErrorCode = "BOUND_LOOKUP_FAILED"
	ErrNoParent           ErrorCode = "NO_PARENT"
	ErrInternal           ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}

// FromResolutionError maps a resolution error onto its boundary code.
func FromResolutionError(err *resolution.Error) *CodedError {
	if err == nil {
		return nil
	}
	return NewError(codeFor(err.Kind), err.Message)
}

func codeFor(k resolution.Kind) ErrorCode {
	switch k {
	case resolution.KindInvalidIdentifier:
		return ErrInvalidIdentifier
	case resolution.KindInvalidBound:
		return ErrInvalidBound
	case resolution.KindNotFound:
		return ErrNotFound
	case resolution.KindGatewayUnavailable:
		return ErrGatewayUnavailable
	case resolution.KindBoundLookupFailed:
		return ErrBoundLookupFailed
	default:
		return ErrInternal
	}
}
