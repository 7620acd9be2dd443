package resolution

import (
	"context"
	"errors"
	"fmt"

	"xdao.co/ledgerview/ledger"
)

// Kind is a stable category for programmatic error handling. Callers should
// branch on Kind rather than matching messages.
type Kind string

const (
	// KindInvalidIdentifier is the validation error class: a malformed or
	// absent identifier, detected locally before any gateway call.
	KindInvalidIdentifier  Kind = "InvalidIdentifier"
	KindInvalidBound       Kind = "InvalidBound"
	KindNotFound           Kind = "NotFound"
	KindGatewayUnavailable Kind = "GatewayUnavailable"
	KindBoundLookupFailed  Kind = "BoundLookupFailed"
)

// Error is the structured error carried by a Failed state.
//
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// IsValidation reports whether err is a local identifier validation failure.
func IsValidation(err error) bool { return IsKind(err, KindInvalidIdentifier) }

// classifyFetch maps a gateway fault for id onto NotFound or GatewayUnavailable.
func classifyFetch(id int64, err error) *Error {
	if ledger.IsNotFound(err) {
		return wrapError(KindNotFound, err, "no record with id %d on the ledger", id)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapError(KindGatewayUnavailable, err, "ledger did not answer for id %d in time", id)
	}
	return wrapError(KindGatewayUnavailable, err, "ledger unavailable while fetching id %d: %v", id, err)
}
