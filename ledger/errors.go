package ledger

import "errors"

var (
	ErrNotFound            = errors.New("ledger: not found")
	ErrInvalidID           = errors.New("ledger: invalid id")
	ErrUnavailable         = errors.New("ledger: unavailable")
	ErrFingerprintMismatch = errors.New("ledger: fingerprint mismatch")
	ErrInvalidRecord       = errors.New("ledger: invalid record")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
