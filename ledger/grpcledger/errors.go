package grpcledger

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/ledgerview/ledger"
)

// mapRPC turns a client-side RPC error back into the ledger sentinel errors.
func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}

	switch st.Code() {
	case codes.NotFound:
		return ledger.ErrNotFound
	case codes.InvalidArgument:
		// Server uses InvalidArgument for ids < 1.
		return ledger.ErrInvalidID
	case codes.DataLoss:
		// Server uses DataLoss when a stored record does not match its fingerprint.
		return ledger.ErrFingerprintMismatch
	default:
		return fmt.Errorf("%w: %s: %s", ledger.ErrUnavailable, st.Code(), st.Message())
	}
}

// mapErr turns a gateway error into a gRPC status on the server side.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ledger.ErrFingerprintMismatch):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, ledger.ErrUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
