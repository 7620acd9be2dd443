// Package ledger defines the read-only capability the resolver consumes and a
// few composable gateway wrappers.
package ledger

import (
	"context"

	"xdao.co/ledgerview/entity"
)

// Gateway is an opaque, read-only view of a remote ledger.
//
// Contract:
//   - FetchByID MUST return ErrNotFound (possibly wrapped) when the ledger has
//     no record for id.
//   - FetchByID MUST reject id < 1 without contacting the ledger.
//   - A returned Entity MUST pass entity.Validate and carry the requested id.
//   - Any other error is a transport or provider fault.
//   - TotalCount returns the upper bound of the id space: ids are 1..TotalCount.
type Gateway interface {
	TotalCount(ctx context.Context) (int64, error)
	FetchByID(ctx context.Context, id int64) (entity.Entity, error)
}
