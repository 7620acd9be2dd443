package ledger

import (
	"context"
	"errors"

	"xdao.co/ledgerview/entity"
)

// Fallback provides deterministic, ordered fallback across several gateways.
//
// Lookup order is the slice order in Gateways; callers MUST supply a fixed order.
// FetchByID moves to the next gateway only on ErrNotFound; any other fault is
// returned immediately. TotalCount asks every gateway and returns the largest
// successful answer, so the bound covers every id some gateway can serve. It
// returns the first error only when every gateway fails.
type Fallback struct {
	Gateways []Gateway
}

var _ Gateway = Fallback{}

func (f Fallback) TotalCount(ctx context.Context) (int64, error) {
	if len(f.Gateways) == 0 {
		return 0, errors.New("ledger: Fallback has no gateways")
	}
	var (
		best     int64
		answered bool
		firstErr error
	)
	for _, gw := range f.Gateways {
		n, err := gw.TotalCount(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !answered || n > best {
			best = n
		}
		answered = true
	}
	if !answered {
		return 0, firstErr
	}
	return best, nil
}

func (f Fallback) FetchByID(ctx context.Context, id int64) (entity.Entity, error) {
	if id < 1 {
		return entity.Entity{}, ErrInvalidID
	}
	for _, gw := range f.Gateways {
		e, err := gw.FetchByID(ctx, id)
		if err == nil {
			return e, nil
		}
		if IsNotFound(err) {
			continue
		}
		return entity.Entity{}, err
	}
	return entity.Entity{}, ErrNotFound
}
