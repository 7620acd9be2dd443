package ledger

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"xdao.co/ledgerview/entity"
)

// Throttled wraps a Gateway with a client-side token bucket. Every call waits
// for a token; a cancelled wait is reported as ErrUnavailable.
type Throttled struct {
	Gateway Gateway
	Limiter *rate.Limiter
}

var _ Gateway = (*Throttled)(nil)

// Throttle limits gw to perSecond calls with the given burst.
func Throttle(gw Gateway, perSecond float64, burst int) *Throttled {
	if burst < 1 {
		burst = 1
	}
	return &Throttled{Gateway: gw, Limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (t *Throttled) TotalCount(ctx context.Context) (int64, error) {
	if err := t.Limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: throttle: %v", ErrUnavailable, err)
	}
	return t.Gateway.TotalCount(ctx)
}

func (t *Throttled) FetchByID(ctx context.Context, id int64) (entity.Entity, error) {
	if id < 1 {
		return entity.Entity{}, ErrInvalidID
	}
	if err := t.Limiter.Wait(ctx); err != nil {
		return entity.Entity{}, fmt.Errorf("%w: throttle: %v", ErrUnavailable, err)
	}
	return t.Gateway.FetchByID(ctx, id)
}
