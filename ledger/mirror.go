package ledger

import (
	"context"
	"errors"

	slogcontext "github.com/veqryn/slog-context"

	"xdao.co/ledgerview/entity"
)

// Sink is a gateway that can also store records copied from elsewhere.
type Sink interface {
	Gateway
	Import(ctx context.Context, records []entity.Entity) (int, error)
}

// Mirrored reads through Source and copies every record it returns into
// Mirror.
//
// NotFound and ErrInvalidID from Source are final. Any other Source fault is
// answered from Mirror instead; if Mirror cannot answer either, the Source
// error is returned. A failed copy is logged and does not fail the read.
type Mirrored struct {
	Source Gateway
	Mirror Sink
}

var _ Gateway = Mirrored{}

func (m Mirrored) TotalCount(ctx context.Context) (int64, error) {
	n, err := m.Source.TotalCount(ctx)
	if err == nil {
		return n, nil
	}
	if mn, merr := m.Mirror.TotalCount(ctx); merr == nil && mn > 0 {
		slogcontext.FromCtx(ctx).Warn("ledger size served from mirror", "err", err, "count", mn)
		return mn, nil
	}
	return 0, err
}

func (m Mirrored) FetchByID(ctx context.Context, id int64) (entity.Entity, error) {
	if id < 1 {
		return entity.Entity{}, ErrInvalidID
	}
	e, err := m.Source.FetchByID(ctx, id)
	switch {
	case err == nil:
		if _, ierr := m.Mirror.Import(ctx, []entity.Entity{e}); ierr != nil {
			slogcontext.FromCtx(ctx).Warn("mirror write failed", "id", id, "err", ierr)
		}
		return e, nil
	case IsNotFound(err), errors.Is(err, ErrInvalidID):
		return entity.Entity{}, err
	}

	me, merr := m.Mirror.FetchByID(ctx, id)
	if merr != nil {
		return entity.Entity{}, err
	}
	slogcontext.FromCtx(ctx).Warn("record served from mirror", "id", id, "err", err)
	return me, nil
}
