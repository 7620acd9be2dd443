package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/ledger"
	"xdao.co/ledgerview/ledger/memory"
	"xdao.co/ledgerview/ledger/testkit"
)

type brokenGateway struct{ err error }

func (b brokenGateway) TotalCount(context.Context) (int64, error) { return 0, b.err }
func (b brokenGateway) FetchByID(context.Context, int64) (entity.Entity, error) {
	return entity.Entity{}, b.err
}

func TestMemoryConformance(t *testing.T) {
	testkit.RunGatewayConformance(t, func(t *testing.T, seed []entity.Entity) ledger.Gateway {
		return memory.New(seed...)
	})
}

func TestFallbackConformance(t *testing.T) {
	testkit.RunGatewayConformance(t, func(t *testing.T, seed []entity.Entity) ledger.Gateway {
		// Split the seed so every record needs the fallback at least once.
		var odd, even []entity.Entity
		for _, e := range seed {
			if e.ID%2 == 0 {
				even = append(even, e)
			} else {
				odd = append(odd, e)
			}
		}
		return ledger.Fallback{Gateways: []ledger.Gateway{memory.New(even...), memory.New(odd...)}}
	})
}

func TestFallback_StopsOnFault(t *testing.T) {
	boom := errors.New("boom")
	fb := ledger.Fallback{Gateways: []ledger.Gateway{
		brokenGateway{err: boom},
		memory.New(testkit.Seed()...),
	}}
	_, err := fb.FetchByID(context.Background(), 1)
	assert.ErrorIs(t, err, boom)

	n, err := fb.TotalCount(context.Background())
	require.NoError(t, err, "count falls through to the next gateway")
	assert.Equal(t, int64(5), n)
}

func TestFallback_Empty(t *testing.T) {
	_, err := ledger.Fallback{}.TotalCount(context.Background())
	assert.Error(t, err)
	_, err = ledger.Fallback{}.FetchByID(context.Background(), 1)
	assert.True(t, ledger.IsNotFound(err))
}

func TestFallback_AllCountsFail(t *testing.T) {
	first := errors.New("first")
	fb := ledger.Fallback{Gateways: []ledger.Gateway{brokenGateway{err: first}, brokenGateway{err: errors.New("second")}}}
	_, err := fb.TotalCount(context.Background())
	assert.ErrorIs(t, err, first)
}

func TestFallback_CountIsLargestAnswer(t *testing.T) {
	fb := ledger.Fallback{Gateways: []ledger.Gateway{memory.New(), memory.New(testkit.Seed()...)}}
	n, err := fb.TotalCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	fb = ledger.Fallback{Gateways: []ledger.Gateway{memory.New(testkit.Seed()...), brokenGateway{err: errors.New("down")}, memory.New()}}
	n, err = fb.TotalCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestThrottledConformance(t *testing.T) {
	testkit.RunGatewayConformance(t, func(t *testing.T, seed []entity.Entity) ledger.Gateway {
		return ledger.Throttle(memory.New(seed...), 1000, 100)
	})
}

func TestThrottled_CancelledWaitIsUnavailable(t *testing.T) {
	gw := ledger.Throttle(memory.New(testkit.Seed()...), 0.001, 1)
	ctx := context.Background()
	_, err := gw.FetchByID(ctx, 1) // consumes the only token
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = gw.FetchByID(ctx, 1)
	assert.ErrorIs(t, err, ledger.ErrUnavailable)
}

func TestMemory_TotalOverride(t *testing.T) {
	gw := memory.New(testkit.Seed()...)
	gw.SetTotal(10)
	n, err := gw.TotalCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
	assert.Equal(t, 4, gw.Len())
}

func TestMirroredConformance(t *testing.T) {
	testkit.RunGatewayConformance(t, func(t *testing.T, seed []entity.Entity) ledger.Gateway {
		return ledger.Mirrored{Source: memory.New(seed...), Mirror: memory.New()}
	})
}

func TestMirrored_CopiesAndServesWhenSourceDown(t *testing.T) {
	ctx := context.Background()
	seed := testkit.Seed()
	mirror := memory.New()
	gw := ledger.Mirrored{Source: memory.New(seed...), Mirror: mirror}

	for _, e := range seed[:2] {
		_, err := gw.FetchByID(ctx, e.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, mirror.Len())

	down := ledger.Mirrored{Source: brokenGateway{err: ledger.ErrUnavailable}, Mirror: mirror}
	got, err := down.FetchByID(ctx, seed[1].ID)
	require.NoError(t, err)
	assert.Equal(t, seed[1], got)

	n, err := down.TotalCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = down.FetchByID(ctx, seed[2].ID)
	assert.ErrorIs(t, err, ledger.ErrUnavailable, "mirror miss reports the source fault")
}

func TestMirrored_NotFoundIsFinal(t *testing.T) {
	ctx := context.Background()
	stale := memory.New(entity.Entity{ID: 9, Genes: "stale"})
	gw := ledger.Mirrored{Source: memory.New(), Mirror: stale}
	_, err := gw.FetchByID(ctx, 9)
	assert.True(t, ledger.IsNotFound(err))

	_, err = gw.FetchByID(ctx, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidID)
}

func TestMirrored_EmptyMirrorCountReportsSourceFault(t *testing.T) {
	gw := ledger.Mirrored{Source: brokenGateway{err: ledger.ErrUnavailable}, Mirror: memory.New()}
	_, err := gw.TotalCount(context.Background())
	assert.ErrorIs(t, err, ledger.ErrUnavailable)
}

func TestMemory_ImportIsAtomic(t *testing.T) {
	g := memory.New()
	_, err := g.Import(context.Background(), []entity.Entity{{ID: 1}, {ID: -1}})
	require.Error(t, err)
	assert.Equal(t, 0, g.Len())

	n, err := g.Import(context.Background(), testkit.Seed())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
