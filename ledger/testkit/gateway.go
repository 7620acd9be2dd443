// Package testkit holds a conformance suite every ledger.Gateway backend runs.
package testkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/ledger"
)

// NewGateway constructs a fresh gateway serving exactly seed. The returned
// gateway MUST be isolated from other tests.
type NewGateway func(t *testing.T, seed []entity.Entity) ledger.Gateway

// Seed is the record set used by RunGatewayConformance.
func Seed() []entity.Entity {
	return []entity.Entity{
		{ID: 1, Genes: "512409223415513127017498423421231337", Generation: 0, BirthTime: 1511417999},
		{ID: 2, Genes: "923478293472983742983749823749823748", Generation: 0, BirthTime: 1511418000},
		{ID: 3, Genes: "101010101010101010101010101010101010", Generation: 1, BirthTime: 1511419000, ParentA: 1, ParentB: 2},
		{ID: 5, Genes: "555555555555555555555555555555555555", Generation: 2, BirthTime: 0, ParentA: 3, ParentB: 1},
	}
}

func RunGatewayConformance(t *testing.T, newGateway NewGateway) {
	t.Helper()
	ctx := context.Background()

	t.Run("FetchReturnsRecordVerbatim", func(t *testing.T) {
		gw := newGateway(t, Seed())
		for _, want := range Seed() {
			got, err := gw.FetchByID(ctx, want.ID)
			require.NoError(t, err, "id %d", want.ID)
			assert.Equal(t, want, got)
		}
	})

	t.Run("MissingIsNotFound", func(t *testing.T) {
		gw := newGateway(t, Seed())
		_, err := gw.FetchByID(ctx, 4)
		assert.True(t, ledger.IsNotFound(err), "got %v", err)
		_, err = gw.FetchByID(ctx, 1_000_000)
		assert.True(t, ledger.IsNotFound(err), "got %v", err)
	})

	t.Run("RejectsNonPositiveID", func(t *testing.T) {
		gw := newGateway(t, Seed())
		for _, id := range []int64{0, -1} {
			_, err := gw.FetchByID(ctx, id)
			require.Error(t, err)
			assert.False(t, ledger.IsNotFound(err), "id %d must not look like a missing record", id)
		}
	})

	t.Run("TotalCountCoversSeed", func(t *testing.T) {
		gw := newGateway(t, Seed())
		n, err := gw.TotalCount(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(5))
	})

	t.Run("EmptyLedger", func(t *testing.T) {
		gw := newGateway(t, nil)
		n, err := gw.TotalCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		_, err = gw.FetchByID(ctx, 1)
		assert.True(t, ledger.IsNotFound(err), "got %v", err)
	})
}
