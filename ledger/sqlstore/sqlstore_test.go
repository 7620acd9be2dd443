package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/ledger"
	"xdao.co/ledgerview/ledger/registry"
	"xdao.co/ledgerview/ledger/testkit"
)

func newSQLite(t *testing.T, seed []entity.Entity) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	if len(seed) > 0 {
		n, err := s.Import(context.Background(), seed)
		require.NoError(t, err)
		require.Equal(t, len(seed), n)
	}
	return s
}

func TestSQLiteConformance(t *testing.T) {
	testkit.RunGatewayConformance(t, func(t *testing.T, seed []entity.Entity) ledger.Gateway {
		return newSQLite(t, seed)
	})
}

func TestImport_Upserts(t *testing.T) {
	s := newSQLite(t, testkit.Seed())
	ctx := context.Background()

	updated := testkit.Seed()[0]
	updated.Genes = "replaced"
	_, err := s.Import(ctx, []entity.Entity{updated})
	require.NoError(t, err)

	got, err := s.FetchByID(ctx, updated.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestImport_RejectsInvalidAtomically(t *testing.T) {
	s := newSQLite(t, nil)
	ctx := context.Background()
	_, err := s.Import(ctx, []entity.Entity{{ID: 1, Genes: "ok"}, {ID: 0}})
	assert.ErrorIs(t, err, entity.ErrInvalid)

	_, err = s.FetchByID(ctx, 1)
	assert.True(t, ledger.IsNotFound(err), "failed import must not leave partial rows")
}

func TestFetch_DetectsCorruptRow(t *testing.T) {
	s := newSQLite(t, testkit.Seed())
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `UPDATE entities SET generation = 99 WHERE id = 3`)
	require.NoError(t, err)

	_, err = s.FetchByID(ctx, 3)
	assert.ErrorIs(t, err, ledger.ErrFingerprintMismatch)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))
	lite := &Store{driver: DriverSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s := newSQLite(t, testkit.Seed())
	require.NoError(t, s.Close())
	_, err := s.TotalCount(context.Background())
	assert.ErrorIs(t, err, ledger.ErrUnavailable)
}

func TestRegistryBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reg.db")
	gw, closeFn, err := registry.OpenWithConfig("sqlite", registry.UsageDaemon, map[string]string{"sqlite-path": path})
	require.NoError(t, err)
	defer closeFn()
	n, err := gw.TotalCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, _, err = registry.OpenWithConfig("sqlite", registry.UsageDaemon, nil)
	assert.ErrorContains(t, err, "missing --sqlite-path")
}
