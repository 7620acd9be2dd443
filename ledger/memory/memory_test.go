package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/ledger"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFile_YAML(t *testing.T) {
	p := writeFile(t, "ledger.yaml", `
total: 12
entities:
  - id: 1
    genes: "5153"
    generation: 0
    birthTime: 1511417999
  - {id: 2, genes: "77", generation: 1, birthTime: 1511418999, parentA: 1}
`)
	gw, err := LoadFile(p)
	require.NoError(t, err)

	n, err := gw.TotalCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	e, err := gw.FetchByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, entity.Entity{ID: 2, Genes: "77", Generation: 1, BirthTime: 1511418999, ParentA: 1}, e)
}

func TestLoadFile_JSON(t *testing.T) {
	p := writeFile(t, "ledger.json", `{"entities":[{"id":3,"genes":"9","generation":0,"birthTime":0}]}`)
	gw, err := LoadFile(p)
	require.NoError(t, err)
	n, err := gw.TotalCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestLoadFile_RejectsInvalidRecord(t *testing.T) {
	p := writeFile(t, "bad.yaml", "entities:\n  - {id: 0, genes: x}\n")
	_, err := LoadFile(p)
	assert.ErrorIs(t, err, entity.ErrInvalid)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	gw := New(entity.Entity{ID: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := gw.FetchByID(ctx, 1)
	assert.ErrorIs(t, err, ledger.ErrUnavailable)
	_, err = gw.TotalCount(ctx)
	assert.ErrorIs(t, err, ledger.ErrUnavailable)
}
