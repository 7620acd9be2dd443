package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/ledgerview/ledger/grpcledger"
)

const fixture = `
entities:
  - {id: 1, genes: "g1", generation: 0, birthTime: 1511417999}
  - {id: 2, genes: "g2", generation: 1, birthTime: 1511418000, parentA: 1}
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))
	return path
}

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func TestListBackends(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--list-backends"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "memory\t")
	assert.Contains(t, out.String(), "sqlite\t")
	assert.Contains(t, out.String(), "postgres\t")
	assert.NotContains(t, out.String(), "grpc")
}

func TestUnknownBackend(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--backend", "nope"}, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.NotEmpty(t, errOut.String())
}

func TestBadFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"--bogus"}, &out, &errOut))
}

func TestMissingConfigFile(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, &out, &errOut)
	assert.Equal(t, 2, code)
}

func TestConfigRejectsBackendFlags(t *testing.T) {
	var out, errOut bytes.Buffer
	fx := writeFixture(t)
	code := run(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "backends.yaml"), "--memory-fixture", fx}, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "--memory-fixture cannot be combined with --config")
}

func TestServesMemoryBackend(t *testing.T) {
	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fx := writeFixture(t)
	done := make(chan int, 1)
	var out, errOut bytes.Buffer
	go func() {
		done <- run(ctx, []string{"--listen", addr, "--backend", "memory", "--memory-fixture", fx}, &out, &errOut)
	}()

	c, err := grpcledger.Dial(addr, grpcledger.DialOptions{})
	require.NoError(t, err)
	defer c.Close()

	require.Eventually(t, func() bool {
		n, err := c.TotalCount(context.Background())
		return err == nil && n == 2
	}, 5*time.Second, 20*time.Millisecond)

	e, err := c.FetchByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ParentA)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code, errOut.String())
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
