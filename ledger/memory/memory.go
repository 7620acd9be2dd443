// Package memory provides an in-process ledger gateway.
//
// It is used by tests, demos, and the "memory" backend, which loads records
// from a YAML or JSON fixture file.
package memory

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/ledger"
)

// Gateway keeps records in a map keyed by id.
//
// TotalCount reports the explicit total when one was set, otherwise the
// highest stored id, so that ids 1..TotalCount cover every record.
type Gateway struct {
	mu      sync.RWMutex
	records map[int64]entity.Entity
	total   int64
	maxID   int64
}

var _ ledger.Sink = (*Gateway)(nil)

// New returns a gateway holding records. It panics on an invalid record.
func New(records ...entity.Entity) *Gateway {
	g := &Gateway{records: make(map[int64]entity.Entity, len(records))}
	for _, e := range records {
		if err := g.Put(e); err != nil {
			panic(err)
		}
	}
	return g
}

// Put stores e, replacing any record with the same id.
func (g *Gateway) Put(e entity.Entity) error {
	if err := e.Validate(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records[e.ID] = e
	if e.ID > g.maxID {
		g.maxID = e.ID
	}
	return nil
}

// Import stores records. Either every record is stored or, when one is
// invalid, none is.
func (g *Gateway) Import(ctx context.Context, records []entity.Entity) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	for i, e := range records {
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("memory: record %d: %w", i, err)
		}
	}
	for _, e := range records {
		_ = g.Put(e)
	}
	return len(records), nil
}

// SetTotal overrides the reported total count. Zero restores the default.
func (g *Gateway) SetTotal(n int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.total = n
}

// Len returns the number of stored records.
func (g *Gateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.records)
}

func (g *Gateway) TotalCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.total != 0 {
		return g.total, nil
	}
	return g.maxID, nil
}

func (g *Gateway) FetchByID(ctx context.Context, id int64) (entity.Entity, error) {
	if id < 1 {
		return entity.Entity{}, ledger.ErrInvalidID
	}
	if err := ctx.Err(); err != nil {
		return entity.Entity{}, fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.records[id]
	if !ok {
		return entity.Entity{}, ledger.ErrNotFound
	}
	return e, nil
}

// Fixture is the on-disk layout accepted by LoadFile.
//
//	total: 10
//	entities:
//	  - {id: 1, genes: "5153...", generation: 0, birthTime: 1511417999}
type Fixture struct {
	Total    int64           `yaml:"total,omitempty" json:"total,omitempty"`
	Entities []entity.Entity `yaml:"entities" json:"entities"`
}

// ReadFixture parses a YAML (or JSON) fixture file.
func ReadFixture(path string) (Fixture, error) {
	var fx Fixture
	b, err := os.ReadFile(path)
	if err != nil {
		return fx, err
	}
	if err := yaml.Unmarshal(b, &fx); err != nil {
		return fx, fmt.Errorf("memory: parse fixture %s: %w", path, err)
	}
	return fx, nil
}

// LoadFile builds a gateway from a fixture file.
func LoadFile(path string) (*Gateway, error) {
	fx, err := ReadFixture(path)
	if err != nil {
		return nil, err
	}
	g := New()
	for i, e := range fx.Entities {
		if err := g.Put(e); err != nil {
			return nil, fmt.Errorf("memory: fixture entity[%d]: %w", i, err)
		}
	}
	g.SetTotal(fx.Total)
	return g, nil
}
