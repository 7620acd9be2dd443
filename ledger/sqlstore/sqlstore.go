// Package sqlstore serves a ledger mirror held in a SQL database.
//
// The same schema and queries run on SQLite (modernc.org/sqlite, driver
// "sqlite") and Postgres (pgx stdlib, driver "pgx"). Each row carries the
// record fingerprint, which is checked on every read.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"

	"xdao.co/ledgerview/entity"
	"xdao.co/ledgerview/ledger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

const schema = `CREATE TABLE IF NOT EXISTS entities (
	id         BIGINT PRIMARY KEY,
	genes      TEXT   NOT NULL,
	generation BIGINT NOT NULL,
	birth_time BIGINT NOT NULL,
	parent_a   BIGINT NOT NULL,
	parent_b   BIGINT NOT NULL,
	cid        TEXT   NOT NULL
)`

// Store is a read-only ledger.Gateway over the entities table. Import is the
// only write path and exists to seed a mirror.
type Store struct {
	db     *sql.DB
	driver string
}

var _ ledger.Sink = (*Store)(nil)

// Open connects to dsn with the given driver and ensures the schema exists.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// One writer; readers share the same connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: ping %s: %w", driver, err)
	}
	s := &Store{db: db, driver: driver}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlstore: apply schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders into $n for Postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) TotalCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM entities`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	return n, nil
}

func (s *Store) FetchByID(ctx context.Context, id int64) (entity.Entity, error) {
	if id < 1 {
		return entity.Entity{}, ledger.ErrInvalidID
	}
	var (
		e   entity.Entity
		fp  string
		row = s.db.QueryRowContext(ctx, s.rebind(
			`SELECT id, genes, generation, birth_time, parent_a, parent_b, cid FROM entities WHERE id = ?`), id)
	)
	err := row.Scan(&e.ID, &e.Genes, &e.Generation, &e.BirthTime, &e.ParentA, &e.ParentB, &fp)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Entity{}, ledger.ErrNotFound
	}
	if err != nil {
		return entity.Entity{}, fmt.Errorf("%w: %v", ledger.ErrUnavailable, err)
	}
	if err := e.VerifyCID(fp); err != nil {
		return entity.Entity{}, ledger.ErrFingerprintMismatch
	}
	return e, nil
}

// Import upserts records in one transaction and returns how many were written.
func (s *Store) Import(ctx context.Context, records []entity.Entity) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO entities (id, genes, generation, birth_time, parent_a, parent_b, cid)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	genes = excluded.genes,
	generation = excluded.generation,
	birth_time = excluded.birth_time,
	parent_a = excluded.parent_a,
	parent_b = excluded.parent_b,
	cid = excluded.cid`))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, e := range records {
		if err := e.Validate(); err != nil {
			return 0, fmt.Errorf("sqlstore: record[%d]: %w", i, err)
		}
		id, err := e.CID()
		if err != nil {
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, e.ID, e.Genes, e.Generation, e.BirthTime, e.ParentA, e.ParentB, id.String()); err != nil {
			return 0, fmt.Errorf("sqlstore: insert %d: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(records), nil
}
