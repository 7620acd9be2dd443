package sqlstore

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"xdao.co/ledgerview/ledger"
	"xdao.co/ledgerview/ledger/registry"
)

var (
	flagSQLitePath  string
	flagPostgresDSN string
)

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "sqlite",
		Description: "SQLite ledger mirror (file)",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagSQLitePath, "sqlite-path", "", "SQLite mirror file (for --backend=sqlite)")
		},
		Open: func() (ledger.Gateway, func() error, error) {
			if flagSQLitePath == "" {
				return nil, nil, fmt.Errorf("missing --sqlite-path")
			}
			return open(DriverSQLite, flagSQLitePath)
		},
	})
	registry.MustRegister(registry.Backend{
		Name:        "postgres",
		Description: "Postgres ledger mirror",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagPostgresDSN, "postgres-dsn", "", "Postgres DSN (for --backend=postgres)")
		},
		Open: func() (ledger.Gateway, func() error, error) {
			if flagPostgresDSN == "" {
				return nil, nil, fmt.Errorf("missing --postgres-dsn")
			}
			return open(DriverPostgres, flagPostgresDSN)
		},
	})
}

func open(driver, dsn string) (ledger.Gateway, func() error, error) {
	s, err := Open(context.Background(), driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}
