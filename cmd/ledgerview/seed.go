package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xdao.co/ledgerview/ledger/memory"
	"xdao.co/ledgerview/ledger/sqlstore"
)

func newSeedCmd(a *app) *cobra.Command {
	var driver, dsn string
	cmd := &cobra.Command{
		Use:   "seed <fixture>",
		Short: "Import a YAML/JSON fixture into a SQL ledger mirror",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				return fmt.Errorf("missing --dsn")
			}
			fx, err := memory.ReadFixture(args[0])
			if err != nil {
				return err
			}
			store, err := sqlstore.Open(cmd.Context(), driver, dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Import(cmd.Context(), fx.Entities)
			if err != nil {
				return err
			}
			a.logger.Debug("seeded mirror", "driver", driver, "records", n)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d records\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&driver, "driver", sqlstore.DriverSQLite, `SQL driver: "sqlite" or "pgx"`)
	cmd.Flags().StringVar(&dsn, "dsn", "", "SQLite file path or Postgres DSN")
	return cmd
}
