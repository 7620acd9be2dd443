package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"xdao.co/ledgerview/ledger/registry"
)

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the ledger backends compiled into this binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, b := range registry.List(registry.UsageCLI) {
				if b.Description == "" {
					_, _ = fmt.Fprintf(out, "%s\n", b.Name)
					continue
				}
				_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
			}
			return nil
		},
	}
}
