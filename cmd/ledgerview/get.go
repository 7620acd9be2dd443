package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"xdao.co/ledgerview/model"
	"xdao.co/ledgerview/resolution"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Resolve one entity by id and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.resolveOnce(cmd, func(c *resolution.Controller) { c.RequestExplicit(args[0]) })
		},
	}
}

func newRandomCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Resolve a uniformly random entity and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolveOnce(cmd, func(c *resolution.Controller) { c.RequestRandom() })
		},
	}
}

// resolveOnce issues one request, waits for it to settle and prints the
// state. A Failed state is returned as an error after printing.
func (a *app) resolveOnce(cmd *cobra.Command, request func(*resolution.Controller)) error {
	gw, closeFn, err := a.openGateway(cmd)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}

	c := a.controller(gw)
	defer c.Close()
	request(c)
	c.Wait()

	s := c.State()
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(model.FromState(s, c.DraftInput())); err != nil {
		return err
	}
	if s.Status == resolution.StatusFailed {
		return fmt.Errorf("%s: %s", s.Kind(), s.Err.Message)
	}
	return nil
}
