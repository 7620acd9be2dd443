package main

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"xdao.co/ledgerview/httpapi"
	"xdao.co/ledgerview/resolution"
	"xdao.co/ledgerview/view"
)

const shutdownGrace = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var listen, album string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolution controller over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if v := os.Getenv(envListen); v != "" && !cmd.Flags().Changed("listen") {
				listen = v
			}
			gw, closeFn, err := a.openGateway(cmd)
			if err != nil {
				return err
			}
			if closeFn != nil {
				defer closeFn()
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			c := a.controller(gw, resolution.WithMetrics(resolution.NewMetrics(reg)))
			defer c.Close()

			srv := httpapi.NewServer(c, httpapi.Options{
				Addr:     listen,
				Logger:   a.logger,
				Gatherer: reg,
				Card:     view.Options{Album: album},
			})
			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			select {
			case err := <-errc:
				return err
			case <-cmd.Context().Done():
			}
			ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			return <-errc
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:8080", "HTTP listen address; env "+envListen)
	cmd.Flags().StringVar(&album, "album", view.DefaultAlbum, "portrait base URL")
	return cmd
}
