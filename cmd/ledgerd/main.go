// Command ledgerd serves any registered ledger backend over gRPC.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"xdao.co/ledgerview/internal/logging"
	"xdao.co/ledgerview/ledger"
	"xdao.co/ledgerview/ledger/grpcledger"
	"xdao.co/ledgerview/ledger/ledgerconfig"
	"xdao.co/ledgerview/ledger/registry"

	_ "xdao.co/ledgerview/ledger/memory"
	_ "xdao.co/ledgerview/ledger/sqlstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, out io.Writer, errOut io.Writer) int {
	fs := pflag.NewFlagSet("ledgerd", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	listen := fs.String("listen", "127.0.0.1:7788", "listen address")
	backend := fs.String("backend", "memory", "ledger backend name")
	configPath := fs.String("config", "", "backend config file (YAML or JSON); overrides --backend")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	registry.RegisterFlags(fs, registry.UsageDaemon)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *listBackends {
		for _, b := range registry.List(registry.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(out, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
		}
		return 0
	}

	logger, closeLog := logging.New(logging.FromEnv())
	defer closeLog()

	if changed := registry.ChangedBackendFlags(fs); *configPath != "" && len(changed) > 0 {
		fmt.Fprintf(errOut, "--%s cannot be combined with --config; set them in the config file\n", strings.Join(changed, ", --"))
		return 2
	}

	gw, closeFn, err := openGateway(*configPath, *backend)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	s := grpc.NewServer(grpc.UnaryInterceptor(grpcledger.LoggingInterceptor(logger)))
	grpcledger.RegisterLedgerServer(s, &grpcledger.Server{Gateway: gw})

	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	logger.Info("ledgerd listening", "addr", lis.Addr().String(), "backend", *backend, "config", *configPath)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	return 0
}

func openGateway(configPath, backend string) (ledger.Gateway, func() error, error) {
	if configPath == "" {
		return registry.Open(backend, registry.UsageDaemon)
	}
	cfg, err := ledgerconfig.LoadFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg.Open(registry.UsageDaemon, "")
}
