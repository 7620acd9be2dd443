package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"xdao.co/ledgerview/internal/logging"
	"xdao.co/ledgerview/ledger"
	"xdao.co/ledgerview/ledger/ledgerconfig"
	"xdao.co/ledgerview/ledger/registry"
	"xdao.co/ledgerview/resolution"

	_ "xdao.co/ledgerview/ledger/grpcledger"
	_ "xdao.co/ledgerview/ledger/memory"
	_ "xdao.co/ledgerview/ledger/sqlstore"
)

const (
	flagConfig      = "config"
	flagBackend     = "backend"
	flagEnvFile     = "env-file"
	flagCallTimeout = "call-timeout"

	envConfig  = "LEDGERVIEW_CONFIG"
	envBackend = "LEDGERVIEW_BACKEND"
	envListen  = "LEDGERVIEW_LISTEN"
)

// app carries state shared by subcommands of one invocation.
type app struct {
	configPath  string
	backend     string
	envFile     string
	callTimeout time.Duration

	logger   *slog.Logger
	closeLog func() error
}

func New() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "ledgerview [sub-command]",
		Short: "Browse entities on a read-only ledger",
		Long: `ledgerview resolves ledger entities by id, at random, or through their
  parents, against any registered ledger backend.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE:  a.preRun,
		PersistentPostRunE: a.postRun,
		DisableAutoGenTag:  true,
		SilenceUsage:       true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, flagConfig, "", "backend config file (YAML or JSON); env "+envConfig)
	pf.StringVar(&a.backend, flagBackend, "grpc", "ledger backend name; with --config, the preferred backend; env "+envBackend)
	pf.StringVar(&a.envFile, flagEnvFile, "", "load environment variables from this file (default: .env when present)")
	pf.DurationVar(&a.callTimeout, flagCallTimeout, 0, `bound every ledger call (e.g. "10s"); 0 waits indefinitely`)
	registry.RegisterFlags(pf, registry.UsageCLI)

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newGetCmd(a))
	cmd.AddCommand(newRandomCmd(a))
	cmd.AddCommand(newBackendsCmd())
	cmd.AddCommand(newSeedCmd(a))
	return cmd
}

func (a *app) preRun(cmd *cobra.Command, _ []string) error {
	if err := loadEnv(a.envFile); err != nil {
		return err
	}
	flags := cmd.Flags()
	if v := os.Getenv(envConfig); v != "" && !flags.Changed(flagConfig) {
		a.configPath = v
	}
	if v := os.Getenv(envBackend); v != "" && !flags.Changed(flagBackend) {
		a.backend = v
	}
	a.logger, a.closeLog = logging.New(logging.FromEnv())
	return nil
}

func (a *app) postRun(*cobra.Command, []string) error {
	if a.closeLog != nil {
		return a.closeLog()
	}
	return nil
}

// loadEnv loads path, or ./.env when path is empty and the file exists.
// Variables already set in the process environment win.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// openGateway opens the config-described fallback chain, or the single
// backend named by --backend. Backend flags are rejected alongside a config
// file, which carries those options itself.
func (a *app) openGateway(cmd *cobra.Command) (ledger.Gateway, func() error, error) {
	if a.configPath == "" {
		return registry.Open(a.backend, registry.UsageCLI)
	}
	if changed := registry.ChangedBackendFlags(cmd.Flags()); len(changed) > 0 {
		return nil, nil, fmt.Errorf("--%s cannot be combined with --%s; set them in the config file", strings.Join(changed, ", --"), flagConfig)
	}
	cfg, err := ledgerconfig.LoadFile(a.configPath)
	if err != nil {
		return nil, nil, err
	}
	preferred := ""
	if cmd.Flags().Changed(flagBackend) || os.Getenv(envBackend) != "" {
		preferred = a.backend
	}
	return cfg.Open(registry.UsageCLI, preferred)
}

func (a *app) controller(gw ledger.Gateway, opts ...resolution.Option) *resolution.Controller {
	base := []resolution.Option{
		resolution.WithLogger(a.logger),
		resolution.WithCallTimeout(a.callTimeout),
	}
	return resolution.New(gw, append(base, opts...)...)
}
