package memory

import (
	"fmt"

	"github.com/spf13/pflag"

	"xdao.co/ledgerview/ledger"
	"xdao.co/ledgerview/ledger/registry"
)

var flagFixture string

func init() {
	registry.MustRegister(registry.Backend{
		Name:        "memory",
		Description: "In-memory ledger loaded from a YAML/JSON fixture file",
		Usage:       registry.UsageCLI | registry.UsageDaemon,
		RegisterFlags: func(fs *pflag.FlagSet) {
			fs.StringVar(&flagFixture, "memory-fixture", "", "Fixture file (for --backend=memory)")
		},
		Open: func() (ledger.Gateway, func() error, error) {
			if flagFixture == "" {
				return nil, nil, fmt.Errorf("missing --memory-fixture")
			}
			gw, err := LoadFile(flagFixture)
			if err != nil {
				return nil, nil, err
			}
			return gw, nil, nil
		},
	})
}
