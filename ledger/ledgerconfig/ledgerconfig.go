// Package ledgerconfig opens one or more ledger backends from a config file.
package ledgerconfig

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"xdao.co/ledgerview/ledger"
	"xdao.co/ledgerview/ledger/registry"
)

// Config describes how to open one or more gateways via the backend registry.
//
// Backends are consulted in order (see ledger.Fallback). Callers still need to
// link the desired backend packages via blank imports.
//
// Example:
//
//	backends:
//	  - name: grpc
//	    config: {grpc-target: "ledger.internal:7788", grpc-timeout: "5s"}
//	  - name: sqlite
//	    id: mirror
//	    config: {sqlite-path: /var/lib/ledgerview/mirror.db}
//	mirror:
//	  name: sqlite
//	  config: {sqlite-path: /var/lib/ledgerview/cache.db}
//	rate_limit: 20
//	burst: 5
//
// When Mirror is set, every record read from the backends is copied into it,
// and it answers while the backends are unavailable (see ledger.Mirrored).
// The mirror backend must support imports.
//
// JSON is accepted as well. Config values are backend-specific and mirror the
// backend's flag names.
type Config struct {
	Backends []BackendConfig `yaml:"backends" json:"backends"`
	Mirror   *BackendConfig  `yaml:"mirror,omitempty" json:"mirror,omitempty"`

	// RateLimit caps gateway calls per second when positive.
	RateLimit float64 `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`
	Burst     int     `yaml:"burst,omitempty" json:"burst,omitempty"`
}

type BackendConfig struct {
	// Name is the registry backend name to open (e.g. "grpc", "sqlite").
	Name string `yaml:"name" json:"name"`
	// ID is an optional stable alias; Name is used when empty.
	ID     string            `yaml:"id,omitempty" json:"id,omitempty"`
	Config map[string]string `yaml:"config,omitempty" json:"config,omitempty"`
}

func (b BackendConfig) key() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}

func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("ledgerconfig: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("ledgerconfig: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("ledgerconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("ledgerconfig: backend name is required")
		}
		if _, ok := seen[b.key()]; ok {
			return fmt.Errorf("ledgerconfig: duplicate backend id %q", b.key())
		}
		seen[b.key()] = struct{}{}
	}
	if c.Mirror != nil && c.Mirror.Name == "" {
		return errors.New("ledgerconfig: mirror backend name is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("ledgerconfig: negative rate_limit %v", c.RateLimit)
	}
	return nil
}

// Open opens the configured gateways.
//
// If preferred is non-empty, backends are reordered so the one whose name or
// id matches is consulted first.
func (c Config) Open(usage registry.Usage, preferred string) (ledger.Gateway, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	ordered := append([]BackendConfig(nil), c.Backends...)
	if preferred != "" {
		idx := -1
		for i := range ordered {
			if ordered[i].Name == preferred || ordered[i].ID == preferred {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil, fmt.Errorf("ledgerconfig: preferred backend %q not found in config", preferred)
		}
		if idx != 0 {
			b := ordered[idx]
			copy(ordered[1:idx+1], ordered[0:idx])
			ordered[0] = b
		}
	}

	gateways := make([]ledger.Gateway, 0, len(ordered))
	closers := make([]func() error, 0, len(ordered))
	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for _, b := range ordered {
		gw, closeFn, err := registry.OpenWithConfig(b.Name, usage, b.Config)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("ledgerconfig: backend %q: %w", b.key(), err)
		}
		gateways = append(gateways, gw)
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	var gw ledger.Gateway
	if len(gateways) == 1 {
		gw = gateways[0]
	} else {
		gw = ledger.Fallback{Gateways: gateways}
	}
	if c.RateLimit > 0 {
		gw = ledger.Throttle(gw, c.RateLimit, c.Burst)
	}
	if c.Mirror != nil {
		mgw, closeFn, err := registry.OpenWithConfig(c.Mirror.Name, usage, c.Mirror.Config)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("ledgerconfig: mirror %q: %w", c.Mirror.key(), err)
		}
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
		sink, ok := mgw.(ledger.Sink)
		if !ok {
			_ = closeAll()
			return nil, nil, fmt.Errorf("ledgerconfig: backend %q cannot be used as a mirror", c.Mirror.Name)
		}
		gw = ledger.Mirrored{Source: gw, Mirror: sink}
	}
	return gw, closeAll, nil
}
