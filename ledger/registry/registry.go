// Package registry holds the ledger backends linked into a binary and binds
// their options either to command-line flags or to a config-file section.
package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/spf13/pflag"

	"xdao.co/ledgerview/ledger"
)

// backendAnnotation marks a flag with the name of the backend that added it.
const backendAnnotation = "ledgerview/backend"

// Backend describes one way of opening a ledger.Gateway. Backend packages
// call MustRegister from init(), so importing the package links it in.
type Backend struct {
	Name        string
	Description string
	Usage       Usage

	// RegisterFlags adds backend-specific flags to fs, resetting the bound
	// variables to their defaults.
	RegisterFlags func(fs *pflag.FlagSet)

	// Open constructs the gateway from the values parsed into the flags
	// registered by RegisterFlags. It returns an optional close function.
	Open func() (ledger.Gateway, func() error, error)
}

func (b Backend) check() error {
	if b.Name == "" {
		return errors.New("registry: backend name is required")
	}
	var missing []string
	if b.Usage == 0 {
		missing = append(missing, "Usage")
	}
	if b.RegisterFlags == nil {
		missing = append(missing, "RegisterFlags")
	}
	if b.Open == nil {
		missing = append(missing, "Open")
	}
	if len(missing) > 0 {
		return fmt.Errorf("registry: backend %q has no %s", b.Name, strings.Join(missing, " or "))
	}
	return nil
}

// catalog is the set of linked backends, keyed by name.
type catalog struct {
	sync.RWMutex
	byName map[string]Backend
}

var linked = &catalog{byName: make(map[string]Backend)}

func (c *catalog) add(b Backend) error {
	if err := b.check(); err != nil {
		return err
	}
	c.Lock()
	defer c.Unlock()
	if _, dup := c.byName[b.Name]; dup {
		return fmt.Errorf("registry: backend %q already registered", b.Name)
	}
	c.byName[b.Name] = b
	return nil
}

func (c *catalog) find(name string, usage Usage) (Backend, error) {
	c.RLock()
	b, ok := c.byName[name]
	c.RUnlock()
	switch {
	case !ok:
		return Backend{}, fmt.Errorf("unknown backend %q", name)
	case !b.Usage.allows(usage):
		return Backend{}, fmt.Errorf("backend %q not supported in this binary", name)
	}
	return b, nil
}

func (c *catalog) matching(usage Usage) []Backend {
	c.RLock()
	var out []Backend
	for _, b := range c.byName {
		if b.Usage.allows(usage) {
			out = append(out, b)
		}
	}
	c.RUnlock()
	slices.SortFunc(out, func(x, y Backend) int { return strings.Compare(x.Name, y.Name) })
	return out
}

func Register(b Backend) error { return linked.add(b) }

// MustRegister is Register for init functions; it panics on error.
func MustRegister(b Backend) {
	if err := linked.add(b); err != nil {
		panic(err)
	}
}

// List returns the backends usable by usage, sorted by name.
func List(usage Usage) []Backend { return linked.matching(usage) }

func Names(usage Usage) []string {
	var names []string
	for _, b := range linked.matching(usage) {
		names = append(names, b.Name)
	}
	return names
}

// RegisterFlags adds the flags of every backend usable by usage to fs, so one
// parse covers all of them. Each added flag is annotated with its backend's
// name; see ChangedBackendFlags.
func RegisterFlags(fs *pflag.FlagSet, usage Usage) {
	for _, b := range linked.matching(usage) {
		known := make(map[string]bool)
		fs.VisitAll(func(f *pflag.Flag) { known[f.Name] = true })
		b.RegisterFlags(fs)
		fs.VisitAll(func(f *pflag.Flag) {
			if !known[f.Name] {
				_ = fs.SetAnnotation(f.Name, backendAnnotation, []string{b.Name})
			}
		})
	}
}

// ChangedBackendFlags returns the sorted names of backend flags that were set
// explicitly when fs was parsed.
func ChangedBackendFlags(fs *pflag.FlagSet) []string {
	var changed []string
	fs.Visit(func(f *pflag.Flag) {
		if _, ok := f.Annotations[backendAnnotation]; ok {
			changed = append(changed, f.Name)
		}
	})
	slices.Sort(changed)
	return changed
}

// Open opens the named backend from its parsed command-line flags.
func Open(name string, usage Usage) (ledger.Gateway, func() error, error) {
	b, err := linked.find(name, usage)
	if err != nil {
		return nil, nil, err
	}
	return b.Open()
}

// OpenWithConfig opens the named backend with options taken from cfg, keyed
// by flag name. The flags are bound on a private set, so unset keys fall back
// to their defaults rather than to an earlier call's values.
func OpenWithConfig(name string, usage Usage, cfg map[string]string) (ledger.Gateway, func() error, error) {
	b, err := linked.find(name, usage)
	if err != nil {
		return nil, nil, err
	}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	b.RegisterFlags(fs)
	for _, key := range slices.Sorted(maps.Keys(cfg)) {
		if fs.Lookup(key) == nil {
			return nil, nil, fmt.Errorf("backend %q: unknown config key %q", name, key)
		}
		if err := fs.Set(key, cfg[key]); err != nil {
			return nil, nil, fmt.Errorf("backend %q: config %q: %w", name, key, err)
		}
	}
	return b.Open()
}
