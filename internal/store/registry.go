package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Options carries backend construction parameters. Each backend reads
// the fields it needs and ignores the rest.
type Options struct {
	// Root is the fs backend's directory.
	Root string
	// Path is the badger backend's database directory.
	Path string
}

type Factory func(opts Options) (Backend, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

func init() {
	factories["memory"] = func(Options) (Backend, error) { return NewMemory(), nil }
	factories["fs"] = func(opts Options) (Backend, error) { return NewFS(opts.Root) }
	factories["badger"] = func(opts Options) (Backend, error) { return NewBadger(opts.Path) }
}

// RegisterBackend adds a named backend factory. Builtin names are
// memory, fs, and badger.
func RegisterBackend(name string, factory Factory) error {
	if factory == nil {
		return ErrBackendNil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("store: backend name is required")
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := factories[name]; ok {
		return ErrBackendExists
	}
	factories[name] = factory
	return nil
}

// Open constructs the named backend.
func Open(name string, opts Options) (Backend, error) {
	mu.RLock()
	factory, ok := factories[strings.TrimSpace(name)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return factory(opts)
}

// Backends lists registered backend names in stable order.
func Backends() []string {
	mu.RLock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	mu.RUnlock()
	sort.Strings(names)
	return names
}
