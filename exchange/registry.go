// Copyright (c) 2025 BVK Chaitanya

package exchange

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
)

// Registry creates exchange adapters on first use and caches them for the
// rest of its lifetime.
type Registry struct {
	mu sync.Mutex

	closed bool

	factoryMap map[string]Factory
	adapterMap map[string]Adapter
}

func NewRegistry() *Registry {
	return &Registry{
		factoryMap: make(map[string]Factory),
		adapterMap: make(map[string]Adapter),
	}
}

// Close closes all adapters that implement io.Closer.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for name, a := range r.adapterMap {
		if c, ok := a.(io.Closer); ok {
			if err := c.Close(); err != nil {
				slog.Warn("could not close exchange adapter (ignored)", "exchange", name, "err", err)
			}
		}
	}
	clear(r.adapterMap)
	return nil
}

// Register adds an adapter factory for the exchange name. Names are case
// insensitive.
func (r *Registry) Register(name string, factory Factory) error {
	if len(name) == 0 || factory == nil {
		return os.ErrInvalid
	}
	key := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factoryMap[key]; ok {
		return fmt.Errorf("exchange %q is already registered: %w", name, os.ErrExist)
	}
	r.factoryMap[key] = factory
	return nil
}

// Names returns the registered exchange names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for k := range r.factoryMap {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Get returns the adapter for the exchange name, creating it if necessary.
// Construction runs under the registry lock, so an adapter is never created
// twice. Failed constructions are not cached.
func (r *Registry) Get(ctx context.Context, name string) (Adapter, error) {
	key := strings.ToLower(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, os.ErrClosed
	}
	if a, ok := r.adapterMap[key]; ok {
		return a, nil
	}
	factory, ok := r.factoryMap[key]
	if !ok {
		return nil, fmt.Errorf("exchange %q is not supported: %w", name, os.ErrNotExist)
	}
	a, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not create adapter for exchange %q: %w", name, err)
	}
	r.adapterMap[key] = a
	slog.Info("created exchange adapter", "exchange", key)
	return a, nil
}
