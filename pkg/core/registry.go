package core

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Registry holds the sources wired into the palette. Sources keep their
// registration order, which is the tie-break order of the merged results.
type Registry struct {
	sources map[string]Source
	order   []string
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

func (r *Registry) Register(source Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := source.Name()
	if _, exists := r.sources[name]; exists {
		return fmt.Errorf("source %s already registered", name)
	}

	r.sources[name] = source
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) GetSource(name string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, exists := r.sources[name]
	if !exists {
		return nil, fmt.Errorf("source %s not found", name)
	}

	return source, nil
}

// Sources returns the registered sources in registration order. When names
// are given only those sources are returned, still in registration order.
func (r *Registry) Sources(names ...string) []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	result := make([]Source, 0, len(r.order))
	for _, name := range r.order {
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		result = append(result, r.sources[name])
	}
	return result
}

func (r *Registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *Registry) RemoveSource(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	source, exists := r.sources[name]
	if !exists {
		return fmt.Errorf("source %s not found", name)
	}

	if closer, ok := source.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("closing source %s: %w", name, err)
		}
	}

	delete(r.sources, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, name := range r.order {
		if closer, ok := r.sources[name].(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing source %s: %w", name, err))
			}
		}
	}

	r.sources = make(map[string]Source)
	r.order = nil

	return errors.Join(errs...)
}
