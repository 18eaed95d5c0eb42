package search

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages multiple search backends
type Registry struct {
	mu          sync.RWMutex
	backends    map[string]Searcher
	defaultName string
}

func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Searcher),
	}
}

// Register adds a new backend. The first one registered becomes the default.
func (r *Registry) Register(name string, s Searcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[name] = s
	if r.defaultName == "" {
		r.defaultName = name
	}
}

func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backends[name]; !ok {
		return fmt.Errorf("search backend not found: %s", name)
	}
	r.defaultName = name
	return nil
}

func (r *Registry) Get(name string) (Searcher, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.backends[name]
	return s, ok
}

// GetDefault returns nil when nothing is registered.
func (r *Registry) GetDefault() Searcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.backends[r.defaultName]
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
