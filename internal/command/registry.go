// Package command implements the backend commands reachable through the
// gateway. Every command takes a JSON object of named arguments.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

type Handler func(ctx context.Context, args json.RawMessage) (any, error)

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register replaces any handler already registered under name.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (any, error) {
	h, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownCommand)
	}
	return h(ctx, args)
}
