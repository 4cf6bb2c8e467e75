// Package tool provides the tool registry, the dispatch engine, and the
// invocation error taxonomy shared by every handler.
package tool

import (
	"context"
	"sync"

	"toolbelt-mcp/internal/mcp"
)

// Handler executes one tool invocation. A returned error is normalized
// into an error result by the dispatch engine; handlers may also return
// an IsError result directly.
type Handler func(ctx context.Context, args map[string]any) (*mcp.ToolsCallResult, error)

// Registration pairs a tool descriptor with its handler.
type Registration struct {
	Tool    mcp.Tool
	Handler Handler
}

// Registry is the catalog mapping tool name to descriptor and handler.
// Registration happens once at startup; afterwards the registry is
// read-only and shared across concurrent dispatches.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Registration
	order   []string // preserves registration order
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register adds a tool. If the name already exists the entry is
// overwritten but keeps its original position in the catalog.
func (r *Registry) Register(reg Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[reg.Tool.Name]; !exists {
		r.order = append(r.order, reg.Tool.Name)
	}
	r.entries[reg.Tool.Name] = reg
}

// RegisterAll registers each entry in slice order, so later entries win
// on a name collision.
func (r *Registry) RegisterAll(regs []Registration) {
	for _, reg := range regs {
		r.Register(reg)
	}
}

// Resolve returns the registration for a tool name.
func (r *Registry) Resolve(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.entries[name]
	return reg, ok
}

// Descriptors returns the catalog in registration order. The order is
// stable across calls.
func (r *Registry) Descriptors() []mcp.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mcp.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].Tool)
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
