// Package registry implements the process-wide catalogue of capability
// providers. Providers register once at startup; tool names are globally
// unique across all registered providers.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pulsecoach/pulsecoach/internal/schema"
)

// ErrDuplicateTool is returned when a provider declares a tool name that
// another registered provider already owns. Registration fails closed:
// none of the offending provider's tools are registered.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ErrProviderNotFound is returned by Get for an unknown provider name.
var ErrProviderNotFound = errors.New("provider not found")

// Registry holds capability providers in registration order.
// All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]schema.CapabilityProvider
	order     []string
	// toolOwner maps a declared tool name to the owning provider name.
	// It is the uniqueness index consulted at registration time.
	toolOwner map[string]string
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		providers: make(map[string]schema.CapabilityProvider),
		toolOwner: make(map[string]string),
	}
}

// Register stores provider under its name. It fails with ErrDuplicateTool
// if any tool name the provider declares collides with a tool of an
// already-registered provider, and with an error if the provider name
// itself is already taken. On failure nothing is registered.
//
// The uniqueness check uses the provider's declared schema set at
// registration time (the empty user scope); providers that vary tools per
// user must declare their full tool name set here.
func (r *Registry) Register(provider schema.CapabilityProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}

	schemas := provider.ToolSchemas("")
	for _, ts := range schemas {
		if owner, taken := r.toolOwner[ts.Name]; taken {
			return fmt.Errorf("%w: %q declared by %q is already owned by %q",
				ErrDuplicateTool, ts.Name, name, owner)
		}
	}

	for _, ts := range schemas {
		r.toolOwner[ts.Name] = name
	}
	r.providers[name] = provider
	r.order = append(r.order, name)
	return nil
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (schema.CapabilityProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return p, nil
}

// All returns the registered providers in registration order, so prompt
// construction is deterministic across calls.
func (r *Registry) All() []schema.CapabilityProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schema.CapabilityProvider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.providers[name])
	}
	return out
}

// Remove unregisters the provider and purges its tool names from the
// uniqueness index atomically with the removal. Removing an unknown
// provider is a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return
	}
	delete(r.providers, name)
	for tool, owner := range r.toolOwner {
		if owner == name {
			delete(r.toolOwner, tool)
		}
	}
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
