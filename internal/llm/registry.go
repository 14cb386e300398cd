package llm

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the providers that came up with valid configuration and
// resolves model ids to the provider that serves them.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	// byModel maps model id to provider name.
	byModel map[string]string
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		byModel:   make(map[string]string),
	}
}

// Register adds a provider and indexes its model catalog. Registering a
// provider with a name already present replaces the previous one.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.providers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.providers[name] = p
	for _, m := range p.Models() {
		r.byModel[m.ModelID] = name
	}
}

// Resolve finds the provider serving the given model id.
func (r *Registry) Resolve(modelID string) (Provider, ModelInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.byModel[modelID]
	if !ok {
		return nil, ModelInfo{}, fmt.Errorf("unknown model %q", modelID)
	}
	p := r.providers[name]
	for _, m := range p.Models() {
		if m.ModelID == modelID {
			return p, m, nil
		}
	}
	return nil, ModelInfo{}, fmt.Errorf("unknown model %q", modelID)
}

// Provider returns the provider registered under name.
func (r *Registry) Provider(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns registered provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Models returns the union of all provider catalogs, sorted by provider
// then model id for a stable listing.
func (r *Registry) Models() []ModelInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ModelInfo
	for _, name := range r.order {
		out = append(out, r.providers[name].Models()...)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].ModelID < out[j].ModelID
	})
	return out
}

// Len reports how many providers are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
