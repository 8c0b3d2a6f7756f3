package prompt

import (
	"context"
	"sync"

	"aegis/pkg/core/apperr"
	"aegis/pkg/core/obslog"
)

// Store is the narrow persistence collaborator the registry depends on.
// The relational store gateway (pkg/core/store) implements this; the
// prompt package never imports store directly, keeping the dependency
// pointed away from persistence per spec's layering.
type Store interface {
	ListPromptRecords(ctx context.Context) ([]Record, error)
}

// Registry resolves (Layer, Name) to the highest-versioned Record,
// generalizing the teacher's singleton Registry (pkg/core/prompt.Get())
// into an explicit, constructible value — spec's design note that shared
// state must never be a package-level singleton applies here exactly as
// it does to pkg/core/monitor.
type Registry struct {
	mu      sync.RWMutex
	latest  map[key]*Record
	byLayer map[Layer][]*Record
	store   Store
}

type key struct {
	model string
	layer Layer
	name  string
}

// New constructs an empty Registry bound to store. Call Reload before
// first use.
func New(store Store) *Registry {
	return &Registry{
		latest:  make(map[key]*Record),
		byLayer: make(map[Layer][]*Record),
		store:   store,
	}
}

// Reload replaces the in-memory cache with the current contents of the
// store, keeping only the highest version seen per (Layer, Name).
func (r *Registry) Reload(ctx context.Context) error {
	records, err := r.store.ListPromptRecords(ctx)
	if err != nil {
		return apperr.Upstream("prompt.registry", "failed to load prompt records", err)
	}

	latest := make(map[key]*Record, len(records))
	byLayer := make(map[Layer][]*Record)
	for i := range records {
		rec := records[i]
		k := key{model: rec.Model, layer: rec.Layer, name: rec.Name}
		if existing, ok := latest[k]; !ok || rec.Version > existing.Version {
			latest[k] = &rec
		}
	}
	for _, rec := range latest {
		byLayer[rec.Layer] = append(byLayer[rec.Layer], rec)
	}

	r.mu.Lock()
	r.latest = latest
	r.byLayer = byLayer
	r.mu.Unlock()

	obslog.Info("prompt.registry_reloaded", "count", len(latest))
	return nil
}

// Get resolves the latest version of (layer, name) within the default
// model family (Model == ""). Aegis tiers connectors by size (TierConfig)
// rather than branching prompts per model family, so every prompt this
// registry serves today lives in that default family; the Model/key
// dimension exists so a future model-specific override row can be added
// without another schema change.
func (r *Registry) Get(layer Layer, name string) (*Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.latest[key{layer: layer, name: name}]
	if !ok {
		return nil, apperr.ErrPromptNotFound
	}
	return rec, nil
}

// GetLocal is a convenience for the common case, Get(LayerLocal, name).
func (r *Registry) GetLocal(name string) (*Record, error) {
	return r.Get(LayerLocal, name)
}

// ListByCategory returns every latest-version Record in category,
// regardless of layer, mirroring the teacher's ListByCategory.
func (r *Registry) ListByCategory(category string) []*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Record
	for _, rec := range r.latest {
		if rec.Category == category {
			out = append(out, rec)
		}
	}
	return out
}

// Count returns the number of distinct (layer, name) prompts currently
// cached.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.latest)
}
