package client

import (
	"strings"
	"sync"

	"github.com/louisbranch/storefront/internal/platform/config"
	apperrors "github.com/louisbranch/storefront/internal/platform/errors"
)

// DefaultName is the client name used when none is configured.
const DefaultName = "default"

// Factory creates a fresh client node.
type Factory func(deps Deps) Client

type registryKey struct {
	path string
	name string
}

// Registry maps a client path and name to its factory.
type Registry struct {
	mu        sync.RWMutex
	factories map[registryKey]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[registryKey]Factory{}}
}

// Register adds factory for path and name, replacing a previous one.
func (r *Registry) Register(path, name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[registryKey{path: normalizePath(path), name: name}] = factory
}

// Create returns a new client for path. An empty name reads
// client/html/<path>/name and falls back to DefaultName.
func (r *Registry) Create(deps Deps, path, name string) (Client, error) {
	path = normalizePath(path)
	if strings.TrimSpace(name) == "" {
		name = config.String(deps.Config, "client/html/"+path+"/name", DefaultName)
	}
	if r == nil {
		return nil, apperrors.Presentation(apperrors.CodeClientConfig, "No client for \"%s\" with name \"%s\" available", path, name)
	}
	r.mu.RLock()
	factory, ok := r.factories[registryKey{path: path, name: name}]
	r.mu.RUnlock()
	if !ok || factory == nil {
		return nil, apperrors.Presentation(apperrors.CodeClientConfig, "No client for \"%s\" with name \"%s\" available", path, name)
	}
	if deps.Registry == nil {
		deps.Registry = r
	}
	return factory(deps), nil
}

func normalizePath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}
