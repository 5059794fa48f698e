package dashboard

import (
	"context"
	"fmt"
)

// Loader is the signature for any function that can produce the raw
// observations behind a dataset.
type Loader func(ctx context.Context) ([]Observation, error)

// Registry maps source names used in dataset configs to their loaders.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry creates and returns a new registry
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[string]Loader),
	}
}

// Register adds a loader for a given source name
func (r *Registry) Register(source string, loader Loader) {
	if _, exists := r.loaders[source]; exists {
		panic(fmt.Sprintf("Loader for source '%s' is already registered", source))
	}
	r.loaders[source] = loader
}

// Get retrieves a loader for a given source name
func (r *Registry) Get(source string) (Loader, bool) {
	loader, found := r.loaders[source]
	return loader, found
}
