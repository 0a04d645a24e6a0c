// internal/component/registry.go
//
// A super-light registry: components call Register(&C{}) in an init()
// function, and cmd/web mounts every registered component onto the root
// router behind the pipeline's base chain.
//
// Components own their routes and any area-specific gates (RequireUser,
// RequireAdmin); the registry only collects them in registration order.
package component

import (
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/atrium/internal/pipeline"
)

// Component is one mountable feature area.
type Component interface {
	// Name returns the canonical component key ("auth", "admin", …).
	Name() string
	// Mount returns the URL prefix the component's routes live under.
	Mount() string
	// Routes builds the component router.  The pipeline supplies gates
	// and collaborators (sessions, accounts).
	Routes(p *pipeline.Pipeline) chi.Router
}

var (
	mu       sync.RWMutex
	registry []Component
)

// Register is called from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry = append(registry, c)
	mu.Unlock()
}

// All returns components in registration order.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, len(registry))
	copy(out, registry)
	return out
}

// AllNames returns the registered component names, for logging.
func AllNames() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for _, c := range registry {
		names = append(names, c.Name())
	}
	return names
}
