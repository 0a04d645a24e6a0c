// internal/theme/registry.go
//
// Prefix-keyed theme registry.
//
// Context
// -------
// When theming is enabled, the resolver middleware asks for the theme
// matching the account's prefix identifier.  Lookups that miss fall back
// to the configured default theme, so "no theme found" is never a failure
// mode the pipeline has to handle.  Themes are parsed lazily on first use
// and cached for the process lifetime.
package theme

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type ctxKey struct{}

// Registry resolves account prefixes to parsed themes.
type Registry struct {
	manager     Manager
	defaultName string

	mu     sync.Mutex
	loaded map[string]*Theme
}

// NewRegistry builds a Registry rooted at baseDir with the given default
// theme name.
func NewRegistry(baseDir, defaultName string) *Registry {
	return &Registry{
		manager:     Manager{BaseDir: baseDir},
		defaultName: defaultName,
		loaded:      make(map[string]*Theme, 4),
	}
}

// ForPrefix returns the theme whose directory matches the account prefix,
// falling back to the default theme when the prefix has none.  Returns nil
// only when the default theme itself cannot be loaded.
func (g *Registry) ForPrefix(prefix string) *Theme {
	if th := g.load(prefix); th != nil {
		return th
	}
	return g.load(g.defaultName)
}

// load returns the cached theme for name, parsing it on first use.
func (g *Registry) load(name string) *Theme {
	if name == "" {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if th, ok := g.loaded[name]; ok {
		return th
	}
	th, err := g.manager.Load(name)
	if err != nil {
		zap.S().Debugw("theme load miss", "theme", name, "err", err)
		g.loaded[name] = nil // negative cache; avoid re-stat per request
		return nil
	}
	g.loaded[name] = th
	return th
}

//
// Ambient theme state
//

// WithTheme returns a new context carrying the resolved theme.
func WithTheme(ctx context.Context, th *Theme) context.Context {
	return context.WithValue(ctx, ctxKey{}, th)
}

// FromContext returns the resolved theme, or nil when theming is disabled
// or the resolver has not run.
func FromContext(ctx context.Context) *Theme {
	v, _ := ctx.Value(ctxKey{}).(*Theme)
	return v
}
