// internal/view/fragments.go
//
// Named content fragments for the render layer.
//
// Context
// -------
// Handlers push named pieces of content (page title, sidebar blocks,
// extra head markup) into a per-request Fragments collection; the layout
// template pulls them back out by name.  A fragment's behavior is a
// tagged variant fixed at registration time:
//
//   - Single     – last write wins.
//   - Appendable – writes accumulate in order.
//
// Registering the kind up front replaces the duck-typed “does the current
// value respond to append” probing this design descends from; a fragment
// can never silently switch behavior mid-request.
//
// Fragments are scoped to a single request.  One goroutine per request is
// the norm, but widget rendering may fan out, so a mutex guards the maps.
package view

import (
	"html/template"
	"strings"
	"sync"
)

// Kind tags a fragment's accumulation behavior.
type Kind int

const (
	Single Kind = iota
	Appendable
)

// Fragments collects named content for one request.
type Fragments struct {
	mu     sync.Mutex
	kinds  map[string]Kind
	single map[string]string
	multi  map[string][]string
}

// NewFragments returns an empty collection.
func NewFragments() *Fragments {
	return &Fragments{
		kinds:  make(map[string]Kind, 4),
		single: make(map[string]string, 4),
		multi:  make(map[string][]string, 2),
	}
}

// Register fixes the kind for name.  Registering an already-known name is
// a no-op so layouts and handlers can both declare defensively.
func (f *Fragments) Register(name string, k Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.kinds[name]; !ok {
		f.kinds[name] = k
	}
}

// Add stores content under name.  Unregistered names default to Single.
func (f *Fragments) Add(name, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k, ok := f.kinds[name]
	if !ok {
		k = Single
		f.kinds[name] = k
	}

	switch k {
	case Appendable:
		f.multi[name] = append(f.multi[name], content)
	default:
		f.single[name] = content
	}
}

// Content returns the accumulated value for name.  Appendable fragments
// are joined in insertion order.
func (f *Fragments) Content(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if k, ok := f.kinds[name]; ok && k == Appendable {
		return strings.Join(f.multi[name], "")
	}
	return f.single[name]
}

// Has reports whether name holds any content.
func (f *Fragments) Has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if k, ok := f.kinds[name]; ok && k == Appendable {
		return len(f.multi[name]) > 0
	}
	return f.single[name] != ""
}

// HTML returns the fragment as template.HTML for direct use in layouts.
// Fragment content is handler-authored markup, not user input.
func (f *Fragments) HTML(name string) template.HTML {
	return template.HTML(f.Content(name))
}
