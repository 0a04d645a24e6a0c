// Package theme describes one visual theme: its directory on disk, its
// parsed template set, and the asset helper templates use to resolve
// `{{ asset "css/site.css" }}` to a URL under the theme's assets folder.
//
// Themes are selected per request by the account's prefix identifier; the
// Registry owns that mapping and the default fallback.
package theme

import (
	"html/template"
	"path"
)

// Theme is the parsed, ready-to-render form of one theme directory.
type Theme struct {
	Name      string
	Root      string
	Renderer  *template.Template
	AssetFunc func(string) string
}

// New binds a Theme to its asset URL space.
func New(name, root string, tpl *template.Template) *Theme {
	prefix := "/themes/" + name + "/assets"
	return &Theme{
		Name:     name,
		Root:     root,
		Renderer: tpl,
		AssetFunc: func(p string) string {
			return path.Join(prefix, p)
		},
	}
}
