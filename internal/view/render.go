// internal/view/render.go
//
// Central view engine: template lookup, theme override chain, func-map
// injection, and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - NewContext      – per-request render context (locale, theme, flash, fragments).
//   - Render          – write rendered HTML to an http.ResponseWriter.
//   - RenderToString  – return template.HTML (mail bodies, embedded blocks).
//
// Lookup precedence (first hit wins):
//   1. themes/<theme>/components/<comp>/templates/<tpl>.html
//   2. components/<comp>/templates/<tpl>.html
//
// All templates in the same directory are parsed as one set so sub-templates
// ({{ template "row" . }}) work out-of-the-box.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yanizio/atrium/internal/account"
	"github.com/yanizio/atrium/internal/auth"
	"github.com/yanizio/atrium/internal/cache"
	"github.com/yanizio/atrium/internal/flash"
	"github.com/yanizio/atrium/internal/locale"
	"github.com/yanizio/atrium/internal/theme"
)

//
// cache definitions
//

// CachePolicy hints how the caller wants this template cached.
type CachePolicy int

const (
	CacheDefault CachePolicy = iota // obey global TTL
	CacheSkip                       // never cache
)

// Parsed template sets per theme; tweak capacity when perf-testing.
var tmplLRU = cache.New(1024)

//
// per-request render context
//

// Context carries everything a template needs for one request.  It is
// assembled from the ambient request state the pipeline established.
type Context struct {
	Request   *http.Request
	Account   *account.Account
	User      *auth.User
	Locale    string
	Theme     *theme.Theme
	Fragments *Fragments
	Flash     *flash.Message // nil when no flash is pending
}

// NewContext collects the ambient request state into a render context.
// The flash, if any, is consumed here so it renders exactly once.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	vc := &Context{
		Request:   r,
		Account:   account.FromContext(r.Context()),
		User:      auth.CurrentUser(r.Context()),
		Locale:    locale.FromContext(r.Context()),
		Theme:     theme.FromContext(r.Context()),
		Fragments: NewFragments(),
	}
	if msg, ok := flash.Take(w, r); ok {
		vc.Flash = &msg
	}
	return vc
}

// NewMailContext is NewContext without the flash: mail bodies must not
// consume the visitor's pending message.
func NewMailContext(r *http.Request) *Context {
	return &Context{
		Request:   r,
		Account:   account.FromContext(r.Context()),
		User:      auth.CurrentUser(r.Context()),
		Locale:    locale.FromContext(r.Context()),
		Theme:     theme.FromContext(r.Context()),
		Fragments: NewFragments(),
	}
}

//
// public helpers
//

// Render executes the template set and streams it to w.
func Render(ctx *Context, w http.ResponseWriter, comp, name string, data map[string]any, policy CachePolicy) error {
	t, err := load(ctx, comp, name, policy)
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(w, execName(t, name), payload(ctx, data))
}

// RenderToString executes and returns HTML (used by mail bodies and
// embedded blocks).  It mirrors Render, but writes to a buffer.
func RenderToString(ctx *Context, comp, name string, data map[string]any) (template.HTML, error) {
	t, err := load(ctx, comp, name, CacheDefault)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, name), payload(ctx, data)); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

//
// internal: load
//

// load finds and (if necessary) parses the template set for the given
// theme, component, and base name, obeying the provided cache policy.
func load(ctx *Context, comp, name string, policy CachePolicy) (*template.Template, error) {
	themeName := "default"
	if ctx.Theme != nil {
		themeName = ctx.Theme.Name
	}
	key := strings.Join([]string{themeName, comp, name}, "::")

	if policy != CacheSkip {
		if v, ok := tmplLRU.Get(key); ok {
			return v.(*template.Template), nil
		}
	}

	paths := []string{
		filepath.Join("themes", themeName, "components", comp, "templates", name+".html"),
		filepath.Join("components", comp, "templates", name+".html"),
	}

	var base string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			base = p
			break
		}
	}
	if base == "" {
		return nil, os.ErrNotExist
	}

	// Parse all *.html in the same directory so sub-templates work.
	dir := filepath.Dir(base)
	pattern := filepath.Join(dir, "*.html")

	t, err := template.New(name).Funcs(buildFuncMap(ctx)).ParseGlob(pattern)
	if err != nil {
		return nil, err
	}

	if policy != CacheSkip {
		tmplLRU.Add(key, t)
	}
	return t, nil
}

//
// helpers
//

// payload merges the standard render context into caller data.
func payload(ctx *Context, data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+4)
	for k, v := range data {
		out[k] = v
	}
	out["Ctx"] = ctx
	out["Fragments"] = ctx.Fragments
	out["Flash"] = ctx.Flash
	out["Locale"] = ctx.Locale
	return out
}

func buildFuncMap(ctx *Context) template.FuncMap {
	assetFn := func(p string) string { return "/assets/" + p }
	if ctx.Theme != nil {
		assetFn = ctx.Theme.AssetFunc
	}
	return template.FuncMap{
		"asset":    assetFn,
		"fragment": ctx.Fragments.HTML,
		"localePath": func(name string) string {
			return locale.PathTo(ctx.Locale, name)
		},
	}
}

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined in code).
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name + ".html"); tmpl != nil {
		return name + ".html"
	}
	return name
}
