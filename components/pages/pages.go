// components/pages/pages.go
//
// Public pages component – locale-prefixed content pages, the root
// redirect, and the coming-soon placeholder.
//
//------------------------------------------------------------------------------

package pages

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/atrium/internal/account"
	"github.com/yanizio/atrium/internal/component"
	"github.com/yanizio/atrium/internal/locale"
	"github.com/yanizio/atrium/internal/pipeline"
	"github.com/yanizio/atrium/internal/view"
)

var _ component.Component = (*Component)(nil)

// Component serves the public surface.
type Component struct{}

func (c *Component) Name() string  { return "pages" }
func (c *Component) Mount() string { return "/" }

func (c *Component) Routes(_ *pipeline.Pipeline) chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.handleRoot)
	r.Get("/{locale}/index", c.handleIndex)
	r.Get("/{locale}/coming_soon", c.handleComingSoon)
	r.Get("/{locale}/pages/{slug}", c.handlePage)
	return r
}

func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

// handleRoot permanently redirects to the account's localized index.
func (c *Component) handleRoot(w http.ResponseWriter, r *http.Request) {
	acct := account.FromContext(r.Context())
	if acct == nil {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, acct.IndexPath(), http.StatusMovedPermanently)
}

func (c *Component) handleIndex(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, "index", nil)
}

func (c *Component) handleComingSoon(w http.ResponseWriter, r *http.Request) {
	loc := locale.FromContext(r.Context())
	data := map[string]any{
		"Message": locale.T(loc, "pages.coming_soon", "We are launching soon."),
	}
	c.render(w, r, "coming_soon", data)
}

func (c *Component) handlePage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Slug": chi.URLParam(r, "slug")}
	c.render(w, r, "page", data)
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	vctx := view.NewContext(w, r)
	if err := view.Render(vctx, w, "pages", name, data, view.CacheDefault); err != nil {
		zap.S().Errorw("render page", "name", name, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
