// components/admin/admin.go
//
// Admin component – the RequireAdmin-gated dashboard area.
//
//------------------------------------------------------------------------------

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/atrium/internal/account"
	"github.com/yanizio/atrium/internal/component"
	"github.com/yanizio/atrium/internal/pipeline"
	"github.com/yanizio/atrium/internal/view"
)

var _ component.Component = (*Component)(nil)

// Component encapsulates the admin dashboard.
type Component struct{}

func (c *Component) Name() string  { return "admin" }
func (c *Component) Mount() string { return "/admin" }

// Routes mounts the dashboard behind the admin gate.  Non-admin visitors
// never reach a handler here; the gate redirects them with a warning.
func (c *Component) Routes(p *pipeline.Pipeline) chi.Router {
	r := chi.NewRouter()
	r.Use(p.RequireAdmin)
	r.Get("/", c.handleDashboard)
	r.Get("/accounts", c.handleAccounts(p))
	return r
}

func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleDashboard(w http.ResponseWriter, r *http.Request) {
	vctx := view.NewContext(w, r)
	vctx.Fragments.Register("title", view.Single)
	vctx.Fragments.Add("title", "Dashboard")

	if err := view.Render(vctx, w, "admin", "dashboard", nil, view.CacheDefault); err != nil {
		zap.S().Errorw("render dashboard", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// handleAccounts lists every active account from the control-plane DB,
// with the current host's row first highlighted by the template.
func (c *Component) handleAccounts(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := account.AllActive(p.Accounts.GlobalDB())
		if err != nil {
			zap.S().Errorw("list accounts", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		vctx := view.NewContext(w, r)
		data := map[string]any{
			"Accounts": rows,
			"Current":  account.FromContext(r.Context()),
		}
		if err := view.Render(vctx, w, "admin", "accounts", data, view.CacheDefault); err != nil {
			zap.S().Errorw("render accounts", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
