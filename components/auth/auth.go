// components/auth/auth.go
//
// Authentication component – login, logout, and the post-login redirect.
//
// Context
// -------
// Lives under /users, which the navigation tracker and the site-enabled
// gate both treat as reserved: these routes are never stored as a return
// target and are never blocked by the coming-soon redirect.  On success,
// login consults the previous-URL state and falls back to the root.
//
//------------------------------------------------------------------------------

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/atrium/internal/account"
	authn "github.com/yanizio/atrium/internal/auth"
	"github.com/yanizio/atrium/internal/component"
	"github.com/yanizio/atrium/internal/flash"
	"github.com/yanizio/atrium/internal/mailer"
	"github.com/yanizio/atrium/internal/pipeline"
	"github.com/yanizio/atrium/internal/session"
	"github.com/yanizio/atrium/internal/view"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component encapsulates the login flow.
type Component struct{}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "auth" }

// Mount returns the reserved identity-management prefix.
func (c *Component) Mount() string { return "/users" }

// Routes builds and returns the router mounted at “/users”.
func (c *Component) Routes(p *pipeline.Pipeline) chi.Router {
	r := chi.NewRouter()
	r.Get("/login", c.handleLoginGET)
	r.Post("/login", c.handleLoginPOST(p))
	r.Post("/logout", c.handleLogout(p))
	r.Get("/password", c.handlePasswordGET)
	r.Post("/password", c.handlePasswordPOST)
	r.Get("/password/reset", c.handleResetGET)
	r.Post("/password/reset", c.handleResetPOST)
	return r
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Component) handleLoginGET(w http.ResponseWriter, r *http.Request) {
	vctx := view.NewContext(w, r)
	if err := view.Render(vctx, w, "auth", "login", nil, view.CacheSkip); err != nil {
		zap.S().Errorw("render login", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (c *Component) handleLoginPOST(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		email := r.PostForm.Get("email")
		pass := r.PostForm.Get("password")

		acct := account.FromContext(r.Context())
		if acct == nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		store := authn.Store{DB: acct.DB}
		u, err := store.ByEmail(r.Context(), email)
		if err != nil || !store.VerifyPassword(u, pass) {
			flash.Set(w, flash.KindAlert, "Incorrect email or password.")
			http.Redirect(w, r, pipeline.LoginPath, http.StatusSeeOther)
			return
		}

		if _, err := p.Sessions.Issue(w, r, u.ID); err != nil {
			zap.S().Errorw("session issue failed", "uid", u.ID, "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// Post-login redirect: previous URL when stored, root otherwise.
		target := session.PreviousURL(r)
		if target == "" {
			target = "/"
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func (c *Component) handleLogout(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Sessions.Clear(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (c *Component) handlePasswordGET(w http.ResponseWriter, r *http.Request) {
	vctx := view.NewContext(w, r)
	if err := view.Render(vctx, w, "auth", "password", nil, view.CacheSkip); err != nil {
		zap.S().Errorw("render password form", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// handlePasswordPOST persists a reset token and sends the reset email.
// The response is the same whether or not the address exists, so the
// form cannot be used to enumerate accounts.
func (c *Component) handlePasswordPOST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	email := r.PostForm.Get("email")

	acct := account.FromContext(r.Context())
	if acct != nil && email != "" {
		store := authn.Store{DB: acct.DB}
		if u, err := store.ByEmail(r.Context(), email); err == nil {
			c.sendResetEmail(r, &store, u)
		}
	}

	flash.Set(w, flash.KindNotice,
		"If that address is registered, a reset link is on its way.")
	http.Redirect(w, r, pipeline.LoginPath, http.StatusSeeOther)
}

// sendResetEmail stores a fresh token on the user row and queues the
// message.  Failures are logged, never surfaced: the visitor-facing
// response must not change shape.
func (c *Component) sendResetEmail(r *http.Request, store *authn.Store, u *authn.User) {
	token := newResetToken()
	if err := store.SetResetToken(r.Context(), u.ID, token, time.Now()); err != nil {
		zap.S().Errorw("reset token persist failed", "uid", u.ID, "err", err)
		return
	}

	// Reset links must use the host the visitor used, not a
	// process-wide default: two accounts resetting at once would
	// otherwise race over it.
	opts := mailer.OptionsFromRequest(r)
	link := opts.AbsoluteURL("/users/password/reset?token=" + token)

	vctx := view.NewMailContext(r)
	body, err := view.RenderToString(vctx, "auth", "reset_email", map[string]any{"Link": link})
	if err != nil {
		zap.S().Warnw("reset email render failed", "uid", u.ID, "err", err)
	}

	msg := mailer.Email{
		To:      []string{u.Email},
		Subject: "Reset your password",
		Text:    "Follow this link to choose a new password:\n" + link,
		HTML:    string(body),
	}
	if err := mailer.EnqueueEmail(r.Context(), opts, msg); err != nil {
		zap.S().Warnw("reset email enqueue failed", "uid", u.ID, "err", err)
	}
}

// handleResetGET renders the new-password form for the emailed link.
// The token is only validated on POST; a stale link still gets the form
// and fails with a flash when submitted.
func (c *Component) handleResetGET(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Redirect(w, r, "/users/password", http.StatusSeeOther)
		return
	}
	vctx := view.NewContext(w, r)
	data := map[string]any{"Token": token}
	if err := view.Render(vctx, w, "auth", "reset", data, view.CacheSkip); err != nil {
		zap.S().Errorw("render reset form", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// handleResetPOST completes the reset: the token must match an unexpired
// row, and the new digest lands in the same statement that burns the
// token.
func (c *Component) handleResetPOST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	token := r.PostForm.Get("token")
	pass := r.PostForm.Get("password")
	confirm := r.PostForm.Get("password_confirmation")

	if len(pass) < 8 || pass != confirm {
		flash.Set(w, flash.KindAlert,
			"Passwords must match and be at least 8 characters.")
		http.Redirect(w, r, "/users/password/reset?token="+token, http.StatusSeeOther)
		return
	}

	acct := account.FromContext(r.Context())
	if acct == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	store := authn.Store{DB: acct.DB}
	u, err := store.ByResetToken(r.Context(), token)
	if err != nil {
		flash.Set(w, flash.KindAlert, "That reset link is invalid or has expired.")
		http.Redirect(w, r, "/users/password", http.StatusSeeOther)
		return
	}

	digest, err := authn.HashPassword(pass)
	if err != nil {
		zap.S().Errorw("password hash failed", "uid", u.ID, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := store.UpdatePassword(r.Context(), u.ID, digest); err != nil {
		zap.S().Errorw("password update failed", "uid", u.ID, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	flash.Set(w, flash.KindNotice, "Password updated.  Sign in with the new one.")
	http.Redirect(w, r, pipeline.LoginPath, http.StatusSeeOther)
}

// newResetToken returns 24 random bytes hex-encoded.
func newResetToken() string {
	var b [24]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
