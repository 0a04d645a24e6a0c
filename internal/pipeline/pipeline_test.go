// internal/pipeline/pipeline_test.go
//
// Tests for the base chain, the gates, and the error-rule table.  The
// control-plane DB is sqlmock; everything else runs through httptest.
//
// Run: go test ./internal/pipeline -v

package pipeline

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/atrium/internal/account"
	"github.com/yanizio/atrium/internal/auth"
	"github.com/yanizio/atrium/internal/config"
	"github.com/yanizio/atrium/internal/locale"
	"github.com/yanizio/atrium/internal/session"
)

func testPipeline(env string) *Pipeline {
	return New(nil, session.NewCodec("0123456789abcdef0123456789abcdef", 0), nil, &config.Config{Env: env})
}

func testAccount(siteEnabled, sslEnabled bool) *account.Account {
	return &account.Account{
		Meta: account.Record{
			ID:            1,
			Host:          "site.example.com",
			Prefix:        "site",
			DefaultLocale: "fr",
			SiteEnabled:   siteEnabled,
			SSLEnabled:    sslEnabled,
		},
	}
}

// withAccount injects acct (and its default locale) into the request
// context the way the resolver middlewares would.
func withAccount(r *http.Request, acct *account.Account) *http.Request {
	ctx := account.WithAccount(r.Context(), acct)
	ctx = locale.WithLocale(ctx, acct.Meta.DefaultLocale)
	return r.WithContext(ctx)
}

//
// Chain ordering
//

func TestBaseChainOrder(t *testing.T) {
	p := testPipeline(config.EnvTest)

	mws := p.Base()
	if len(mws) != 9 {
		t.Fatalf("base chain length = %d, want 9", len(mws))
	}

	// Compose and run the full chain against a resolved-account substitute:
	// the first element is replaced by a context injector so no DB is
	// needed, and the handler asserts the ambient state is in place.
	inject := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, withAccount(r, testAccount(true, false)))
		})
	}
	mws[0] = inject

	reached := false
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if account.FromContext(r.Context()) == nil {
			t.Error("account not ambient at handler")
		}
		if got := locale.FromContext(r.Context()); got != "fr" {
			t.Errorf("locale = %q, want fr", got)
		}
	})
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}

	req := httptest.NewRequest(http.MethodGet, "http://site.example.com/fr/index", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !reached {
		t.Fatal("handler never reached")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

//
// Account resolution
//

func TestResolveAccountUnknownHost(t *testing.T) {
	rawDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer rawDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM   account")).
		WithArgs("nosuch.example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	reg := account.NewRegistry(sqlx.NewDb(rawDB, "mysql"), account.IdleTTL, account.MaxEntries)
	p := testPipeline(config.EnvTest)
	p.Accounts = reg

	reached := false
	h := p.ResolveAccount(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "http://nosuch.example.com/en/index", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if reached {
		t.Fatal("handler ran for unknown host")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want empty 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("body = %q, want empty", rec.Body.String())
	}
}

//
// Gates
//

func TestRequireUserAnonymous(t *testing.T) {
	p := testPipeline(config.EnvTest)

	h := p.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran for anonymous visitor")
	}))

	req := httptest.NewRequest(http.MethodGet, "/en/courses", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != LoginPath {
		t.Fatalf("Location = %q, want %q", got, LoginPath)
	}
}

func TestRequireAdminNonAdmin(t *testing.T) {
	p := testPipeline(config.EnvTest)

	h := p.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran for non-admin")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = withAccount(req, testAccount(true, false))
	req = req.WithContext(auth.WithUser(req.Context(), &auth.User{ID: 9, IsAdmin: false}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/fr/index" {
		t.Fatalf("Location = %q, want account index", got)
	}

	// The soft denial must leave a flash behind for the next render.
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "atrium_flash" && c.Value != "" {
			decoded, _ := url.QueryUnescape(c.Value)
			if decoded != "alert|Unauthorized Access!" {
				t.Fatalf("flash = %q", decoded)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("no flash cookie set on admin denial")
	}
}

func TestRequireAdminAnonymousGoesToLogin(t *testing.T) {
	p := testPipeline(config.EnvTest)

	h := p.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran for anonymous visitor")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Location"); got != LoginPath {
		t.Fatalf("Location = %q, want %q", got, LoginPath)
	}
}

func TestRequireAdminPasses(t *testing.T) {
	p := testPipeline(config.EnvTest)

	reached := false
	h := p.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = req.WithContext(auth.WithUser(req.Context(), &auth.User{ID: 1, IsAdmin: true}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !reached {
		t.Fatal("admin was denied")
	}
}

//
// Site-enabled gate
//

func siteGateRequest(t *testing.T, target string, acct *account.Account, u *auth.User) *httptest.ResponseRecorder {
	t.Helper()
	p := testPipeline(config.EnvTest)

	h := p.SiteEnabled(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent) // marker for "passed the gate"
	}))

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = withAccount(req, acct)
	if u != nil {
		req = req.WithContext(auth.WithUser(req.Context(), u))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSiteDisabledRedirects(t *testing.T) {
	rec := siteGateRequest(t, "/fr/pages/about", testAccount(false, false), nil)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/fr/coming_soon" {
		t.Fatalf("Location = %q, want localized coming-soon", got)
	}
}

func TestSiteDisabledServesComingSoon(t *testing.T) {
	rec := siteGateRequest(t, "/fr/coming_soon", testAccount(false, false), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("coming-soon page blocked: status = %d", rec.Code)
	}

	rec = siteGateRequest(t, "/fr/pages?slug=coming_soon", testAccount(false, false), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("slug form blocked: status = %d", rec.Code)
	}
}

func TestSiteDisabledAdminBypass(t *testing.T) {
	rec := siteGateRequest(t, "/fr/pages/about", testAccount(false, false),
		&auth.User{ID: 1, IsAdmin: true})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin blocked by site gate: status = %d", rec.Code)
	}
}

func TestSiteDisabledIdentityPathBypass(t *testing.T) {
	rec := siteGateRequest(t, "/users/login", testAccount(false, false), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("login path blocked by site gate: status = %d", rec.Code)
	}
}

func TestSiteEnabledPasses(t *testing.T) {
	rec := siteGateRequest(t, "/fr/pages/about", testAccount(true, false), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("enabled site blocked: status = %d", rec.Code)
	}
}

//
// SSL enforcer
//

func TestEnforceSSLRedirectsToHTTPS(t *testing.T) {
	p := testPipeline(config.EnvProduction)

	h := p.EnforceSSL(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler ran on wrong scheme")
	}))

	req := httptest.NewRequest(http.MethodGet, "http://site.example.com/fr/pages/about?x=1&y=2", nil)
	req = withAccount(req, testAccount(true, true))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d, want 307", rec.Code)
	}
	want := "https://site.example.com/fr/pages/about?x=1&y=2"
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("Location = %q, want %q (query must survive)", got, want)
	}
}

func TestEnforceSSLIdempotent(t *testing.T) {
	p := testPipeline(config.EnvProduction)

	reached := false
	h := p.EnforceSSL(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	// The retried request arrives over TLS; the check must now pass.
	req := httptest.NewRequest(http.MethodGet, "https://site.example.com/fr/pages/about?x=1", nil)
	req = withAccount(req, testAccount(true, true))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !reached {
		t.Fatalf("secure request redirected again: %s", rec.Header().Get("Location"))
	}
}

func TestEnforceSSLInertOutsideProduction(t *testing.T) {
	p := testPipeline(config.EnvDevelopment)

	reached := false
	h := p.EnforceSSL(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "http://site.example.com/fr/index", nil)
	req = withAccount(req, testAccount(true, true))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !reached {
		t.Fatal("dev request was redirected")
	}
}

func TestEnforceSSLHonorsSecurePolicy(t *testing.T) {
	p := testPipeline(config.EnvProduction)
	p.SecurePolicy = func(*http.Request) bool { return false } // area opts out

	reached := false
	h := p.EnforceSSL(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "http://site.example.com/fr/index", nil)
	req = withAccount(req, testAccount(true, true))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !reached {
		t.Fatal("opted-out area still redirected")
	}
}

//
// Navigation-state tracker
//

func TestStoreLocationSavesPathWithQuery(t *testing.T) {
	p := testPipeline(config.EnvTest)

	h := p.StoreLocation(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/fr/courses/algebra1?tab=syllabus", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// Replay the cookies onto a fresh request, as a browser would.
	next := httptest.NewRequest(http.MethodGet, "/users/login", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	if got := session.PreviousURL(next); got != "/fr/courses/algebra1?tab=syllabus" {
		t.Fatalf("previous URL = %q", got)
	}
}

func TestStoreLocationSkipsIdentityPaths(t *testing.T) {
	p := testPipeline(config.EnvTest)

	h := p.StoreLocation(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/users/login", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "atrium_previous_url" {
			t.Fatalf("identity path was stored: %q", c.Value)
		}
	}
}

//
// Route derivation
//

func TestRouteParts(t *testing.T) {
	cases := []struct {
		path      string
		component string
		action    string
	}{
		{"/", "pages", "index"},
		{"/en", "pages", "index"},
		{"/en/index", "pages", "index"},
		{"/fr/courses/algebra1", "courses", "algebra1"},
		{"/admin/accounts", "admin", "accounts"},
		{"/users/login", "users", "login"},
	}
	for _, c := range cases {
		comp, action := routeParts(c.path)
		if comp != c.component || action != c.action {
			t.Errorf("routeParts(%q) = (%q, %q), want (%q, %q)",
				c.path, comp, action, c.component, c.action)
		}
	}
}
