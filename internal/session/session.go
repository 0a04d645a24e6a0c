// internal/session/session.go
//
// Signed session cookie.
//
// Context
// -------
// Authentication requires persisting a “logged-in” flag between requests.
// The mechanism of record here is a JWT carried in an HttpOnly cookie named
// “atrium_session”: claims hold a random session id plus the user id, and
// the HMAC signature keeps both tamper-proof.  Credential *verification*
// (password checks and so on) belongs to the auth component; this package
// only mints, reads, and clears the proof of a completed sign-in.
//
// A second, unsigned cookie stores the visitor's previous URL so the auth
// component can redirect back after login.  Identity-management paths are
// never stored (see pipeline.StoreLocation).
//
// Notes
// -----
// • All helpers are method-on-Codec so tests can use a throwaway secret.
// • Oxford commas, two spaces after periods.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	cookieName      = "atrium_session"
	previousURLName = "atrium_previous_url"

	// DefaultMaxAge applies when config leaves session.max_age unset.
	DefaultMaxAge = 14 * 24 * time.Hour
)

// State is the decoded session: a stable per-browser session id and the
// signed-in user id (0 when the visitor is anonymous but the cookie holds
// only a session id).
type State struct {
	SID string
	UID int64
}

// claims is the JWT payload.
type claims struct {
	SID string `json:"sid"`
	UID int64  `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// Codec mints and verifies session cookies.  Zero value is invalid.
type Codec struct {
	secret []byte
	maxAge time.Duration
}

// NewCodec builds a Codec.  maxAge <= 0 falls back to DefaultMaxAge.
func NewCodec(secret string, maxAge time.Duration) *Codec {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Codec{secret: []byte(secret), maxAge: maxAge}
}

//
// Sign-in / sign-out
//

// Issue signs a fresh session for uid and sets the cookie.  A new session
// id is minted on every call, which also defeats session fixation.
func (c *Codec) Issue(w http.ResponseWriter, r *http.Request, uid int64) (State, error) {
	st := State{SID: newSID(), UID: uid}

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SID: st.SID,
		UID: st.UID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	})
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return State{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(c.maxAge),
	})
	return st, nil
}

// Clear removes the session cookie.
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Current decodes and verifies the session cookie.  ok == false when the
// cookie is missing, expired, or fails signature verification.
func (c *Codec) Current(r *http.Request) (State, bool) {
	ck, err := r.Cookie(cookieName)
	if err != nil || ck.Value == "" {
		return State{}, false
	}

	var cl claims
	tok, err := jwt.ParseWithClaims(ck.Value, &cl, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return State{}, false
	}
	return State{SID: cl.SID, UID: cl.UID}, true
}

//
// Previous-URL state
//

// StorePreviousURL remembers the last non-auth path visited.  The server
// only ever writes plain paths here, and PreviousURL enforces that shape
// on the way back out.  Query strings are legal in paths, so the value is
// escaped for cookie transport.
func StorePreviousURL(w http.ResponseWriter, fullPath string) {
	http.SetCookie(w, &http.Cookie{
		Name:     previousURLName,
		Value:    url.QueryEscape(fullPath),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PreviousURL returns the stored path, or "" when none was recorded.
// The cookie is unsigned, so the value is validated on the way out: only
// a same-site path (single leading slash) is ever returned.  Anything
// else — absolute URLs, scheme-relative "//host" forms — is discarded, so
// a hostile cookie cannot turn the post-login redirect into an off-site
// jump.
func PreviousURL(r *http.Request) string {
	ck, err := r.Cookie(previousURLName)
	if err != nil {
		return ""
	}
	p, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return ""
	}
	if !isLocalPath(p) {
		return ""
	}
	return p
}

// isLocalPath accepts "/..." and rejects "", "//host", and "/\..." (some
// browsers treat a backslash like a second slash).
func isLocalPath(p string) bool {
	if len(p) == 0 || p[0] != '/' {
		return false
	}
	return len(p) == 1 || (p[1] != '/' && p[1] != '\\')
}

//
// helpers
//

// newSID returns 16 random bytes hex-encoded.
func newSID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
