// internal/flash/flash.go
//
// One-shot flash messages.
//
// Context
// -------
// Gates that deny softly (the admin gate, the site-enabled gate) leave a
// user-visible message behind before redirecting.  The message rides in a
// short-lived cookie and is consumed by the next render: `Take` reads and
// clears it in one step.  Because the carrier is a cookie, the message
// also survives the SSL enforcer's scheme-flip redirect for free.
//
// Encoding is "kind|text" with URL escaping, which is enough for the two
// fields we carry and keeps the cookie readable in dev tools.
package flash

import (
	"net/http"
	"net/url"
	"strings"
)

const cookieName = "atrium_flash"

// Kinds mirror the usual notice/alert split.
const (
	KindNotice = "notice"
	KindAlert  = "alert"
)

// Message is a single pending flash.
type Message struct {
	Kind string
	Text string
}

// Set queues msg for the next rendered page.  Last write wins; flashes do
// not stack.
func Set(w http.ResponseWriter, kind, text string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    url.QueryEscape(kind + "|" + text),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Take returns the pending flash, clearing it so it renders exactly once.
// ok == false when no flash is pending.
func Take(w http.ResponseWriter, r *http.Request) (Message, bool) {
	ck, err := r.Cookie(cookieName)
	if err != nil || ck.Value == "" {
		return Message{}, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:   cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	raw, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return Message{}, false
	}
	kind, text, found := strings.Cut(raw, "|")
	if !found {
		return Message{Kind: KindNotice, Text: raw}, true
	}
	return Message{Kind: kind, Text: text}, true
}
