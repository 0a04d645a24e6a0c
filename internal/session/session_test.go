// internal/session/session_test.go
//
// Round-trip and tamper tests for the session codec.
//
// Run: go test ./internal/session -v

package session

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// replay copies cookies set on rec onto a fresh request, like a browser.
func replay(rec *httptest.ResponseRecorder, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 {
			req.AddCookie(c)
		}
	}
	return req
}

func TestIssueCurrentRoundTrip(t *testing.T) {
	c := NewCodec(testSecret, time.Hour)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/login", nil)

	st, err := c.Issue(rec, req, 42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if st.SID == "" {
		t.Fatal("empty session id")
	}

	got, ok := c.Current(replay(rec, "/fr/index"))
	if !ok {
		t.Fatal("Current rejected a freshly issued cookie")
	}
	if got.UID != 42 || got.SID != st.SID {
		t.Fatalf("decoded %+v, want uid 42 sid %s", got, st.SID)
	}
}

func TestIssueMintsFreshSessionID(t *testing.T) {
	c := NewCodec(testSecret, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	a, _ := c.Issue(httptest.NewRecorder(), req, 1)
	b, _ := c.Issue(httptest.NewRecorder(), req, 1)
	if a.SID == b.SID {
		t.Fatal("session id reused across issues")
	}
}

func TestCurrentRejectsTamperedToken(t *testing.T) {
	c := NewCodec(testSecret, time.Hour)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := c.Issue(rec, req, 42); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	ck := rec.Result().Cookies()[0]
	// Flip a character in the signature segment.
	i := strings.LastIndexByte(ck.Value, '.') + 1
	mangled := ck.Value[:i] + "x" + ck.Value[i+1:]

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: ck.Name, Value: mangled})

	if _, ok := c.Current(bad); ok {
		t.Fatal("tampered token accepted")
	}
}

func TestCurrentRejectsWrongSecret(t *testing.T) {
	issuer := NewCodec(testSecret, time.Hour)
	other := NewCodec("ffffffffffffffffffffffffffffffff", time.Hour)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := issuer.Issue(rec, req, 7); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, ok := other.Current(replay(rec, "/")); ok {
		t.Fatal("token accepted under a different secret")
	}
}

func TestClearRemovesCookie(t *testing.T) {
	c := NewCodec(testSecret, time.Hour)

	rec := httptest.NewRecorder()
	c.Clear(rec)

	cks := rec.Result().Cookies()
	if len(cks) != 1 || cks[0].MaxAge != -1 {
		t.Fatalf("expected expired cookie, got %+v", cks)
	}
}

func TestPreviousURLRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	StorePreviousURL(rec, "/fr/courses/algebra1?tab=syllabus&page=2")

	got := PreviousURL(replay(rec, "/users/login"))
	if got != "/fr/courses/algebra1?tab=syllabus&page=2" {
		t.Fatalf("previous URL = %q", got)
	}
}

func TestPreviousURLMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := PreviousURL(req); got != "" {
		t.Fatalf("previous URL = %q, want empty", got)
	}
}

// The previous-URL cookie is unsigned, so a visitor can set it to
// anything.  Only same-site paths may come back out; everything else
// would turn the post-login redirect into an open redirect.
func TestPreviousURLRejectsOffSiteValues(t *testing.T) {
	hostile := []string{
		"https://evil.example/phish",
		"//evil.example",
		"/\\evil.example",
		"javascript:alert(1)",
		"",
	}
	for _, v := range hostile {
		req := httptest.NewRequest(http.MethodGet, "/users/login", nil)
		req.AddCookie(&http.Cookie{
			Name:  "atrium_previous_url",
			Value: url.QueryEscape(v),
		})
		if got := PreviousURL(req); got != "" {
			t.Errorf("hostile value %q came back as %q", v, got)
		}
	}
}
