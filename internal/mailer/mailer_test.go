// internal/mailer/mailer_test.go
//
// Run: go test ./internal/mailer -v

package mailer

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOptionsFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://site.example.com:8080/users/password", nil)
	opts := OptionsFromRequest(req)

	if opts.Scheme != "http" || opts.Host != "site.example.com:8080" {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestOptionsFromRequestTLS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://site.example.com/users/password", nil)
	req.TLS = &tls.ConnectionState{}
	opts := OptionsFromRequest(req)

	if opts.Scheme != "https" {
		t.Fatalf("scheme = %q, want https", opts.Scheme)
	}
}

func TestAbsoluteURL(t *testing.T) {
	opts := URLOptions{Scheme: "https", Host: "site.example.com"}

	cases := map[string]string{
		"/users/password/reset?token=abc": "https://site.example.com/users/password/reset?token=abc",
		"fr/index":                        "https://site.example.com/fr/index", // missing slash is added
	}
	for in, want := range cases {
		if got := opts.AbsoluteURL(in); got != want {
			t.Errorf("AbsoluteURL(%q) = %q, want %q", in, got, want)
		}
	}
}

// Two requests for different accounts must each see their own host; the
// options value is per-request, never process state.
func TestOptionsAreRequestScoped(t *testing.T) {
	a := OptionsFromRequest(httptest.NewRequest(http.MethodGet, "http://a.example.com/", nil))
	b := OptionsFromRequest(httptest.NewRequest(http.MethodGet, "http://b.example.com/", nil))

	if a.AbsoluteURL("/x") == b.AbsoluteURL("/x") {
		t.Fatal("hosts bled across requests")
	}
}
