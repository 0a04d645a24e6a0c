// internal/requestinfo/requestinfo_test.go
//
// Run: go test ./internal/requestinfo -v

package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avct/uasurfer"
)

func TestTrimVersion(t *testing.T) {
	cases := []struct {
		in   uasurfer.Version
		want string
	}{
		{uasurfer.Version{Major: 124, Minor: 0, Patch: 0}, "124"},
		{uasurfer.Version{Major: 14, Minor: 5, Patch: 0}, "14.5"},
		{uasurfer.Version{Major: 1, Minor: 2, Patch: 3}, "1.2.3"},
		{uasurfer.Version{}, "0"},
	}
	for _, c := range cases {
		if got := trimVersion(c.in); got != c.want {
			t.Errorf("trimVersion(%+v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPrimaryLang(t *testing.T) {
	cases := map[string]string{
		"en-US,en;q=0.9,fr;q=0.8": "en-us",
		"fr":                      "fr",
		"de;q=0.7":                "de",
		"":                        "",
	}
	for in, want := range cases {
		if got := primaryLang(in); got != want {
			t.Errorf("primaryLang(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := clientIP(r).String(); got != "203.0.113.9" {
		t.Fatalf("clientIP = %q", got)
	}
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.7:1234"

	if got := clientIP(r).String(); got != "192.0.2.7" {
		t.Fatalf("clientIP = %q", got)
	}
}

func TestEnrichAttachesInfo(t *testing.T) {
	var info *RequestInfo
	h := Enrich(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/fr/index", nil)
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	h.ServeHTTP(httptest.NewRecorder(), req)

	if info == nil {
		t.Fatal("no request info attached")
	}
	if info.UA.Browser != "Chrome" {
		t.Errorf("browser = %q, want Chrome", info.UA.Browser)
	}
	if info.UA.PrimaryLang != "en-us" {
		t.Errorf("lang = %q", info.UA.PrimaryLang)
	}
	if info.Geo.IP == nil {
		t.Error("client IP missing")
	}
}
