package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name    string
		xlocale string
		accept  string
		want    string
	}{
		{name: "default", want: "en"},
		{name: "x-locale swahili", xlocale: "sw", want: "sw"},
		{name: "x-locale wins over accept", xlocale: "sw", accept: "en-US", want: "sw"},
		{name: "accept language region", accept: "sw-KE,en;q=0.8", want: "sw"},
		{name: "unsupported falls back", accept: "fr-FR", want: "en"},
		{name: "garbage falls back", accept: ";;;", want: "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.xlocale != "" {
				r.Header.Set("X-Locale", tt.xlocale)
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			if got := detectLocale(r, "en"); got != tt.want {
				t.Fatalf("detectLocale = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("CF-IPCountry", "ke")
	if got := ResolveCountry(r, nil); got != "KE" {
		t.Fatalf("header country: got %q want KE", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:1234"
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.7" {
			t.Fatalf("lookup called with %q", ip)
		}
		return "KE", nil
	}
	if got := ResolveCountry(r, lookup); got != "KE" {
		t.Fatalf("geoip country: got %q want KE", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	if got := ResolveCountry(r, nil); got != "" {
		t.Fatalf("no hints: got %q want empty", got)
	}
}

func TestI18NMiddlewareStoresContext(t *testing.T) {
	var locale, country string
	handler := I18N("en", func(string) (string, error) { return "KE", nil })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale = LocaleFromContext(r.Context())
			country = CountryFromContext(r.Context())
		}))

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Locale", "sw")
	r.RemoteAddr = "203.0.113.7:1234"
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if locale != "sw" {
		t.Fatalf("locale = %q, want sw", locale)
	}
	if country != "KE" {
		t.Fatalf("country = %q, want KE", country)
	}
}
