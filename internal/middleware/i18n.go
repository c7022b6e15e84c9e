package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type countryContextKey struct{}

// Supported user-facing locales; English wins ties.
var localeMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Swahili,
})

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// I18N negotiates a response locale (X-Locale header, then Accept-Language)
// and resolves a best-effort donor country for the request.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale)
			ctx := context.WithValue(r.Context(), localeContextKey{}, locale)
			if country := ResolveCountry(r, lookup); country != "" {
				ctx = context.WithValue(ctx, countryContextKey{}, country)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string) string {
	accept := r.Header.Get("Accept-Language")
	if v := r.Header.Get("X-Locale"); v != "" {
		accept = v
	}
	if accept != "" {
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err == nil && len(tags) > 0 {
			tag, _, conf := localeMatcher.Match(tags...)
			if conf > language.No {
				base, _ := tag.Base()
				return base.String()
			}
		}
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

// ResolveCountry resolves an ISO country code for the request: trusted proxy
// headers first, then the GeoIP lookup.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	for _, key := range []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"} {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(localeContextKey{}).(string); ok {
		return v
	}
	return "en"
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(countryContextKey{}).(string); ok {
		return v
	}
	return ""
}
