package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated principal carried in the request context.
type Identity struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// TokenClaims is the JWT payload issued at login.
type TokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type identityKey struct{}

// SignToken mints an HS256 token for the identity.
func SignToken(secret string, id Identity, ttl time.Duration) (string, error) {
	claims := TokenClaims{
		Email: id.Email,
		Name:  id.Name,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			Issuer:    "campusfund",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry and returns the claims.
func ParseToken(secret, token string) (*TokenClaims, error) {
	var claims TokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return &claims, nil
}

// AuthJWT rejects requests without a valid bearer token and stores the
// identity in the request context.
func AuthJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization", http.StatusUnauthorized)
				return
			}
			claims, err := ParseToken(secret, parts[1])
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ident := Identity{
				ID:    claims.Subject,
				Email: claims.Email,
				Name:  claims.Name,
				Role:  claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), ident)))
		})
	}
}

// RequireRole gates a route group on the identity's role claim.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "missing authorization", http.StatusUnauthorized)
				return
			}
			if ident.Role != role {
				http.Error(w, "insufficient privileges", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(identityKey{}).(Identity)
	return v, ok
}

// ContextWithIdentity injects an identity; used by the auth middleware and tests.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}
