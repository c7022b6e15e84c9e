package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"campusfund/internal/domain"
	"campusfund/internal/infra"
	"campusfund/internal/live"
	"campusfund/internal/middleware"
	"campusfund/internal/payment"
	"campusfund/internal/uploads"
)

// App carries the handlers' collaborators. Everything is injected so tests
// can substitute fakes for the store, charger, and uploader.
type App struct {
	SQL            infra.SQLExecutor
	Logger         zerolog.Logger
	JWTSecret      string
	IsAdminEmail   func(email string) bool
	Charger        payment.Charger
	PaymentTimeout time.Duration
	Uploader       uploads.ImageUploader
	Live           *live.Broker
	Country        middleware.CountryLookup
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": map[string]string{"code": code, "message": message}})
}

// fail maps a domain error onto its HTTP outcome. Unknown errors read as a
// store failure; nothing here is allowed to take the process down.
func (a *App) fail(w http.ResponseWriter, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "bad_request", msg)
	case errors.Is(err, domain.ErrAuthRequired):
		a.error(w, http.StatusUnauthorized, "unauthorized", msg)
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", msg)
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", msg)
	case errors.Is(err, domain.ErrInvalidState):
		a.error(w, http.StatusConflict, "invalid_state", msg)
	case errors.Is(err, domain.ErrAlreadyRemoved):
		a.error(w, http.StatusGone, "already_removed", msg)
	case errors.Is(err, domain.ErrPaymentFailed):
		a.error(w, http.StatusPaymentRequired, "payment_failed", msg)
	case errors.Is(err, domain.ErrPaymentTimeout):
		a.error(w, http.StatusGatewayTimeout, "payment_timeout", msg)
	default:
		a.Logger.Error().Err(err).Msg("store operation failed")
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "store unavailable, retry shortly")
	}
}

func (a *App) currentUser(r *http.Request) (middleware.Identity, bool) {
	return middleware.IdentityFromContext(r.Context())
}
