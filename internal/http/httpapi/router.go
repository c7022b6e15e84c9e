package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"campusfund/internal/domain"
	"campusfund/internal/http/handlers"
	"campusfund/internal/infra"
	"campusfund/internal/middleware"
)

// NewRouter assembles the middleware stack and route table. staticDir, when
// non-empty, serves locally stored campaign images under /static.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger, staticDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.I18N(cfg.DefaultLocale, app.Country),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
	)

	auth := middleware.AuthJWT(cfg.JWTSecret)
	admin := middleware.RequireRole(domain.RoleAdmin)

	r.Get("/v1/healthz", app.Health)

	r.Post("/auth/register", app.Register)
	r.Post("/auth/login", app.Login)

	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", app.CampaignsList)
		r.Get("/live", app.CampaignsLive)
		r.Get("/{id}", app.CampaignsGet)
		r.Get("/{id}/donations", app.DonationsList)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", app.CampaignsCreate)
			r.Post("/{id}/donations", app.DonationsCreate)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/me", app.Me)
		r.Post("/uploads/campaign-image", app.UploadCampaignImage)
	})

	r.Route("/admin/campaigns", func(r chi.Router) {
		r.Use(auth, admin)
		r.Get("/pending", app.CampaignsPending)
		r.Get("/pending/live", app.CampaignsPendingLive)
		r.Post("/{id}/approve", app.CampaignsApprove)
		r.Post("/{id}/reject", app.CampaignsReject)
	})

	if staticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}

	return r
}
