package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"kreator/internal/http/handlers"
	"kreator/internal/middleware"
)

// NewRouter wires the HTTP surface: public auth routes behind a brute-force
// rate limit, and the generation routes behind the session guard.
func NewRouter(app *handlers.App, logger zerolog.Logger, countryLookup middleware.CountryLookup) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(app.Config.CORSAllowedOrigins))
	r.Use(middleware.I18N("pl", countryLookup))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(app.Config.LoginRateLimit, app.Config.LoginRateWindow)).
			Post("/login", app.Login)
		r.Post("/logout", app.Logout)
		r.Get("/session", app.SessionInfo)
	})

	r.Group(func(r chi.Router) {
		r.Use(app.RequireAuth)
		r.Get("/v1/models", app.Models)
		r.Post("/v1/images/generate", app.ImagesGenerate)
		r.Post("/v1/images/archive", app.ImagesArchive)
	})

	return r
}
