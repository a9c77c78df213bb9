package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/apper-apps/tekxora-tools-chip/internal/http/handlers"
	"github.com/apper-apps/tekxora-tools-chip/internal/middleware"
)

type Options struct {
	JWTSecret       string
	JWTIssuer       string
	GuestCookieName string
	SecureCookies   bool
	AllowedOrigins  []string
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
	RateLimitPerMin int
	Logger          zerolog.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/tools", app.ListTools)

		r.Group(func(r chi.Router) {
			r.Use(
				middleware.OptionalAuthJWT(opts.JWTSecret, opts.JWTIssuer),
				middleware.GuestScope(opts.GuestCookieName, opts.SecureCookies),
				middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
			)

			r.Route("/tools/{tool}", func(r chi.Router) {
				r.Get("/", app.GetTool)
				r.Get("/eligibility", app.Eligibility)
				r.Get("/result", app.Result)

				r.Route("/wizard", func(r chi.Router) {
					r.Get("/", app.GetWizard)
					r.Delete("/", app.DiscardWizard)
					r.Put("/fields", app.SetWizardFields)
					r.Post("/advance", app.AdvanceWizard)
					r.Post("/retreat", app.RetreatWizard)
					r.Post("/reset", app.ResetWizard)
				})

				limited := r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
				limited.Post("/generate", app.Generate)
				limited.Post("/refine", app.Refine)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.JWTSecret, opts.JWTIssuer))
			r.Get("/me", app.Me)
			r.Get("/me/usage", app.MyUsage)
			r.Get("/admin/usage/stats", app.UsageStats)
		})
	})

	return r
}
