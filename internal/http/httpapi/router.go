package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"studyblossom/internal/http/handlers"
	"studyblossom/internal/infra"
	"studyblossom/internal/middleware"
	"studyblossom/internal/ratelimit"
)

// Options carries the cross-cutting settings of the router.
type Options struct {
	Logger         *infra.Logger
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
	// RateLimitStore guards validation and generation routes. Nil disables
	// rate limiting.
	RateLimitStore  ratelimit.Store
	RateLimitPerMin int
	RateLimitWindow time.Duration
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	logger := infra.LoggerOrDiscard(opts.Logger)
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
		middleware.Logger(*logger),
		middleware.UserID,
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		if opts.RateLimitStore != nil {
			r.Use(middleware.RateLimit(opts.RateLimitStore, opts.RateLimitPerMin, opts.RateLimitWindow, logger))
		}
		r.Post("/v1/goals/validate", app.ValidateGoal)
		r.Post("/v1/flashcards", app.Flashcards)
		r.Post("/v1/quizzes", app.Quizzes)
		r.Post("/v1/concept-maps", app.ConceptMaps)
		r.Post("/v1/explanations", app.Explanations)
		r.Post("/v1/explanations/analysis", app.ExplanationAnalysis)
		r.Post("/v1/engagement", app.Engagement)
		r.Post("/v1/pomodoro-recommendations", app.PomodoroRecommendations)
		r.Post("/v1/tutor", app.Tutor)
		r.Route("/v1/videos", func(r chi.Router) {
			r.Post("/", app.CreateVideo)
			r.Get("/connection", app.VideoConnection)
		})
	})

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Get("/", app.ListSessions)
		r.Post("/", app.CreateSession)
		r.Get("/{id}", app.GetSession)
		r.Delete("/{id}", app.DeleteSession)
	})

	return r
}
