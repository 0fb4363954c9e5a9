package http

import (
	"net/http"
	"time"

	"cricket-quiz-service/internal/app"
	"cricket-quiz-service/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps are the use cases exposed over HTTP.
type RouterDeps struct {
	Quizzes        app.QuizFetcher
	Analyzer       Analyzer
	Facts          FactSource
	Moderation     *app.ModerationService
	Attempts       app.AttemptStore
	Ads            app.InterstitialResolver
	WS             *WSHandler
	Identity       auth.IdentityProvider
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter mounts the REST API and the websocket endpoint.
func NewRouter(d RouterDeps) http.Handler {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if d.WS != nil {
		r.Get("/ws", d.WS.ServeWS)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(d.RequestTimeout))
		if d.Identity != nil {
			api.Use(auth.Optional(d.Identity))
		}

		api.Post("/analysis", AnalysisHandler(d.Analyzer))
		api.Get("/facts", FactsHandler(d.Facts))
		api.Get("/ads/interstitial", InterstitialHandler(d.Ads))

		api.Group(func(pr chi.Router) {
			pr.Use(requireIdentity(d.Identity))
			pr.Get("/quiz", QuizHandler(d.Quizzes))
			pr.Get("/history", HistoryHandler(d.Attempts))
			pr.Post("/reports", ReportHandler(d.Moderation))
			pr.Post("/contributions", ContributionHandler(d.Moderation))
		})
	})
	return r
}

// requireIdentity rejects anonymous callers. Without an identity provider
// every protected route is unavailable.
func requireIdentity(provider auth.IdentityProvider) func(http.Handler) http.Handler {
	if provider == nil {
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, http.StatusUnauthorized, errResp{Error: "authentication not configured"})
			})
		}
	}
	return auth.Require(provider)
}
