package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bookshelf-labs/bookshelf-api/internal/apperr"
	"github.com/bookshelf-labs/bookshelf-api/internal/health"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/handler"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/middleware"
	"github.com/bookshelf-labs/bookshelf-api/internal/http/response"
)

type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	AuthorHandler     *handler.AuthorHandler
	BookHandler       *handler.BookHandler
	Tokens            middleware.TokenParser
	CORSOrigins       []string
	AuthRateLimitRPM  int
	APIRateLimitRPM   int
	GlobalRateLimiter GlobalRateLimiterFunc
	AuthRateLimiter   AuthRateLimiterFunc
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type AuthRateLimiterFunc func(http.Handler) http.Handler

const (
	defaultBodyLimit = 1 << 20
	coverBodyLimit   = 6 << 20
)

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))

	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute, "auth").Middleware()
	}
	apiLimiter := dep.GlobalRateLimiter
	if apiLimiter == nil {
		apiLimiter = middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute, "api").Middleware()
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, apperr.NotFound("Cannot "+r.Method+" "+r.URL.Path))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health/live", http.StatusFound)
	})
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready, results := dep.Readiness.Ready(r.Context())
		if results == nil {
			results = []health.CheckResult{}
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "unready", http.StatusServiceUnavailable
		}
		response.JSON(w, r, code, map[string]any{"status": status, "checks": results})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.BodyLimit(defaultBodyLimit))
		r.Use(authLimiter)
		r.Post("/sign-in", dep.AuthHandler.SignIn)
		r.Post("/sign-up", dep.AuthHandler.SignUp)
	})

	r.Group(func(r chi.Router) {
		r.Use(apiLimiter)
		r.Use(middleware.AuthMiddleware(dep.Tokens))

		r.Route("/author", func(r chi.Router) {
			r.Use(middleware.BodyLimit(defaultBodyLimit))
			r.Post("/", dep.AuthorHandler.Create)
			r.Get("/", dep.AuthorHandler.List)
			r.Get("/{id}", dep.AuthorHandler.Get)
			r.Put("/{id}", dep.AuthorHandler.Update)
			r.Delete("/{id}", dep.AuthorHandler.Delete)
		})

		r.Route("/book", func(r chi.Router) {
			r.With(middleware.BodyLimit(defaultBodyLimit)).Post("/", dep.BookHandler.Create)
			r.Get("/", dep.BookHandler.List)
			r.Get("/{id}", dep.BookHandler.Get)
			r.With(middleware.BodyLimit(defaultBodyLimit)).Put("/{id}", dep.BookHandler.Update)
			r.Delete("/{id}", dep.BookHandler.Delete)
			// Cover uploads carry up to 5MB of image plus multipart framing.
			r.With(middleware.BodyLimit(coverBodyLimit)).Put("/{id}/cover", dep.BookHandler.UploadCover)
			r.Get("/{id}/cover", dep.BookHandler.Cover)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
