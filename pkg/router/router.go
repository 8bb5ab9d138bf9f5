package router

import (
	"net/http"

	gorillamux "github.com/gorilla/mux"
	"github.com/hazcod/pwcheck/pkg/apierr"
	"github.com/hazcod/pwcheck/pkg/middleware"
	"github.com/hazcod/pwcheck/pkg/service/health"
	"github.com/hazcod/pwcheck/pkg/service/password"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Breach       password.BreachChecker
	Wordlist     password.WordlistChecker
	MaxBodyBytes int64
	// CORSOrigins enables CORS for the listed origins; empty disables it.
	CORSOrigins []string
}

// New registers every endpoint and wraps the router in the middleware chain.
func New(logger *logrus.Logger, opts Options) http.Handler {
	mux := gorillamux.NewRouter()

	mux.Handle("/check_password", password.CheckComplexity(logger)).Methods(http.MethodPost)
	mux.Handle("/check_breach", password.CheckBreach(logger, opts.Breach)).Methods(http.MethodPost)
	mux.Handle("/check_rockyou", password.CheckWordlist(logger, opts.Wordlist)).Methods(http.MethodPost)
	mux.Handle("/health", health.HandleHealthCheck(logger)).Methods(http.MethodGet, http.MethodHead)

	mux.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierr.WriteJSON(logger, w, http.StatusNotFound, map[string]string{"error": "Not found"})
	})
	mux.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apierr.WriteJSON(logger, w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
	})

	var handler http.Handler = mux

	if len(opts.CORSOrigins) > 0 {
		logger.WithField("origins", opts.CORSOrigins).Info("enabling CORS")
		handler = cors.New(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		}).Handler(handler)
	}

	if opts.MaxBodyBytes > 0 {
		handler = middleware.BodyLimit(opts.MaxBodyBytes)(handler)
	}

	handler = middleware.Recovery(logger)(handler)
	handler = middleware.AccessLog(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
