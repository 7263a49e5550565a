package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// DefaultCORSOptions allows any origin, like an inbox UI served elsewhere
// expects. Preflights are answered with 204.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowedHeaders:       []string{"*"},
		ExposedHeaders:       []string{RequestIDHeader},
		OptionsSuccessStatus: http.StatusNoContent,
		MaxAge:               300,
	}
}

// CORSMiddleware must wrap the router so preflights for any route are
// handled before method matching.
func CORSMiddleware(options cors.Options) func(http.Handler) http.Handler {
	return cors.Handler(options)
}
