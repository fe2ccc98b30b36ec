package middleware

import (
	"net/http"
	"runtime/debug"

	apperrors "roomallot/pkg/errors"
	httputil "roomallot/pkg/http"
	"roomallot/pkg/logger"
)

// Recovery turns a panic into a 500. observer may be nil.
func Recovery(log *logger.Logger, observer PanicObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if observer != nil {
						observer.PanicRecovered()
					}
					log.Error("Panic recovered",
						"request_id", RequestIDFromContext(r.Context()),
						"error", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					if err := httputil.WriteError(w, apperrors.Internal("panic while serving request", nil)); err != nil {
						log.Error("failed to write error response", "middleware", "Recovery", "error", err)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
