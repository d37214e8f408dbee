package middleware

import (
	"net/http"
	"time"

	"github.com/MonkyMars/gecho"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// SetupLoggerMiddleware logs every request through gecho. The event stream
// stays open for the whole session, so it is logged once when it ends and
// keeps the unwrapped writer it needs for flushing.
func (mw *Middleware) SetupLoggerMiddleware() func(http.Handler) http.Handler {
	logRequest := gecho.Handlers.CreateLoggingMiddleware(mw.logger)

	return func(next http.Handler) http.Handler {
		logged := logRequest(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/events" {
				logged.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			next.ServeHTTP(w, r)
			mw.logger.Info("Event stream closed",
				gecho.Field("request_id", chimw.GetReqID(r.Context())),
				gecho.Field("remote_addr", r.RemoteAddr),
				gecho.Field("duration", time.Since(start)),
			)
		})
	}
}
