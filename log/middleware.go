package log

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/rs/zerolog"
)

// LoggerMiddleware writes one access record per request and puts a request
// scoped logger into the context, reachable with zerolog.Ctx.
func LoggerMiddleware(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			reqLogger := IncludeRequest(*logger, r)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			defer func() {
				reqLogger.Debug().
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(started)).
					Msg("request served")
			}()

			next.ServeHTTP(ww, r.WithContext(reqLogger.WithContext(r.Context())))
		}
		return http.HandlerFunc(fn)
	}
}

// IncludeRequest returns a child logger annotated with the request metadata.
func IncludeRequest(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	return logger.With().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Logger()
}
