package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"vendorguard/pkg/logger"
)

// slowRequestThreshold flags assessments that took unusually long; the full
// analyzer fan-out is bounded well below this by the per-analyzer timeout.
const slowRequestThreshold = 5 * time.Second

// probePaths are polled constantly by orchestration; logging them at info
// would drown the assessment traffic.
var probePaths = map[string]bool{
	"/health": true,
	"/ready":  true,
}

// Logger returns a middleware that logs requests, leveled by outcome
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	l := log.WithComponent("http")
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				duration := time.Since(start)

				event := l.Info()
				switch {
				case ww.Status() >= http.StatusInternalServerError:
					event = l.Error()
				case duration > slowRequestThreshold:
					event = l.Warn()
				case probePaths[r.URL.Path]:
					event = l.Debug()
				}

				event.
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", duration).
					Str("request_id", middleware.GetReqID(r.Context())).
					Msg("request completed")
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
