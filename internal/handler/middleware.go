package handler

import (
	"net/http"
	"strconv"
	"time"

	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger attaches a request id to the context and response, then
// logs and counts the request once it is served. Metrics use the route
// pattern, not the raw path, to keep label cardinality bounded.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" || len(reqID) > 64 {
				reqID = logging.GenerateRequestID()
			}
			w.Header().Set(requestIDHeader, reqID)
			r = r.WithContext(logging.ContextWithRequestID(r.Context(), reqID))

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			dur := time.Since(start)
			metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), dur)

			ev := logging.Ctx(r.Context()).Info()
			if status >= 500 {
				ev = logging.Ctx(r.Context()).Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", dur).
				Str("remote", r.RemoteAddr).
				Msg("[http] request")
		})
	}
}

// RateLimit limits requests per client IP. A non-positive limit disables it.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeStatus(w, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down")
		}),
	)
}
