package httputil

import (
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sectorlock/pkg/observability"
)

// Logger returns middleware that logs every request at debug level and
// every 5xx response at error level. Requests are reported to the HTTP
// hooks under their route pattern, so "/api/v1/sessions/{id}" is counted
// once rather than once per session.
func Logger(logger *log.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)
			next.ServeHTTP(ww, r)

			path := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			d := time.Since(start)
			observability.HTTP().OnResponse(ctx, r.Method, path, status, d)

			kv := []any{"status", status, "path", r.URL.Path, "took", d.Round(time.Microsecond),
				"bytes", ww.BytesWritten()}
			if id := middleware.GetReqID(ctx); id != "" {
				kv = append(kv, "request", id)
			}
			if status >= http.StatusInternalServerError {
				observability.HTTP().OnError(ctx, r.Method, path, fmt.Errorf("status %d", status))
				logger.Error(r.Method, kv...)
				return
			}
			logger.Debug(r.Method, kv...)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
