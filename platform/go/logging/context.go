package logging

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// CloudTraceHeader carries the trace id set by Google front ends.
const CloudTraceHeader = "X-Cloud-Trace-Context"

type ctxKey struct{}

// WithLogger stores logger on ctx.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored on ctx, or fallback. A nil fallback yields a no-op logger.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}

// RequestLogger scopes base to the request (id, method, route, trace), stores it on the
// context and logs completion. Health probes are logged at debug.
func RequestLogger(base *zap.Logger, projectID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			fields := []zap.Field{
				zap.String("http_method", r.Method),
				zap.String("path", r.URL.Path),
			}
			if id := middleware.GetReqID(r.Context()); id != "" {
				fields = append(fields, zap.String("request_id", id))
			}
			if trace := traceResource(projectID, r.Header.Get(CloudTraceHeader)); trace != "" {
				fields = append(fields, zap.String("logging.googleapis.com/trace", trace))
			}
			logger := base.With(fields...)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(WithLogger(r.Context(), logger)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.Info
			if isProbe(r.URL.Path) {
				log = logger.Debug
			}
			log("request completed",
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// traceResource turns "TRACE_ID/SPAN;o=1" into projects/<p>/traces/<TRACE_ID>.
func traceResource(projectID, header string) string {
	if projectID == "" || header == "" {
		return ""
	}
	traceID, _, _ := strings.Cut(header, "/")
	if traceID == "" {
		return ""
	}
	return "projects/" + projectID + "/traces/" + traceID
}

func isProbe(path string) bool {
	return path == "/healthz" || path == "/readyz"
}
