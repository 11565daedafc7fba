package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/concoro/concoro-platform/platform/go/auth"
	"github.com/concoro/concoro-platform/platform/go/logging"
	"github.com/concoro/concoro-platform/platform/go/requesttrace"
)

// RequestTrace stores an AuditInfo on the context and tags the request logger with it.
// It runs after auth.Authenticate so the principal is available.
func RequestTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())

		audit := requesttrace.Anonymous(requestID)
		if p, ok := auth.PrincipalFromContext(r.Context()); ok {
			if built, err := requesttrace.FromPrincipal(p, requestID); err == nil {
				audit = built
			}
		}

		ctx := requesttrace.IntoContext(r.Context(), audit)
		logger := logging.FromContext(ctx, nil).With(audit.Fields()...)
		ctx = logging.WithLogger(ctx, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
