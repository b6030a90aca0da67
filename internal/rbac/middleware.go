package rbac

import (
	"log/slog"
	"net/http"

	"github.com/gradebook/gradebook/internal/platform/httpx"
	"github.com/gradebook/gradebook/internal/shared"
)

// Middleware wires role gates for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// Require lets the request through only when the session passes gate.
// Anonymous requests get 401, sessions without an accepted role get 403.
func (m Middleware) Require(gate Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			d := CheckRole(sess, gate)
			if d.Allow {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil && sess != nil {
				m.Logger.Debug("role gate denied",
					slog.String("subject", sess.Subject),
					slog.String("path", r.URL.Path),
					slog.String("reason", string(d.Reason)))
			}
			httpx.RespondError(w, m.Logger, d.Err())
		})
	}
}
