package auth

import (
	"log/slog"
	"net/http"

	"github.com/rhuss/portier/pkg/api"
	"github.com/rhuss/portier/pkg/debug"
	"github.com/rhuss/portier/pkg/observability"
	"github.com/rhuss/portier/pkg/transport"
)

// Middleware creates HTTP middleware enforcing scheme on every path the
// exclusion list does not exempt.
//
// A request without credential material is answered with 401. A request
// whose credentials do not resolve to a user is answered with 403. The
// body is identical for every failure stage. On success the user is stored
// in the request context (see UserFromContext). A nil scheme disables
// authentication.
func Middleware(scheme Scheme, excludedPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if scheme == nil {
			return next
		}
		name := scheme.Name()

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !scheme.RequiresAuth(r.URL.Path, excludedPaths) {
				observability.AuthDecisionsTotal.WithLabelValues(name, observability.OutcomeExcluded).Inc()
				debug.Trace("auth", "path excluded", "scheme", name, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := scheme.Credentials(r); !ok {
				observability.AuthDecisionsTotal.WithLabelValues(name, observability.OutcomeMissing).Inc()
				debug.Log("auth", "no credentials", "scheme", name, "path", r.URL.Path)
				transport.WriteAPIError(w, api.NewUnauthorizedError())
				return
			}

			user := scheme.CurrentUser(r.Context(), r)
			if user == nil {
				observability.AuthDecisionsTotal.WithLabelValues(name, observability.OutcomeRejected).Inc()
				slog.Warn("authentication failed",
					"scheme", name,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				transport.WriteAPIError(w, api.NewForbiddenError())
				return
			}

			observability.AuthDecisionsTotal.WithLabelValues(name, observability.OutcomeResolved).Inc()
			slog.Debug("authentication succeeded",
				"scheme", name,
				"user_id", user.ID,
				"path", r.URL.Path,
			)

			next.ServeHTTP(w, r.WithContext(SetUser(r.Context(), user)))
		})
	}
}

// DefaultExcludedPaths lists paths that skip authentication.
var DefaultExcludedPaths = []string{
	"/api/v1/status/",
	"/api/v1/unauthorized/",
	"/api/v1/forbidden/",
	"/healthz",
	"/metrics",
}
