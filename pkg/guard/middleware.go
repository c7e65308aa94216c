package guard

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/warden/pkg/contextkeys"
	"github.com/platinummonkey/warden/pkg/observability"
)

// Guard names used in decision metrics
const (
	GuardAuth       = "auth"
	GuardPermission = "permission"
)

// Middleware enforces registered requirements on matched routes.
// Routes missing from the registry pass through.
type Middleware struct {
	registry *Registry
	sessions SessionSource
	metrics  *observability.Metrics
	logger   *logrus.Logger
}

// NewMiddleware creates the guard middleware
func NewMiddleware(registry *Registry, sessions SessionSource, metrics *observability.Metrics, logger *logrus.Logger) *Middleware {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Middleware{
		registry: registry,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handler wraps next with the guard check
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := mux.CurrentRoute(r)
		if current == nil {
			next.ServeHTTP(w, r)
			return
		}
		route, ok := m.registry.Lookup(current.GetName())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		guardName := GuardAuth
		if !route.Requirement.IsZero() {
			guardName = GuardPermission
		}

		snap := m.sessions.Current()
		outcome := Evaluate(snap, route.Requirement)
		m.metrics.RecordGuardDecision(guardName, outcome.String())

		ctx := contextkeys.WithRouteName(r.Context(), route.Name)
		if outcome.Allowed() {
			if snap.User != nil {
				ctx = contextkeys.WithUsername(ctx, snap.User.Username)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		observability.EntryFromContext(ctx, m.logger).WithFields(logrus.Fields{
			"requirement": route.Requirement.String(),
			"redirect":    outcome.Destination(),
		}).Debug("navigation denied")

		http.Redirect(w, r, outcome.Destination(), http.StatusFound)
	})
}
