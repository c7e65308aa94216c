package console

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/warden/pkg/directory"
	"github.com/platinummonkey/warden/pkg/guard"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/notify"
	"github.com/platinummonkey/warden/pkg/observability"
	"github.com/platinummonkey/warden/pkg/session"
)

// Options are the console's collaborators. Manager and Client are required;
// the Manager should navigate through Redirects so the console can report
// where the operator was sent.
type Options struct {
	Manager   *session.Manager
	Client    *directory.Client
	Catalog   *directory.CachedCatalog
	Hub       *notify.Hub
	Health    *observability.HealthChecker
	Metrics   *observability.Metrics
	Logger    *logrus.Logger
	Redirects *Redirects

	// LoginLimiter throttles POST /auth/login per client; nil disables it
	LoginLimiter *httputil.RateLimiter
}

// Server is the operator console
type Server struct {
	router    *mux.Router
	manager   *session.Manager
	client    *directory.Client
	catalog   *directory.CachedCatalog
	hub       *notify.Hub
	health    *observability.HealthChecker
	metrics   *observability.Metrics
	logger    *logrus.Logger
	redirects *Redirects
	registry  *guard.Registry
	limiter   *httputil.RateLimiter

	unsubscribe func()
}

// NewServer creates the console and registers its routes
func NewServer(opts Options) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		manager:   opts.Manager,
		client:    opts.Client,
		catalog:   opts.Catalog,
		hub:       opts.Hub,
		health:    opts.Health,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		redirects: opts.Redirects,
		registry:  guard.NewRegistry(),
		limiter:   opts.LoginLimiter,
	}
	if s.logger == nil {
		s.logger = logrus.StandardLogger()
	}
	if s.hub == nil {
		s.hub = notify.NewHub()
	}
	if s.redirects == nil {
		s.redirects = NewRedirects()
	}
	if s.catalog == nil {
		s.catalog = directory.NewCachedCatalog(s.client, 0, 5*time.Minute, s.metrics)
	}
	if s.health == nil {
		s.health = observability.NewHealthChecker("")
	}
	s.health.Register("directory", true, s.client.Ping)

	s.unsubscribe = s.manager.Subscribe(s.purgeOnIdentityChange())
	s.setupRoutes()
	return s
}

// Router exposes the route table
func (s *Server) Router() *mux.Router {
	return s.router
}

// Registry exposes the guarded route requirements
func (s *Server) Registry() *guard.Registry {
	return s.registry
}

// Handler returns the console handler with request IDs, logging, panic
// recovery and tracing applied
func (s *Server) Handler() http.Handler {
	chain := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.RecoveryMiddleware(s.logger),
	)
	return otelhttp.NewHandler(chain(s.router), "warden.console")
}

// Close detaches the console from the session
func (s *Server) Close() {
	s.unsubscribe()
}

func (s *Server) setupRoutes() {
	s.router.Use(s.metricsMiddleware)
	s.router.Use(guard.NewMiddleware(s.registry, s.manager.Store(), s.metrics, s.logger).Handler)

	// Public routes
	s.router.HandleFunc("/auth/login", s.loginPage).Methods(http.MethodGet).Name("auth.login.page")
	s.router.Handle("/auth/login", s.limiter.Middleware(MsgTooManyAttempts)(http.HandlerFunc(s.login))).Methods(http.MethodPost).Name("auth.login")
	s.router.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost).Name("auth.logout")
	s.router.HandleFunc("/auth/session", s.sessionInfo).Methods(http.MethodGet).Name("auth.session")
	s.router.HandleFunc("/unauthorized", s.unauthorized).Methods(http.MethodGet).Name("unauthorized")
	s.router.HandleFunc("/notifications", s.listNotifications).Methods(http.MethodGet).Name("notifications")
	s.router.HandleFunc("/notifications/{id}", s.dismissNotification).Methods(http.MethodDelete).Name("notifications.dismiss")
	s.router.HandleFunc("/healthz", s.health.Liveness).Methods(http.MethodGet).Name("healthz")
	s.router.HandleFunc("/readyz", s.health.Readiness).Methods(http.MethodGet).Name("readyz")

	s.registerAdminRoutes()
}

// purgeOnIdentityChange drops cached catalogs when the signed-in user changes
func (s *Server) purgeOnIdentityChange() session.Listener {
	var lastUserID int64 = -1
	return func(next session.Session) {
		id := int64(-1)
		if next.User != nil {
			id = next.User.ID
		}
		if id != lastUserID {
			s.catalog.Purge()
			lastUserID = id
		}
	}
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := httputil.WrapResponseWriter(w)
		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		s.metrics.RecordHTTPRequest(r.Method, route, rw.StatusCode(), time.Since(start))
	})
}

func (s *Server) entry(ctx context.Context) *logrus.Entry {
	return observability.EntryFromContext(ctx, s.logger)
}
