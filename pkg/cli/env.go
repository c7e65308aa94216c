package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/platinummonkey/warden/pkg/config"
	"github.com/platinummonkey/warden/pkg/directory"
	"github.com/platinummonkey/warden/pkg/notify"
	"github.com/platinummonkey/warden/pkg/observability"
	"github.com/platinummonkey/warden/pkg/session"
	"github.com/platinummonkey/warden/pkg/tokenstore"
)

// The Directory client must satisfy what the session manager needs
var _ session.Directory = (*directory.Client)(nil)

// env is everything a command needs to talk to the Directory as the
// signed-in operator
type env struct {
	cfg      *config.Config
	logger   *logrus.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	tokens   tokenstore.Store
	manager  *session.Manager
	client   *directory.Client
}

// addCommonFlags registers the overrides every command accepts
func addCommonFlags(fs *flag.FlagSet) {
	fs.String("api-url", "", "Directory API URL (default $WARDEN_API_URL)")
	fs.String("token-store", "", "Token store backend: file, redis, sql or memory (default $WARDEN_TOKEN_STORE)")
	fs.String("log-level", "", "Log level (default warn, or $WARDEN_LOG_LEVEL for serve)")
}

// loadConfig reads the environment and applies the command's flag overrides
func loadConfig(fs *flag.FlagSet, defaultLogLevel string) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if v := fs.Lookup("api-url").Value.String(); v != "" {
		cfg.Directory.APIURL = v
	}
	if v := fs.Lookup("token-store").Value.String(); v != "" {
		cfg.TokenStore.Backend = v
	}
	switch v := fs.Lookup("log-level").Value.String(); {
	case v != "":
		cfg.Observability.LogLevel = v
	case defaultLogLevel != "" && os.Getenv("WARDEN_LOG_LEVEL") == "":
		cfg.Observability.LogLevel = defaultLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// newEnv wires the token store, Directory clients and session manager.
// A nil logger is built from cfg. Extra options are applied after the defaults.
func newEnv(ctx context.Context, cfg *config.Config, logger *logrus.Logger, opts ...session.Option) (*env, error) {
	if logger == nil {
		logger = observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stderr)
	}
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	tokens, err := tokenstore.Open(ctx, cfg.TokenStore, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %w", err)
	}

	instruments, err := observability.NewSessionInstruments(otel.Meter(observability.InstrumentationName))
	if err != nil {
		tokens.Close()
		return nil, fmt.Errorf("failed to create session instruments: %w", err)
	}

	authClient := directory.NewClient(cfg.Directory.APIURL, directory.WithTimeout(cfg.Directory.Timeout))

	defaults := []session.Option{
		session.WithLeeway(cfg.Session.RefreshLeeway),
		session.WithMetrics(metrics),
		session.WithInstruments(instruments),
		session.WithNotifier(notify.LogSink{Logger: logger}),
		session.WithNavigator(session.NavigatorFunc(func(path string) {
			logger.WithField("path", path).Debug("navigate")
		})),
	}
	manager := session.NewManager(authClient, tokens, logger, append(defaults, opts...)...)

	return &env{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics,
		tokens:   tokens,
		manager:  manager,
		client:   directory.NewClientFromConfig(cfg.Directory, manager.TokenSource()),
	}, nil
}

// restore brings back the persisted session and fails when there is none
func (e *env) restore(ctx context.Context) error {
	if err := e.manager.RestoreSession(ctx); err != nil {
		e.logger.WithError(err).Debug("restore failed")
	}
	if !e.manager.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}

func (e *env) Close() {
	e.manager.Close()
	if err := e.tokens.Close(); err != nil {
		e.logger.WithError(err).Warn("failed to close token store")
	}
}
