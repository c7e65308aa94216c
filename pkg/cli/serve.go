package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/warden/pkg/async"
	"github.com/platinummonkey/warden/pkg/config"
	"github.com/platinummonkey/warden/pkg/console"
	"github.com/platinummonkey/warden/pkg/directory"
	"github.com/platinummonkey/warden/pkg/httputil"
	"github.com/platinummonkey/warden/pkg/notify"
	"github.com/platinummonkey/warden/pkg/observability"
	"github.com/platinummonkey/warden/pkg/session"
	"github.com/platinummonkey/warden/pkg/tokenstore"
)

func newServeCommand() *Command {
	cmd := &Command{
		Name:        "serve",
		Description: "Run the operator console and metrics endpoint",
		Flags:       flag.NewFlagSet("serve", flag.ContinueOnError),
		Run:         runServe,
	}

	cmd.Flags.String("addr", "", "Console listen address (default $WARDEN_CONSOLE_HOST:$WARDEN_CONSOLE_PORT)")
	cmd.Flags.String("metrics-addr", "", "Metrics listen address (default $WARDEN_CONSOLE_HOST:$WARDEN_METRICS_PORT)")
	addCommonFlags(cmd.Flags)

	return cmd
}

func runServe(args []string) error {
	cmd := newServeCommand()
	if err := cmd.Flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd.Flags, "")
	if err != nil {
		return err
	}
	addr := cfg.Console.Addr()
	if v := cmd.Flags.Lookup("addr").Value.String(); v != "" {
		addr = v
	}
	metricsAddr := cfg.Console.MetricsAddr()
	if v := cmd.Flags.Lookup("metrics-addr").Value.String(); v != "" {
		metricsAddr = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Providers must be global before the manager and clients pick up tracers
	logger := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stderr)
	providers, err := observability.InitOTel(ctx, cfg.Observability.OTel, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Console.ShutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("failed to shut down OpenTelemetry")
		}
	}()

	hub := notify.NewHub()
	defer hub.Close()
	redirects := console.NewRedirects()

	e, err := newEnv(ctx, cfg, logger,
		session.WithNotifier(notify.Multi(hub, notify.LogSink{Logger: logger})),
		session.WithNavigator(redirects),
	)
	if err != nil {
		return err
	}
	defer e.Close()
	async.SetLogger(logger)

	health := observability.NewHealthChecker(cfg.Observability.OTel.ServiceVersion)
	health.Register("token_store", true, e.tokens.Ping)

	if err := e.manager.RestoreSession(ctx); err != nil {
		e.logger.WithError(err).Debug("no session restored")
	}

	srv := console.NewServer(console.Options{
		Manager:   e.manager,
		Client:    e.client,
		Catalog:   directory.NewCachedCatalog(e.client, cfg.Directory.CacheSize, cfg.Directory.CacheTTL, e.metrics),
		Hub:       hub,
		Health:    health,
		Metrics:   e.metrics,
		Logger:    e.logger,
		Redirects: redirects,

		LoginLimiter: httputil.NewRateLimiter(cfg.Console.LoginRatePerMinute, cfg.Console.LoginBurst),
	})
	defer srv.Close()

	consoleServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Console.ReadTimeout,
		WriteTimeout: cfg.Console.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e.logger.WithField("addr", addr).Info("console listening")
		return listen(consoleServer)
	})

	var metricsServer *http.Server
	if cfg.Observability.MetricsEnabled {
		metricsServer = &http.Server{
			Addr:    metricsAddr,
			Handler: observability.MetricsHandler(e.registry),
		}
		g.Go(func() error {
			e.logger.WithField("addr", metricsAddr).Info("metrics listening")
			return listen(metricsServer)
		})
	}

	if cfg.TokenStore.Backend == config.BackendFile {
		g.Go(func() error {
			if err := tokenstore.WatchFile(gctx, cfg.TokenStore.FilePath, e.logger, restoreOnTokenChange(gctx, e)); err != nil {
				e.logger.WithError(err).Warn("token file watcher stopped")
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		e.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Console.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := consoleServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("console shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}

func listen(s *http.Server) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve on %s: %w", s.Addr, err)
	}
	return nil
}

// restoreOnTokenChange picks up a login made by another warden process while
// the console is signed out
func restoreOnTokenChange(ctx context.Context, e *env) func(fsnotify.Op) {
	return func(op fsnotify.Op) {
		if op&(fsnotify.Create|fsnotify.Write) == 0 || e.manager.IsAuthenticated() {
			return
		}
		async.SafeGo(ctx, session.DefaultBackgroundTimeout, "restore session from token file", func(ctx context.Context) error {
			if err := e.manager.RestoreSession(ctx); err != nil {
				return err
			}
			e.logger.WithField("username", e.manager.CurrentUser().Username).Info("session picked up from token file")
			return nil
		})
	}
}
