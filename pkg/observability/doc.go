// Package observability provides logging, Prometheus metrics, OpenTelemetry
// setup and health probes for warden.
//
// # Logging
//
// Loggers are plain logrus loggers:
//
//	logger := observability.NewLogger("debug", "text", os.Stderr)
//	observability.EntryFromContext(ctx, logger).Info("login succeeded")
//
// EntryFromContext attaches the request ID, operator username and active trace IDs.
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.RecordLogin(observability.StatusSuccess)
//	http.Handle("/metrics", observability.MetricsHandler(registry))
//
// All Record* methods are safe on a nil *Metrics so components can run without
// instrumentation.
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, cfg, logger)
//	defer providers.Shutdown(ctx)
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(version)
//	checker.Register("token_store", true, store.Ping)
//	router.HandleFunc("/readyz", checker.Readiness)
package observability
