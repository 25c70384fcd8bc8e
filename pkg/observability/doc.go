// Package observability provides structured logging, Prometheus metrics,
// OpenTelemetry tracing and the health and shutdown plumbing used by
// watch mode.
//
// # Structured Logging
//
//	logger, err := observability.NewLogger("debug", observability.FormatJSON, os.Stderr)
//	logger.WithField("file", path).Debug("parsed file")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.ObserveRun("clean", time.Since(start))
//
// All Metrics methods accept a nil receiver, so callers never need to
// check whether metrics are enabled.
//
// # OpenTelemetry
//
// Spans are created through the global tracer provider. Nothing is
// exported unless the embedding program installs an SDK provider.
//
//	ctx, span := observability.StartSpan(ctx, "protocheck.check")
//	defer observability.EndSpan(span, err)
//
// # Related Packages
//
//   - pkg/config: Environment configuration for log level, format and metrics address
//   - pkg/checker: Emits the metrics and spans
package observability
