package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
	"go.opentelemetry.io/otel/sdk/resource"
)

const instrumentationName = "github.com/bookshelf-labs/bookshelf-api"

type AppMetrics struct {
	authRequestCounter        metric.Int64Counter
	authRequestDuration       metric.Float64Histogram
	passwordHashDuration      metric.Float64Histogram
	tokenValidationCounter    metric.Int64Counter
	signInGuardCounter        metric.Int64Counter
	catalogOperationCounter   metric.Int64Counter
	catalogOperationDuration  metric.Float64Histogram
	catalogPageSize           metric.Float64Histogram
	repositoryOpsCounter      metric.Int64Counter
	listCacheCounter          metric.Int64Counter
	rateLimitDecisionCounter  metric.Int64Counter
	rateLimitRetryAfter       metric.Float64Histogram
	bodyLimitRejectionCounter metric.Int64Counter
	storageOperationCounter   metric.Int64Counter
	storageUploadBytes        metric.Float64Histogram
	healthCheckResultCounter  metric.Int64Counter
	healthCheckDuration       metric.Float64Histogram
	databaseStartupCounter    metric.Int64Counter
	databaseStartupDuration   metric.Float64Histogram
	toolCommandRuns           metric.Int64Counter
	toolCommandDuration       metric.Float64Histogram
	loadgenRequestsCounter    metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	latencyBuckets := sdkmetric.Stream{
		Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
			Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	}
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(
			sdkmetric.NewView(sdkmetric.Instrument{Name: "auth.request.duration"}, latencyBuckets),
			sdkmetric.NewView(sdkmetric.Instrument{Name: "catalog.operation.duration"}, latencyBuckets),
		),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var firstErr error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("create counter %s: %w", name, err)
		}
		return c
	}
	hist := func(name, unit, desc string) metric.Float64Histogram {
		opts := []metric.Float64HistogramOption{metric.WithDescription(desc)}
		if unit != "" {
			opts = append(opts, metric.WithUnit(unit))
		}
		h, err := meter.Float64Histogram(name, opts...)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("create histogram %s: %w", name, err)
		}
		return h
	}

	m := &AppMetrics{
		authRequestCounter:        counter("auth.requests", "Sign-in and sign-up attempts by outcome"),
		authRequestDuration:       hist("auth.request.duration", "s", "Duration of auth operations in seconds"),
		passwordHashDuration:      hist("auth.password_hash.duration", "s", "Duration of password hash and verify calls"),
		tokenValidationCounter:    counter("auth.access_token.validation.events", "Bearer token validation results"),
		signInGuardCounter:        counter("auth.sign_in_guard.events", "Sign-in backoff decisions and failures"),
		catalogOperationCounter:   counter("catalog.operation.events", "Author and book operations by outcome"),
		catalogOperationDuration:  hist("catalog.operation.duration", "s", "Duration of author and book operations"),
		catalogPageSize:           hist("catalog.list.page_size", "", "Requested page size for list endpoints"),
		repositoryOpsCounter:      counter("repository.operations", "Repository calls by outcome"),
		listCacheCounter:          counter("catalog.list.cache.events", "List cache hits, misses and failures"),
		rateLimitDecisionCounter:  counter("http.rate_limit.decisions", "Rate limiter decisions"),
		rateLimitRetryAfter:       hist("http.rate_limit.retry_after", "s", "Retry-after returned to throttled clients"),
		bodyLimitRejectionCounter: counter("http.request.body_limit.rejections", "Requests rejected for oversize bodies"),
		storageOperationCounter:   counter("storage.operations", "Object storage calls by outcome"),
		storageUploadBytes:        hist("storage.upload.bytes", "By", "Size of uploaded cover images"),
		healthCheckResultCounter:  counter("health.check.results", "Readiness dependency check results"),
		healthCheckDuration:       hist("health.check.duration", "s", "Duration of readiness dependency checks"),
		databaseStartupCounter:    counter("database.startup.events", "Database connect, migrate and seed results"),
		databaseStartupDuration:   hist("database.startup.duration", "s", "Duration of database startup stages"),
		toolCommandRuns:           counter("tool.command.runs", "CLI tool command runs"),
		toolCommandDuration:       hist("tool.command.duration", "s", "CLI tool command duration"),
		loadgenRequestsCounter:    counter("loadgen.requests", "Load generator requests by status class"),
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}

func currentMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordAuthRequest(ctx context.Context, operation, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.authRequestCounter.Add(ctx, 1, attrs)
	m.authRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordPasswordHashDuration(ctx context.Context, operation string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.passwordHashDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("operation", operation)))
}

func RecordAccessTokenValidation(ctx context.Context, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.tokenValidationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordCatalogOperation(ctx context.Context, resource, operation, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("resource", resource),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.catalogOperationCounter.Add(ctx, 1, attrs)
	m.catalogOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordCatalogPageSize(ctx context.Context, resource string, pageSize int) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.catalogPageSize.Record(ctx, float64(pageSize), metric.WithAttributes(attribute.String("resource", resource)))
}

func RecordRepositoryOperation(ctx context.Context, repository, operation, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.repositoryOpsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repository", repository),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordListCacheEvent(ctx context.Context, namespace, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.listCacheCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", namespace),
		attribute.String("outcome", outcome),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome, mode string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
		attribute.String("mode", mode),
	))
}

func RecordRateLimitRetryAfter(ctx context.Context, scope string, retryAfter time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.rateLimitRetryAfter.Record(ctx, retryAfter.Seconds(), metric.WithAttributes(attribute.String("scope", scope)))
}

func RecordBodyLimitRejection(ctx context.Context, route string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.bodyLimitRejectionCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}

func RecordStorageOperation(ctx context.Context, operation, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.storageOperationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordStorageUploadBytes(ctx context.Context, contentType string, size int64) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.storageUploadBytes.Record(ctx, float64(size), metric.WithAttributes(attribute.String("content_type", contentType)))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("check", check)))
}

func RecordDatabaseStartupEvent(ctx context.Context, stage, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.databaseStartupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	))
}

func RecordDatabaseStartupDuration(ctx context.Context, stage string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.databaseStartupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("stage", stage)))
}

func RecordSignInGuardEvent(ctx context.Context, event string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.signInGuardCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

func RecordToolCommandRun(ctx context.Context, tool, command, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.toolCommandRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func RecordToolCommandDuration(ctx context.Context, tool, command, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.toolCommandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func RecordLoadgenRequest(ctx context.Context, statusClass, scenario string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.loadgenRequestsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status_class", statusClass),
		attribute.String("scenario", scenario),
	))
}

func newResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
}
