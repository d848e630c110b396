package observability

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bookshelf-labs/bookshelf-api/internal/config"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func recordEveryMetric(ctx context.Context) {
	RecordAuthRequest(ctx, "sign_in", "success", 10*time.Millisecond)
	RecordPasswordHashDuration(ctx, "verify", 5*time.Millisecond)
	RecordAccessTokenValidation(ctx, "valid")
	RecordCatalogOperation(ctx, "book", "create", "success", 3*time.Millisecond)
	RecordCatalogPageSize(ctx, "book", 10)
	RecordRepositoryOperation(ctx, "user", "find_by_email", "success")
	RecordListCacheEvent(ctx, "books", "hit")
	RecordRateLimitDecision(ctx, "auth", "allow", "local")
	RecordRateLimitRetryAfter(ctx, "auth", time.Second)
	RecordBodyLimitRejection(ctx, "/book")
	RecordStorageOperation(ctx, "upload_cover", "success")
	RecordStorageUploadBytes(ctx, "image/png", 2048)
	RecordHealthCheckResult(ctx, "db", "ready")
	RecordHealthCheckDuration(ctx, "db", 5*time.Millisecond)
	RecordDatabaseStartupEvent(ctx, "connect", "success")
	RecordDatabaseStartupDuration(ctx, "migrate", 15*time.Millisecond)
	RecordToolCommandRun(ctx, "migrate", "up", "success")
	RecordToolCommandDuration(ctx, "seed", "apply", "success", 30*time.Millisecond)
	RecordLoadgenRequest(ctx, "2xx", "browse")
}

func TestRecordMetricHelpersNoPanicWhenUninitialized(t *testing.T) {
	metricsMu.Lock()
	appMetrics = nil
	metricsMu.Unlock()

	recordEveryMetric(context.Background())
}

func TestRecordMetricHelpersEmitExpectedLabelCardinality(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	m, err := newAppMetrics(provider.Meter("observability-test"))
	if err != nil {
		t.Fatalf("new app metrics: %v", err)
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()
	defer func() {
		metricsMu.Lock()
		appMetrics = nil
		metricsMu.Unlock()
	}()

	recordEveryMetric(ctx)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}

	expected := map[string]int{
		"auth.requests":                       2,
		"auth.request.duration":               2,
		"auth.password_hash.duration":         1,
		"auth.access_token.validation.events": 1,
		"catalog.operation.events":            3,
		"catalog.operation.duration":          3,
		"catalog.list.page_size":              1,
		"repository.operations":               3,
		"catalog.list.cache.events":           2,
		"http.rate_limit.decisions":           3,
		"http.rate_limit.retry_after":         1,
		"http.request.body_limit.rejections":  1,
		"storage.operations":                  2,
		"storage.upload.bytes":                1,
		"health.check.results":                2,
		"health.check.duration":               1,
		"database.startup.events":             2,
		"database.startup.duration":           1,
		"tool.command.runs":                   3,
		"tool.command.duration":               3,
		"loadgen.requests":                    2,
	}

	observed := collectLabelCardinality(t, rm)
	for metricName, want := range expected {
		got, ok := observed[metricName]
		if !ok {
			t.Fatalf("missing metric datapoint for %s", metricName)
		}
		if got != want {
			t.Fatalf("metric %s label cardinality mismatch: got=%d want=%d", metricName, got, want)
		}
	}
}

func TestInitMetricsDisabledReturnsProvider(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{OTELMetricsEnabled: false}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("init metrics disabled: %v", err)
	}
	if mp == nil {
		t.Fatal("expected non-nil meter provider")
	}
	_ = mp.Shutdown(ctx)
}

func collectLabelCardinality(t *testing.T, rm metricdata.ResourceMetrics) map[string]int {
	t.Helper()
	out := map[string]int{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if len(data.DataPoints) > 0 {
					out[m.Name] = data.DataPoints[0].Attributes.Len()
				}
			case metricdata.Sum[float64]:
				if len(data.DataPoints) > 0 {
					out[m.Name] = data.DataPoints[0].Attributes.Len()
				}
			case metricdata.Histogram[int64]:
				if len(data.DataPoints) > 0 {
					out[m.Name] = data.DataPoints[0].Attributes.Len()
				}
			case metricdata.Histogram[float64]:
				if len(data.DataPoints) > 0 {
					out[m.Name] = data.DataPoints[0].Attributes.Len()
				}
			}
		}
	}
	return out
}
