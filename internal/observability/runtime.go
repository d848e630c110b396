package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookshelf-labs/bookshelf-api/internal/config"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime owns the OpenTelemetry providers for the process lifetime.
type Runtime struct {
	LoggerProvider *sdklog.LoggerProvider
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
}

func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}
	var err error
	if rt.LoggerProvider, err = InitLogs(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if rt.MeterProvider, err = InitMetrics(ctx, cfg, logger); err != nil {
		return nil, errors.Join(err, rt.Shutdown(ctx))
	}
	if rt.TracerProvider, err = InitTracing(ctx, cfg, logger); err != nil {
		return nil, errors.Join(err, rt.Shutdown(ctx))
	}
	return rt, nil
}

func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.TracerProvider != nil {
		if err := r.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer provider: %w", err))
		}
	}
	if r.MeterProvider != nil {
		if err := r.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown meter provider: %w", err))
		}
	}
	if r.LoggerProvider != nil {
		if err := r.LoggerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown logger provider: %w", err))
		}
	}
	return errors.Join(errs...)
}
