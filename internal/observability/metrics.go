package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sandeepkv93/one-time-unlock-service/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "one-time-unlock-service"

type appMetrics struct {
	redemptionCounter   metric.Int64Counter
	generatedCounter    metric.Int64Counter
	resourceCounter     metric.Int64Counter
	repositoryCounter   metric.Int64Counter
	sessionStoreCounter metric.Int64Counter
	operatorAuthCounter metric.Int64Counter
}

var (
	metricsOnce sync.Once
	metrics     *appMetrics
)

// InitMetrics installs the global meter provider. Instruments are created
// lazily against the global provider, so recording before init is safe.
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

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)
	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func instruments() *appMetrics {
	metricsOnce.Do(func() {
		meter := otel.Meter(meterName)
		m := &appMetrics{}
		m.redemptionCounter, _ = meter.Int64Counter("redemption.attempts")
		m.generatedCounter, _ = meter.Int64Counter("codes.generated")
		m.resourceCounter, _ = meter.Int64Counter("resource.access.decisions")
		m.repositoryCounter, _ = meter.Int64Counter("repository.operations")
		m.sessionStoreCounter, _ = meter.Int64Counter("session_store.operations")
		m.operatorAuthCounter, _ = meter.Int64Counter("operator.auth.attempts")
		metrics = m
	})
	return metrics
}

func RecordRedemption(ctx context.Context, outcome string) {
	if c := instruments().redemptionCounter; c != nil {
		c.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

// RecordCodesGenerated counts inserted codes and the candidates skipped
// because they already existed.
func RecordCodesGenerated(ctx context.Context, inserted, skipped int) {
	c := instruments().generatedCounter
	if c == nil {
		return
	}
	if inserted > 0 {
		c.Add(ctx, int64(inserted), metric.WithAttributes(attribute.String("result", "inserted")))
	}
	if skipped > 0 {
		c.Add(ctx, int64(skipped), metric.WithAttributes(attribute.String("result", "skipped")))
	}
}

func RecordResourceAccess(ctx context.Context, operation, decision string) {
	if c := instruments().resourceCounter; c != nil {
		c.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("decision", decision),
		))
	}
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	if c := instruments().repositoryCounter; c != nil {
		c.Add(ctx, 1, metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("operation", operation),
			attribute.String("outcome", outcome),
		))
	}
}

func RecordSessionStoreOperation(ctx context.Context, backend, operation, outcome string) {
	if c := instruments().sessionStoreCounter; c != nil {
		c.Add(ctx, 1, metric.WithAttributes(
			attribute.String("backend", backend),
			attribute.String("operation", operation),
			attribute.String("outcome", outcome),
		))
	}
}

func RecordOperatorAuth(ctx context.Context, method, outcome string) {
	if c := instruments().operatorAuthCounter; c != nil {
		c.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("outcome", outcome),
		))
	}
}
