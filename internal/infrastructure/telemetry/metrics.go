package telemetry

import (
	"context"
	"fmt"

	"github.com/mrops-br/product-catalog-api/internal/infrastructure/config"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// initMeterProvider initializes a meter provider that pushes to the OTLP
// collector and is also scraped through the Prometheus exporter
func initMeterProvider(cfg *config.OTLPConfig) (*metric.MeterProvider, error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(cfg.Endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	exporter, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	promExporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(exporter)),
		metric.WithReader(promExporter),
		metric.WithResource(res),
	)

	return mp, nil
}

// initPrometheusOnlyMeterProvider backs /metrics without pushing anywhere
func initPrometheusOnlyMeterProvider() (*metric.MeterProvider, error) {
	promExporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	return metric.NewMeterProvider(metric.WithReader(promExporter)), nil
}
