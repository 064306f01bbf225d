package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes settlement-engine instruments.
type Metrics struct {
	ordersPlaced     metric.Int64Counter
	orderTransitions metric.Int64Counter
	ledgerEntries    metric.Int64Counter
	refundsProcessed metric.Int64Counter
	payoutsSettled   metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "", "grpc":
		return otlpmetricgrpc.New(context.Background(),
			otlpmetricgrpc.WithEndpoint(endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http", "http/protobuf":
		return otlpmetrichttp.New(context.Background(),
			otlpmetrichttp.WithEndpoint(endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported otlp protocol %q", protocol)
	}
}

// New creates application instruments on the global meter provider.
func New(_ metric.MeterProvider) (*Metrics, error) {
	meter := otel.Meter("soko/engine")

	ordersPlaced, err := meter.Int64Counter("soko.orders.placed")
	if err != nil {
		return nil, err
	}
	orderTransitions, err := meter.Int64Counter("soko.orders.transitions")
	if err != nil {
		return nil, err
	}
	ledgerEntries, err := meter.Int64Counter("soko.ledger.entries")
	if err != nil {
		return nil, err
	}
	refundsProcessed, err := meter.Int64Counter("soko.refunds.processed")
	if err != nil {
		return nil, err
	}
	payoutsSettled, err := meter.Int64Counter("soko.payouts.settled")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		ordersPlaced:     ordersPlaced,
		orderTransitions: orderTransitions,
		ledgerEntries:    ledgerEntries,
		refundsProcessed: refundsProcessed,
		payoutsSettled:   payoutsSettled,
	}, nil
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context) {
	if m == nil {
		return
	}
	m.ordersPlaced.Add(ctx, 1)
}

func (m *Metrics) RecordOrderTransition(ctx context.Context, target string) {
	if m == nil {
		return
	}
	m.orderTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("target", target)))
}

func (m *Metrics) RecordLedgerEntry(ctx context.Context, txnType string) {
	if m == nil {
		return
	}
	m.ledgerEntries.Add(ctx, 1, metric.WithAttributes(attribute.String("type", txnType)))
}

func (m *Metrics) RecordRefundProcessed(ctx context.Context) {
	if m == nil {
		return
	}
	m.refundsProcessed.Add(ctx, 1)
}

func (m *Metrics) RecordPayoutSettled(ctx context.Context) {
	if m == nil {
		return
	}
	m.payoutsSettled.Add(ctx, 1)
}
