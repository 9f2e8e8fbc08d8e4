package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "fitledger-engine"

// Metrics holds the engine instruments. A nil *Metrics is valid and records nothing.
type Metrics struct {
	snapshots    metric.Int64Counter
	rankingBatch metric.Int64Histogram
}

// NewMetrics registers instruments on the global meter provider, which is a
// no-op until Initialize installs the OTLP exporter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)

	snapshots, err := meter.Int64Counter("fitledger.snapshots",
		metric.WithDescription("Values frozen at write time (meal nutrition, exercise calories)"),
	)
	if err != nil {
		return nil, err
	}

	rankingBatch, err := meter.Int64Histogram("fitledger.ranking.batch_size",
		metric.WithDescription("Number of participants or scores ranked per recompute"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{snapshots: snapshots, rankingBatch: rankingBatch}, nil
}

// RecordSnapshot counts one snapshot computation of the given kind ("meal", "exercise")
func (m *Metrics) RecordSnapshot(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.snapshots.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRankingBatch records how many rows went through a ranking pass
func (m *Metrics) RecordRankingBatch(ctx context.Context, kind string, size int) {
	if m == nil {
		return
	}
	m.rankingBatch.Record(ctx, int64(size), metric.WithAttributes(attribute.String("kind", kind)))
}
