package telemetry

import (
	"context"
	"time"
)

// StatusOK is the default quality status for readings and derived metrics.
const StatusOK = "OK"

// RawReading is an immutable sensor fact. Rows are append-only.
type RawReading struct {
	AssetID    string
	MetricName string
	SourceID   string
	Value      float64
	ValueText  string
	Unit       string
	Status     string
	Time       time.Time
}

// DerivedMetric is a computed fact produced by the calculation engine.
// Upserted keyed by (asset_id, metric_name, time): later runs for the same
// timestamp overwrite, never duplicate.
type DerivedMetric struct {
	AssetID    string
	MetricName string
	Value      float64
	Unit       string
	Status     string
	Time       time.Time
}

// ReadingRepository persists and queries raw sensor readings.
type ReadingRepository interface {
	Insert(ctx context.Context, reading RawReading) error
	Latest(ctx context.Context, assetID, metricName string) (*RawReading, error)
}

// DerivedRepository persists and queries derived metrics.
type DerivedRepository interface {
	Upsert(ctx context.Context, metric DerivedMetric) error
	Latest(ctx context.Context, assetID, metricName string) (*DerivedMetric, error)
}
