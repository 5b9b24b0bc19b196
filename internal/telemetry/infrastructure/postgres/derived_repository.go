package postgres

import (
	"context"
	"database/sql"
	"errors"

	telemetry "depot-twin/internal/telemetry/domain"
)

// DerivedRepository is a Postgres repository for calculated metrics.
type DerivedRepository struct {
	db *sql.DB
}

// NewDerivedRepository constructs a repository.
func NewDerivedRepository(db *sql.DB) *DerivedRepository {
	return &DerivedRepository{db: db}
}

// Upsert writes a derived metric keyed by (asset, metric, time). Reruns for
// the same timestamp overwrite the value instead of duplicating the row,
// which keeps recalculation and at-least-once message delivery idempotent.
func (r *DerivedRepository) Upsert(ctx context.Context, metric telemetry.DerivedMetric) error {
	if r == nil || r.db == nil {
		return errors.New("derived repo: nil db")
	}
	if metric.AssetID == "" || metric.MetricName == "" || metric.Time.IsZero() {
		return errors.New("derived repo: missing key fields")
	}
	if metric.Status == "" {
		metric.Status = telemetry.StatusOK
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO calculated_data (
	time, asset_id, metric_name, value, unit, calculation_status
) VALUES (
	$1, $2, $3, $4, $5, $6
)
ON CONFLICT (time, asset_id, metric_name)
DO UPDATE SET
	value = EXCLUDED.value,
	unit = EXCLUDED.unit,
	calculation_status = EXCLUDED.calculation_status`,
		metric.Time.UTC(),
		metric.AssetID,
		metric.MetricName,
		metric.Value,
		metric.Unit,
		metric.Status,
	)
	return err
}

// Latest returns the most recent derived metric for an asset, or nil when
// none exists.
func (r *DerivedRepository) Latest(ctx context.Context, assetID, metricName string) (*telemetry.DerivedMetric, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("derived repo: nil db")
	}
	if assetID == "" || metricName == "" {
		return nil, errors.New("derived repo: invalid query")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT time, asset_id, metric_name, value, unit, calculation_status
FROM calculated_data
WHERE asset_id = $1 AND metric_name = $2
ORDER BY time DESC
LIMIT 1`, assetID, metricName)

	var metric telemetry.DerivedMetric
	var unit sql.NullString
	if err := row.Scan(
		&metric.Time,
		&metric.AssetID,
		&metric.MetricName,
		&metric.Value,
		&unit,
		&metric.Status,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	metric.Time = metric.Time.UTC()
	metric.Unit = unit.String
	return &metric, nil
}
