package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	telemetry "depot-twin/internal/telemetry/domain"
)

// ReadingRepository is a Postgres repository for raw sensor readings.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository constructs a repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Insert appends one reading. Readings are facts and never updated.
func (r *ReadingRepository) Insert(ctx context.Context, reading telemetry.RawReading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if reading.AssetID == "" || reading.MetricName == "" {
		return errors.New("reading repo: missing asset/metric")
	}
	if reading.Time.IsZero() {
		reading.Time = time.Now().UTC()
	}
	if reading.Status == "" {
		reading.Status = telemetry.StatusOK
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sensor_readings (
	time, asset_id, data_source_id, metric_name, value_numeric, value_text, unit, status
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)
ON CONFLICT (time, asset_id, data_source_id, metric_name) DO NOTHING`,
		reading.Time.UTC(),
		reading.AssetID,
		reading.SourceID,
		reading.MetricName,
		sql.NullFloat64{Float64: reading.Value, Valid: reading.ValueText == ""},
		sql.NullString{String: reading.ValueText, Valid: reading.ValueText != ""},
		reading.Unit,
		reading.Status,
	)
	return err
}

// Latest returns the most recent reading for an asset metric, or nil when
// none exists.
func (r *ReadingRepository) Latest(ctx context.Context, assetID, metricName string) (*telemetry.RawReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if assetID == "" || metricName == "" {
		return nil, errors.New("reading repo: invalid query")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT time, asset_id, data_source_id, metric_name, value_numeric, value_text, unit, status
FROM sensor_readings
WHERE asset_id = $1 AND metric_name = $2
ORDER BY time DESC
LIMIT 1`, assetID, metricName)

	var reading telemetry.RawReading
	var value sql.NullFloat64
	var text, unit sql.NullString
	if err := row.Scan(
		&reading.Time,
		&reading.AssetID,
		&reading.SourceID,
		&reading.MetricName,
		&value,
		&text,
		&unit,
		&reading.Status,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	reading.Time = reading.Time.UTC()
	reading.Value = value.Float64
	reading.ValueText = text.String
	reading.Unit = unit.String
	return &reading, nil
}
