package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	alerts "depot-twin/internal/alerts/domain"
)

// AlertRepository is a Postgres repository for fired alerts.
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository constructs a repository.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, asset_id, rule_name, severity, status, message,
	metric_name, metric_value, threshold, triggered_at, resolved_at`

// Create inserts a new alert and fills in the generated id.
func (r *AlertRepository) Create(ctx context.Context, alert *alerts.Alert) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	if alert == nil {
		return errors.New("alert repo: nil alert")
	}
	if alert.AssetID == "" || alert.RuleName == "" {
		return errors.New("alert repo: missing fields")
	}
	if alert.Status == "" {
		alert.Status = alerts.StatusActive
	}
	if alert.TriggeredAt.IsZero() {
		alert.TriggeredAt = time.Now().UTC()
	}
	return r.db.QueryRowContext(ctx, `
INSERT INTO alerts (
	asset_id, rule_name, severity, status, message,
	metric_name, metric_value, threshold, triggered_at
) VALUES (
	$1, $2, $3, $4, $5,
	$6, $7, $8, $9
)
RETURNING id`,
		alert.AssetID,
		alert.RuleName,
		alert.Severity,
		alert.Status,
		alert.Message,
		alert.MetricName,
		alert.MetricValue,
		alert.Threshold,
		alert.TriggeredAt,
	).Scan(&alert.ID)
}

// FindActive returns the open alert for an asset/rule pair, nil when none.
func (r *AlertRepository) FindActive(ctx context.Context, assetID, ruleName string) (*alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	if assetID == "" || ruleName == "" {
		return nil, errors.New("alert repo: invalid query")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT `+alertColumns+`
FROM alerts
WHERE asset_id = $1 AND rule_name = $2 AND status = $3
ORDER BY triggered_at DESC
LIMIT 1`, assetID, ruleName, alerts.StatusActive)
	return scanAlert(row)
}

// Resolve marks an alert resolved at the given time.
func (r *AlertRepository) Resolve(ctx context.Context, id int64, resolvedAt time.Time) error {
	if r == nil || r.db == nil {
		return errors.New("alert repo: nil db")
	}
	_, err := r.db.ExecContext(ctx, `
UPDATE alerts
SET status = $1, resolved_at = $2
WHERE id = $3 AND status = $4`, alerts.StatusResolved, resolvedAt.UTC(), id, alerts.StatusActive)
	return err
}

// ListActive returns the most recent active alerts, newest first.
func (r *AlertRepository) ListActive(ctx context.Context, limit int) ([]alerts.Alert, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert repo: nil db")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+alertColumns+`
FROM alerts
WHERE status = $1
ORDER BY triggered_at DESC
LIMIT $2`, alerts.StatusActive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []alerts.Alert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *alert)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type alertScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row alertScanner) (*alerts.Alert, error) {
	var alert alerts.Alert
	var resolvedAt sql.NullTime
	if err := row.Scan(
		&alert.ID,
		&alert.AssetID,
		&alert.RuleName,
		&alert.Severity,
		&alert.Status,
		&alert.Message,
		&alert.MetricName,
		&alert.MetricValue,
		&alert.Threshold,
		&alert.TriggeredAt,
		&resolvedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	alert.TriggeredAt = alert.TriggeredAt.UTC()
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		alert.ResolvedAt = &t
	}
	return &alert, nil
}
