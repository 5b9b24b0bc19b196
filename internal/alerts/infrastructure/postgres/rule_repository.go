package postgres

import (
	"context"
	"database/sql"
	"errors"

	alerts "depot-twin/internal/alerts/domain"
	assets "depot-twin/internal/assets/domain"
)

// RuleRepository is a Postgres repository for alert rules.
type RuleRepository struct {
	db *sql.DB
}

// NewRuleRepository constructs a repository.
func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

const ruleColumns = `id, asset_kind, metric_name, comparator, threshold, clear_threshold,
	duration_seconds, name, message_template, severity, enabled, description`

// ListEnabled returns all enabled rules ordered by name.
func (r *RuleRepository) ListEnabled(ctx context.Context) ([]alerts.Rule, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("alert rule repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+ruleColumns+`
FROM alert_rules
WHERE enabled = TRUE
ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []alerts.Rule
	for rows.Next() {
		var rule alerts.Rule
		var kind string
		var comparator string
		var clearThreshold sql.NullFloat64
		var description sql.NullString
		if err := rows.Scan(
			&rule.ID,
			&kind,
			&rule.MetricName,
			&comparator,
			&rule.Threshold,
			&clearThreshold,
			&rule.DurationSeconds,
			&rule.Name,
			&rule.MessageTemplate,
			&rule.Severity,
			&rule.Enabled,
			&description,
		); err != nil {
			return nil, err
		}
		rule.AssetKind = assets.Kind(kind)
		rule.Comparator = alerts.Comparator(comparator)
		if clearThreshold.Valid {
			v := clearThreshold.Float64
			rule.ClearThreshold = &v
		}
		if description.Valid {
			rule.Description = description.String
		}
		result = append(result, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
