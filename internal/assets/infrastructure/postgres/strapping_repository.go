package postgres

import (
	"context"
	"database/sql"
	"errors"

	"depot-twin/internal/physics/volume"
)

// StrappingRepository loads tank strapping tables.
type StrappingRepository struct {
	db *sql.DB
}

// NewStrappingRepository constructs a repository.
func NewStrappingRepository(db *sql.DB) *StrappingRepository {
	return &StrappingRepository{db: db}
}

// Table loads the calibration table for a tank, ordered by level. Returns
// nil when the tank has no strapping data.
func (r *StrappingRepository) Table(ctx context.Context, assetID string) (*volume.StrappingTable, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("strapping repo: nil db")
	}
	if assetID == "" {
		return nil, errors.New("strapping repo: empty asset id")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT level_mm, volume_litres
FROM strapping_data
WHERE asset_id = $1
ORDER BY level_mm ASC`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []volume.StrappingPoint
	for rows.Next() {
		var p volume.StrappingPoint
		if err := rows.Scan(&p.LevelMM, &p.VolumeLitres); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, nil
	}
	return volume.NewStrappingTable(points)
}
