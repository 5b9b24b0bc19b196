package postgres

import (
	"context"
	"database/sql"
	"errors"

	assets "depot-twin/internal/assets/domain"
)

// AssetRepository is a Postgres repository for asset configuration.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository constructs a repository.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `
asset_id, asset_type, depot_id, description, product_service,
capacity_litres, density_at_20c_kg_m3, motor_power_kw, motor_efficiency,
high_level_threshold_m, low_level_threshold_m, is_active, created_at, last_updated`

// ListByKind returns active assets of one kind.
func (r *AssetRepository) ListByKind(ctx context.Context, kind assets.Kind) ([]assets.Asset, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("asset repo: nil db")
	}
	if !kind.Valid() {
		return nil, errors.New("asset repo: invalid asset kind")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+assetColumns+`
FROM assets
WHERE asset_type = $1 AND is_active = TRUE
ORDER BY asset_id ASC`, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssets(rows)
}

// ListActive returns every active asset; used to build the ingestion
// directory at startup and per cycle.
func (r *AssetRepository) ListActive(ctx context.Context) ([]assets.Asset, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("asset repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT `+assetColumns+`
FROM assets
WHERE is_active = TRUE
ORDER BY asset_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssets(rows)
}

func scanAssets(rows *sql.Rows) ([]assets.Asset, error) {
	var result []assets.Asset
	for rows.Next() {
		var a assets.Asset
		var kind string
		var depot, description, product sql.NullString
		var capacity, density, motorPower, motorEff, high, low sql.NullFloat64
		if err := rows.Scan(
			&a.ID,
			&kind,
			&depot,
			&description,
			&product,
			&capacity,
			&density,
			&motorPower,
			&motorEff,
			&high,
			&low,
			&a.IsActive,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		a.Kind = assets.Kind(kind)
		a.DepotID = depot.String
		a.Description = description.String
		a.ProductCode = product.String
		a.CapacityLitres = capacity.Float64
		a.DensityAt20CKgM3 = density.Float64
		a.MotorPowerKW = motorPower.Float64
		a.MotorEfficiency = motorEff.Float64
		a.HighLevelThresholdM = high.Float64
		a.LowLevelThresholdM = low.Float64
		a.CreatedAt = a.CreatedAt.UTC()
		a.UpdatedAt = a.UpdatedAt.UTC()
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
