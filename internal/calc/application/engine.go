package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/shopspring/decimal"

	assets "depot-twin/internal/assets/domain"
	"depot-twin/internal/observability/metrics"
	"depot-twin/internal/physics/energy"
	"depot-twin/internal/physics/massbalance"
	"depot-twin/internal/physics/volume"
	telemetry "depot-twin/internal/telemetry/domain"
)

// MaxTankLevelMM is the reference span for level percentage.
const MaxTankLevelMM = 16000.0

// Pump defaults applied when asset metadata is incomplete.
const (
	defaultMotorPowerKW    = 55.0
	defaultMotorEfficiency = 0.85
)

// StrappingSource loads calibration tables for tanks.
type StrappingSource interface {
	Table(ctx context.Context, assetID string) (*volume.StrappingTable, error)
}

// Engine derives physical state metrics from the latest raw readings.
// Each cycle is idempotent: an asset whose derived data already covers
// its newest reading is skipped.
type Engine struct {
	readings  telemetry.ReadingRepository
	derived   telemetry.DerivedRepository
	strapping StrappingSource
	mass      *massbalance.Calculator
	energy    *energy.Calculator
	logger    *log.Logger

	tariffPerKWh float64
	interval     time.Duration
}

// EngineOption customizes the engine.
type EngineOption func(*Engine)

// WithTariff sets the electricity rate in GHS per kWh.
func WithTariff(rate float64) EngineOption {
	return func(e *Engine) {
		if rate > 0 {
			e.tariffPerKWh = rate
		}
	}
}

// WithInterval sets the cycle interval used for pump energy integration.
func WithInterval(interval time.Duration) EngineOption {
	return func(e *Engine) {
		if interval > 0 {
			e.interval = interval
		}
	}
}

// NewEngine constructs a calculation engine.
func NewEngine(readings telemetry.ReadingRepository, derived telemetry.DerivedRepository, strapping StrappingSource, massCalc *massbalance.Calculator, energyCalc *energy.Calculator, logger *log.Logger, opts ...EngineOption) (*Engine, error) {
	if readings == nil || derived == nil {
		return nil, errors.New("calc: nil repository")
	}
	if strapping == nil {
		return nil, errors.New("calc: nil strapping source")
	}
	if massCalc == nil || energyCalc == nil {
		return nil, errors.New("calc: nil calculator")
	}
	if logger == nil {
		logger = log.Default()
	}
	engine := &Engine{
		readings:     readings,
		derived:      derived,
		strapping:    strapping,
		mass:         massCalc,
		energy:       energyCalc,
		logger:       logger,
		tariffPerKWh: 2.21,
		interval:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// RunCycle processes every asset once. A panic or error in one asset is
// logged and counted without aborting the rest; cancellation is checked
// between assets so shutdown does not wait for a full pass.
func (e *Engine) RunCycle(ctx context.Context, assetList []assets.Asset) error {
	if e == nil {
		return errors.New("calc: nil engine")
	}
	started := time.Now()
	for i := range assetList {
		if err := ctx.Err(); err != nil {
			metrics.ObserveCalcCycle(metrics.ResultError, time.Since(started))
			return err
		}
		asset := &assetList[i]
		if err := e.processAsset(ctx, asset); err != nil {
			metrics.IncCalcAssetFault()
			e.logger.Printf("calc: asset %s failed: %v", asset.ID, err)
		}
	}
	metrics.ObserveCalcCycle(metrics.ResultSuccess, time.Since(started))
	return nil
}

// ProcessAssetMetric runs the derivation pipeline for one asset after a
// fresh reading arrived, so derived state follows ingestion without
// waiting for the next scheduled cycle.
func (e *Engine) ProcessAssetMetric(ctx context.Context, asset *assets.Asset) error {
	if e == nil {
		return errors.New("calc: nil engine")
	}
	if asset == nil {
		return errors.New("calc: nil asset")
	}
	return e.processAsset(ctx, asset)
}

func (e *Engine) processAsset(ctx context.Context, asset *assets.Asset) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("calc: panic processing %s: %v", asset.ID, r)
		}
	}()
	switch asset.Kind {
	case assets.KindStorageTank:
		return e.processTank(ctx, asset)
	case assets.KindPump:
		return e.processPump(ctx, asset)
	default:
		return nil
	}
}

// processTank derives level percentage, volumes, mass and heat content
// from the newest level and temperature readings. Stages are ordered by
// dependency; a missing input stops the chain at that stage.
func (e *Engine) processTank(ctx context.Context, asset *assets.Asset) error {
	latestLevel, err := e.readings.Latest(ctx, asset.ID, assets.MetricLevelMM)
	if err != nil {
		return err
	}
	if latestLevel == nil {
		// Some gauges publish the level in millimetres under the bare
		// "level" metric.
		latestLevel, err = e.readings.Latest(ctx, asset.ID, assets.MetricLevel)
		if err != nil {
			return err
		}
	}
	if latestLevel == nil {
		return nil
	}

	lastCalc, err := e.derived.Latest(ctx, asset.ID, assets.MetricLevelPercentage)
	if err != nil {
		return err
	}
	if lastCalc != nil && !lastCalc.Time.Before(latestLevel.Time) {
		return nil
	}

	levelMM := latestLevel.Value
	levelPct := 0.0
	if MaxTankLevelMM > 0 {
		levelPct = levelMM / MaxTankLevelMM * 100
	}
	if err := e.writeDerived(ctx, asset.ID, assets.MetricLevelPercentage, levelPct, "%", latestLevel.Time); err != nil {
		return err
	}

	table, err := e.strapping.Table(ctx, asset.ID)
	if err != nil {
		return err
	}
	if table == nil {
		e.logger.Printf("calc: no strapping table for tank %s, volumes skipped", asset.ID)
		return nil
	}
	govLitres, err := table.GrossObservedVolume(levelMM)
	if err != nil {
		return err
	}
	if err := e.writeDerived(ctx, asset.ID, assets.MetricVolumeGOV, govLitres, "Litres", latestLevel.Time); err != nil {
		return err
	}

	latestTemp, err := e.readings.Latest(ctx, asset.ID, assets.MetricTemperature)
	if err != nil {
		return err
	}
	if latestTemp == nil || asset.DensityAt20CKgM3 <= 0 {
		return nil
	}
	temperatureC := latestTemp.Value

	gsv, err := volume.StandardVolume(
		decimal.NewFromFloat(govLitres),
		decimal.NewFromFloat(temperatureC),
		decimal.NewFromFloat(asset.DensityAt20CKgM3),
	)
	if err != nil {
		e.logger.Printf("calc: gsv for tank %s: %v", asset.ID, err)
	} else {
		gsvLitres, _ := gsv.Float64()
		if err := e.writeDerived(ctx, asset.ID, assets.MetricVolumeGSV, gsvLitres, "Litres", latestLevel.Time); err != nil {
			return err
		}
	}

	massResult := e.mass.MassInTank(govLitres, temperatureC, asset.DensityAt20CKgM3, asset.ProductCode, latestLevel.Time)
	if massResult.MassKg > 0 {
		if err := e.writeDerived(ctx, asset.ID, assets.MetricMassKg, massResult.MassKg, "kg", latestLevel.Time); err != nil {
			return err
		}
		if err := e.writeDerived(ctx, asset.ID, assets.MetricDensityAtTemp, massResult.DensityAtTempKgM3, "kg/m3", latestLevel.Time); err != nil {
			return err
		}
	}

	heat := e.energy.TankHeatContent(massResult.MassKg, temperatureC, asset.ProductCode)
	if heat.EnergyKJ > 0 {
		if err := e.writeDerived(ctx, asset.ID, assets.MetricHeatContentKJ, heat.EnergyKJ, "kJ", latestLevel.Time); err != nil {
			return err
		}
	}
	return nil
}

// processPump converts the run/stop status into instantaneous power,
// interval energy and operating cost.
func (e *Engine) processPump(ctx context.Context, asset *assets.Asset) error {
	latestStatus, err := e.readings.Latest(ctx, asset.ID, assets.MetricPumpStatus)
	if err != nil {
		return err
	}
	if latestStatus == nil {
		return nil
	}

	lastCalc, err := e.derived.Latest(ctx, asset.ID, assets.MetricEnergyKWh)
	if err != nil {
		return err
	}
	if lastCalc != nil && !lastCalc.Time.Before(latestStatus.Time) {
		return nil
	}

	running := latestStatus.Value == 1
	motorPowerKW := asset.MotorPowerKW
	if motorPowerKW <= 0 {
		motorPowerKW = defaultMotorPowerKW
	}
	efficiency := asset.MotorEfficiency
	if efficiency <= 0 {
		efficiency = defaultMotorEfficiency
	}

	actualPowerKW := 0.0
	if running {
		actualPowerKW = motorPowerKW / efficiency
	}
	if err := e.writeDerived(ctx, asset.ID, assets.MetricPowerKW, round(actualPowerKW, 2), "kW", latestStatus.Time); err != nil {
		return err
	}

	intervalHours := e.interval.Hours()
	energyKWh := actualPowerKW * intervalHours
	if err := e.writeDerived(ctx, asset.ID, assets.MetricEnergyKWh, round(energyKWh, 4), "kWh", latestStatus.Time); err != nil {
		return err
	}

	operatingCost := energyKWh * e.tariffPerKWh
	return e.writeDerived(ctx, asset.ID, assets.MetricOperatingCost, round(operatingCost, 4), "GHS", latestStatus.Time)
}

func (e *Engine) writeDerived(ctx context.Context, assetID, metricName string, value float64, unit string, at time.Time) error {
	err := e.derived.Upsert(ctx, telemetry.DerivedMetric{
		AssetID:    assetID,
		MetricName: metricName,
		Value:      value,
		Unit:       unit,
		Status:     telemetry.StatusOK,
		Time:       at,
	})
	if err != nil {
		return err
	}
	metrics.IncDerivedWritten(metricName)
	return nil
}

func round(value float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(value*scale) / scale
}
