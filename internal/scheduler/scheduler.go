package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	alertapp "depot-twin/internal/alerts/application"
	assets "depot-twin/internal/assets/domain"
	calcapp "depot-twin/internal/calc/application"
	"depot-twin/internal/observability/metrics"
)

// AssetSource loads the active asset catalog per cycle.
type AssetSource interface {
	ListActive(ctx context.Context) ([]assets.Asset, error)
}

// CalcDriver runs the calculation engine on a fixed interval. Assets are
// reloaded each cycle so newly commissioned equipment is picked up
// without a restart.
type CalcDriver struct {
	engine   *calcapp.Engine
	assets   AssetSource
	interval time.Duration
	logger   *log.Logger
}

// NewCalcDriver constructs a calculation driver.
func NewCalcDriver(engine *calcapp.Engine, assetSource AssetSource, interval time.Duration, logger *log.Logger) (*CalcDriver, error) {
	if engine == nil {
		return nil, errors.New("scheduler: nil engine")
	}
	if assetSource == nil {
		return nil, errors.New("scheduler: nil asset source")
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CalcDriver{engine: engine, assets: assetSource, interval: interval, logger: logger}, nil
}

// Start begins the calculation loop. An immediate first pass runs before
// the ticker takes over.
func (d *CalcDriver) Start(ctx context.Context) {
	if d == nil {
		return
	}
	d.runOnce(ctx)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

func (d *CalcDriver) runOnce(ctx context.Context) {
	// A cycle may not outlive its own interval; a stalled database call
	// must not block the loop indefinitely.
	ctx, cancel := context.WithTimeout(ctx, d.interval)
	defer cancel()

	assetList, err := d.assets.ListActive(ctx)
	if err != nil {
		d.logger.Printf("scheduler: calc asset load failed: %v", err)
		return
	}
	if err := d.engine.RunCycle(ctx, assetList); err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Printf("scheduler: calc cycle failed: %v", err)
	}
}

// AlertDriver runs the alert evaluator on a fixed interval. Each cycle
// refreshes the shared rule snapshot so the ingestion path evaluates
// against current rules too.
type AlertDriver struct {
	service  *alertapp.Service
	snapshot *alertapp.RuleSnapshot
	assets   AssetSource
	interval time.Duration
	logger   *log.Logger
}

// NewAlertDriver constructs an alert evaluation driver.
func NewAlertDriver(service *alertapp.Service, snapshot *alertapp.RuleSnapshot, assetSource AssetSource, interval time.Duration, logger *log.Logger) (*AlertDriver, error) {
	if service == nil {
		return nil, errors.New("scheduler: nil alert service")
	}
	if snapshot == nil {
		return nil, errors.New("scheduler: nil rule snapshot")
	}
	if assetSource == nil {
		return nil, errors.New("scheduler: nil asset source")
	}
	if interval <= 0 {
		interval = 20 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &AlertDriver{service: service, snapshot: snapshot, assets: assetSource, interval: interval, logger: logger}, nil
}

// Start begins the evaluation loop.
func (d *AlertDriver) Start(ctx context.Context) {
	if d == nil {
		return
	}
	d.runOnce(ctx)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

func (d *AlertDriver) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, d.interval)
	defer cancel()

	started := time.Now()
	ruleSet, err := d.service.LoadRules(ctx)
	if err != nil {
		metrics.ObserveAlertCycle(metrics.ResultError, time.Since(started))
		d.logger.Printf("scheduler: alert rule load failed: %v", err)
		return
	}
	d.snapshot.Set(ruleSet)

	assetList, err := d.assets.ListActive(ctx)
	if err != nil {
		metrics.ObserveAlertCycle(metrics.ResultError, time.Since(started))
		d.logger.Printf("scheduler: alert asset load failed: %v", err)
		return
	}
	if err := d.service.EvaluateCycle(ctx, ruleSet, assetList); err != nil {
		if !errors.Is(err, context.Canceled) {
			d.logger.Printf("scheduler: alert cycle failed: %v", err)
		}
		metrics.ObserveAlertCycle(metrics.ResultError, time.Since(started))
		return
	}
	metrics.ObserveAlertCycle(metrics.ResultSuccess, time.Since(started))
}
