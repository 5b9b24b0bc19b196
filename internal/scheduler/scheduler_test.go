package scheduler

import (
	"context"
	"log"
	"testing"
	"time"

	alertapp "depot-twin/internal/alerts/application"
	alerts "depot-twin/internal/alerts/domain"
	assets "depot-twin/internal/assets/domain"
	calcapp "depot-twin/internal/calc/application"
	"depot-twin/internal/physics/energy"
	"depot-twin/internal/physics/massbalance"
	"depot-twin/internal/physics/volume"
	telemetry "depot-twin/internal/telemetry/domain"
)

type stubReadings struct{}

func (stubReadings) Insert(ctx context.Context, reading telemetry.RawReading) error { return nil }

func (stubReadings) Latest(ctx context.Context, assetID, metricName string) (*telemetry.RawReading, error) {
	return nil, nil
}

type stubDerived struct{}

func (stubDerived) Upsert(ctx context.Context, metric telemetry.DerivedMetric) error { return nil }

func (stubDerived) Latest(ctx context.Context, assetID, metricName string) (*telemetry.DerivedMetric, error) {
	return nil, nil
}

type stubStrapping struct{}

func (stubStrapping) Table(ctx context.Context, assetID string) (*volume.StrappingTable, error) {
	return nil, nil
}

type stubRules struct{}

func (stubRules) ListEnabled(ctx context.Context) ([]alerts.Rule, error) { return nil, nil }

type stubAlertStore struct{}

func (stubAlertStore) Create(ctx context.Context, alert *alerts.Alert) error { return nil }

func (stubAlertStore) FindActive(ctx context.Context, assetID, ruleName string) (*alerts.Alert, error) {
	return nil, nil
}

func (stubAlertStore) Resolve(ctx context.Context, id int64, resolvedAt time.Time) error { return nil }

func (stubAlertStore) ListActive(ctx context.Context, limit int) ([]alerts.Alert, error) {
	return nil, nil
}

// deadlineAssetSource records whether the cycle context carries a
// deadline, then cancels the loop so Start returns.
type deadlineAssetSource struct {
	sawDeadline bool
	cancel      context.CancelFunc
}

func (s *deadlineAssetSource) ListActive(ctx context.Context) ([]assets.Asset, error) {
	_, s.sawDeadline = ctx.Deadline()
	s.cancel()
	return nil, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func quietLogger() *log.Logger { return log.New(discard{}, "", 0) }

func TestCalcDriver_BoundsCycleDeadline(t *testing.T) {
	engine, err := calcapp.NewEngine(stubReadings{}, stubDerived{}, stubStrapping{},
		massbalance.NewCalculator(), energy.NewCalculator(0), quietLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &deadlineAssetSource{cancel: cancel}
	driver, err := NewCalcDriver(engine, source, time.Second, quietLogger())
	if err != nil {
		t.Fatalf("NewCalcDriver: %v", err)
	}

	driver.Start(ctx)

	if !source.sawDeadline {
		t.Fatalf("calc cycle must run under a deadline-bound context")
	}
}

func TestAlertDriver_BoundsCycleDeadline(t *testing.T) {
	service, err := alertapp.NewService(stubRules{}, stubAlertStore{}, stubReadings{}, stubDerived{}, quietLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	snapshot := &alertapp.RuleSnapshot{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &deadlineAssetSource{cancel: cancel}
	driver, err := NewAlertDriver(service, snapshot, source, time.Second, quietLogger())
	if err != nil {
		t.Fatalf("NewAlertDriver: %v", err)
	}

	driver.Start(ctx)

	if !source.sawDeadline {
		t.Fatalf("alert cycle must run under a deadline-bound context")
	}
	if snapshot.Get() == nil {
		t.Fatalf("cycle must refresh the shared rule snapshot")
	}
}
