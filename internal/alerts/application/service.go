package application

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	alerts "depot-twin/internal/alerts/domain"
	assets "depot-twin/internal/assets/domain"
	"depot-twin/internal/observability/metrics"
	telemetry "depot-twin/internal/telemetry/domain"
)

// Notifier publishes alert lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Event represents an alert lifecycle update.
type Event struct {
	Type  string       `json:"type"`
	Alert alerts.Alert `json:"alert"`
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// RuleSource loads enabled alert rules.
type RuleSource interface {
	ListEnabled(ctx context.Context) ([]alerts.Rule, error)
}

// AlertStore persists fired alerts.
type AlertStore interface {
	Create(ctx context.Context, alert *alerts.Alert) error
	FindActive(ctx context.Context, assetID, ruleName string) (*alerts.Alert, error)
	Resolve(ctx context.Context, id int64, resolvedAt time.Time) error
	ListActive(ctx context.Context, limit int) ([]alerts.Alert, error)
}

type candidateKey struct {
	assetID string
	ruleID  int64
}

// Service evaluates telemetry against alert rules and manages alert
// lifecycle. Rule metrics resolve against the sensor store or the
// calculated store depending on the metric name. Debounce candidates are
// held in memory; pending breaches re-arm from zero after a restart.
// evalMu serializes the find-open/fire/resolve sequence so the scheduled
// cycle and the ingestion path cannot both open an alert for the same
// asset and rule.
type Service struct {
	rules    RuleSource
	alerts   AlertStore
	readings telemetry.ReadingRepository
	derived  telemetry.DerivedRepository
	logger   *log.Logger
	notifier Notifier
	clock    Clock

	evalMu sync.Mutex

	mu         sync.Mutex
	candidates map[candidateKey]time.Time
}

// ServiceOption customizes the alert service.
type ServiceOption func(*Service)

// WithNotifier assigns a notifier.
func WithNotifier(notifier Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// WithClock assigns a clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService constructs an alert service.
func NewService(rules RuleSource, alertsRepo AlertStore, readings telemetry.ReadingRepository, derived telemetry.DerivedRepository, logger *log.Logger, opts ...ServiceOption) (*Service, error) {
	if rules == nil || alertsRepo == nil {
		return nil, errors.New("alerts: nil repository")
	}
	if readings == nil {
		return nil, errors.New("alerts: nil reading repo")
	}
	if derived == nil {
		return nil, errors.New("alerts: nil derived repo")
	}
	if logger == nil {
		logger = log.Default()
	}
	service := &Service{
		rules:      rules,
		alerts:     alertsRepo,
		readings:   readings,
		derived:    derived,
		logger:     logger,
		clock:      systemClock{},
		candidates: make(map[candidateKey]time.Time),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// LoadRules takes a snapshot of the enabled rules. One snapshot is used
// for a whole evaluation cycle so mid-cycle rule edits cannot produce a
// half-old half-new pass.
func (s *Service) LoadRules(ctx context.Context) (*alerts.RuleSet, error) {
	if s == nil {
		return nil, errors.New("alerts: nil service")
	}
	rules, err := s.rules.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	return alerts.NewRuleSet(rules, s.clock.Now().UTC()), nil
}

// EvaluateCycle evaluates every rule applying to each asset against its
// latest persisted reading. A failure on one asset is logged and does
// not stop the remaining assets.
func (s *Service) EvaluateCycle(ctx context.Context, ruleSet *alerts.RuleSet, assetList []assets.Asset) error {
	if s == nil {
		return errors.New("alerts: nil service")
	}
	if ruleSet == nil || ruleSet.Len() == 0 {
		return nil
	}
	for i := range assetList {
		if err := ctx.Err(); err != nil {
			return err
		}
		asset := &assetList[i]
		if err := s.EvaluateAsset(ctx, ruleSet, asset); err != nil {
			s.logger.Printf("alerts: asset %s evaluation failed: %v", asset.ID, err)
		}
	}
	return nil
}

// EvaluateAsset evaluates all rules scoped to one asset's kind.
func (s *Service) EvaluateAsset(ctx context.Context, ruleSet *alerts.RuleSet, asset *assets.Asset) error {
	if s == nil {
		return errors.New("alerts: nil service")
	}
	if asset == nil {
		return errors.New("alerts: nil asset")
	}
	for _, rule := range ruleSet.ForKind(asset.Kind) {
		value, at, ok, err := s.latestMetric(ctx, asset.ID, rule.MetricName)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := s.evaluateRule(ctx, rule, asset.ID, value, at); err != nil {
			return err
		}
	}
	return nil
}

// latestMetric resolves a rule's metric against the store that produces
// it: calculation outputs live in the calculated store, everything else
// in the sensor store.
func (s *Service) latestMetric(ctx context.Context, assetID, metricName string) (float64, time.Time, bool, error) {
	if assets.IsDerivedMetric(metricName) {
		metric, err := s.derived.Latest(ctx, assetID, metricName)
		if err != nil || metric == nil {
			return 0, time.Time{}, false, err
		}
		return metric.Value, metric.Time, true, nil
	}
	reading, err := s.readings.Latest(ctx, assetID, metricName)
	if err != nil || reading == nil {
		return 0, time.Time{}, false, err
	}
	return reading.Value, reading.Time, true, nil
}

// EvaluateMetric evaluates the rules matching one just-ingested metric
// sample, so threshold breaches fire without waiting for the next
// scheduled cycle.
func (s *Service) EvaluateMetric(ctx context.Context, ruleSet *alerts.RuleSet, asset *assets.Asset, metricName string, value float64, at time.Time) error {
	if s == nil {
		return errors.New("alerts: nil service")
	}
	if asset == nil {
		return errors.New("alerts: nil asset")
	}
	for _, rule := range ruleSet.ForKind(asset.Kind) {
		if rule.MetricName != metricName {
			continue
		}
		if err := s.evaluateRule(ctx, rule, asset.ID, value, at); err != nil {
			return err
		}
	}
	return nil
}

// ListActive returns the most recent active alerts.
func (s *Service) ListActive(ctx context.Context, limit int) ([]alerts.Alert, error) {
	if s == nil {
		return nil, errors.New("alerts: nil service")
	}
	return s.alerts.ListActive(ctx, limit)
}

func (s *Service) evaluateRule(ctx context.Context, rule alerts.Rule, assetID string, value float64, at time.Time) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		s.logger.Printf("alerts: rule %q skipped for %s: non-numeric value", rule.Name, assetID)
		return nil
	}

	// The scheduled cycle and the ingestion path can evaluate the same
	// asset and rule concurrently. Holding evalMu across the find-open
	// check and the insert keeps one alert active per asset and rule.
	s.evalMu.Lock()
	defer s.evalMu.Unlock()

	open, err := s.alerts.FindActive(ctx, assetID, rule.Name)
	if err != nil {
		return err
	}

	if open != nil {
		if rule.Cleared(value) {
			resolvedAt := s.atOrNow(at)
			if err := s.alerts.Resolve(ctx, open.ID, resolvedAt); err != nil {
				return err
			}
			open.Status = alerts.StatusResolved
			open.ResolvedAt = &resolvedAt
			s.dropCandidate(assetID, rule.ID)
			s.notify(ctx, "resolved", *open)
		}
		return nil
	}

	if !rule.Triggered(value) {
		s.dropCandidate(assetID, rule.ID)
		return nil
	}

	now := s.atOrNow(at)
	if rule.DurationSeconds > 0 {
		pendingSince, matured := s.armCandidate(assetID, rule.ID, now, time.Duration(rule.DurationSeconds)*time.Second)
		if !matured {
			return nil
		}
		s.dropCandidate(assetID, rule.ID)
		return s.fire(ctx, rule, assetID, value, pendingSince)
	}
	return s.fire(ctx, rule, assetID, value, now)
}

// armCandidate records the first breach time for a debounced rule and
// reports whether the condition has now held long enough to fire.
func (s *Service) armCandidate(assetID string, ruleID int64, at time.Time, d time.Duration) (time.Time, bool) {
	key := candidateKey{assetID: assetID, ruleID: ruleID}
	s.mu.Lock()
	defer s.mu.Unlock()
	since, ok := s.candidates[key]
	if !ok {
		s.candidates[key] = at
		return at, false
	}
	if at.Sub(since) < d {
		return since, false
	}
	return since, true
}

func (s *Service) dropCandidate(assetID string, ruleID int64) {
	key := candidateKey{assetID: assetID, ruleID: ruleID}
	s.mu.Lock()
	delete(s.candidates, key)
	s.mu.Unlock()
}

func (s *Service) fire(ctx context.Context, rule alerts.Rule, assetID string, value float64, triggeredAt time.Time) error {
	alert := &alerts.Alert{
		AssetID:     assetID,
		RuleName:    rule.Name,
		Severity:    rule.Severity,
		Status:      alerts.StatusActive,
		Message:     rule.Render(assetID, value),
		MetricName:  rule.MetricName,
		MetricValue: value,
		Threshold:   rule.Threshold,
		TriggeredAt: triggeredAt,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return err
	}
	s.notify(ctx, "triggered", *alert)
	return nil
}

func (s *Service) notify(ctx context.Context, eventType string, alert alerts.Alert) {
	metrics.IncAlertEvent(eventType)
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, Event{Type: eventType, Alert: alert})
}

func (s *Service) atOrNow(value time.Time) time.Time {
	if value.IsZero() {
		return s.clock.Now().UTC()
	}
	return value.UTC()
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
