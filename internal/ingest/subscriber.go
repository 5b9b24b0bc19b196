package ingest

import (
	"context"
	"crypto/tls"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	alertapp "depot-twin/internal/alerts/application"
	assets "depot-twin/internal/assets/domain"
	calcapp "depot-twin/internal/calc/application"
	"depot-twin/internal/observability/metrics"
	telemetry "depot-twin/internal/telemetry/domain"
)

const (
	subscribeQoS        = 1
	disconnectQuiesceMS = 250

	defaultCatalogRefresh = 5 * time.Minute
)

// AssetSource loads the active asset catalog.
type AssetSource interface {
	ListActive(ctx context.Context) ([]assets.Asset, error)
}

// Config holds broker connection settings.
type Config struct {
	BrokerURL string
	ClientID  string
	BaseTopic string
	Username  string
	Password  string
	UseTLS    bool
}

// Subscriber consumes sensor telemetry from the broker and drives the
// persistence, derivation and alerting chain for each message. Messages
// for assets not in the catalog are dropped.
type Subscriber struct {
	cfg      Config
	client   mqtt.Client
	readings telemetry.ReadingRepository
	engine   *calcapp.Engine
	alerts   *alertapp.Service
	rules    *alertapp.RuleSnapshot
	assets   AssetSource
	logger   *log.Logger

	refreshEvery time.Duration

	mu      sync.RWMutex
	catalog map[string]assets.Asset
	latest  map[string]Sample
}

// SubscriberOption customizes the subscriber.
type SubscriberOption func(*Subscriber)

// WithCatalogRefresh sets how often the asset catalog is reloaded.
func WithCatalogRefresh(every time.Duration) SubscriberOption {
	return func(s *Subscriber) {
		if every > 0 {
			s.refreshEvery = every
		}
	}
}

// NewSubscriber constructs a telemetry subscriber.
func NewSubscriber(cfg Config, readings telemetry.ReadingRepository, engine *calcapp.Engine, alertService *alertapp.Service, rules *alertapp.RuleSnapshot, assetSource AssetSource, logger *log.Logger, opts ...SubscriberOption) (*Subscriber, error) {
	if cfg.BrokerURL == "" {
		return nil, errors.New("ingest: empty broker url")
	}
	if cfg.BaseTopic == "" {
		return nil, errors.New("ingest: empty base topic")
	}
	if readings == nil {
		return nil, errors.New("ingest: nil reading repo")
	}
	if engine == nil {
		return nil, errors.New("ingest: nil calc engine")
	}
	if assetSource == nil {
		return nil, errors.New("ingest: nil asset source")
	}
	if logger == nil {
		logger = log.Default()
	}
	sub := &Subscriber{
		cfg:          cfg,
		readings:     readings,
		engine:       engine,
		alerts:       alertService,
		rules:        rules,
		assets:       assetSource,
		logger:       logger,
		refreshEvery: defaultCatalogRefresh,
		catalog:      make(map[string]assets.Asset),
		latest:       make(map[string]Sample),
	}
	for _, opt := range opts {
		opt(sub)
	}

	mqttOpts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(time.Minute).
		SetOrderMatters(false)
	if cfg.Username != "" {
		mqttOpts.SetUsername(cfg.Username)
		mqttOpts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		mqttOpts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	mqttOpts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Printf("ingest: connected to broker %s", cfg.BrokerURL)
		token := client.Subscribe(sub.filter(), subscribeQoS, sub.handleMessage)
		token.Wait()
		if token.Error() != nil {
			logger.Printf("ingest: subscribe failed: %v", token.Error())
		}
	})
	mqttOpts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Printf("ingest: connection lost: %v", err)
	})
	sub.client = mqtt.NewClient(mqttOpts)
	return sub, nil
}

// Run connects to the broker and blocks until the context is cancelled,
// refreshing the asset catalog in between.
func (s *Subscriber) Run(ctx context.Context) error {
	if s == nil {
		return errors.New("ingest: nil subscriber")
	}
	if err := s.RefreshCatalog(ctx); err != nil {
		return err
	}
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	ticker := time.NewTicker(s.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()
		case <-ticker.C:
			if err := s.RefreshCatalog(ctx); err != nil {
				s.logger.Printf("ingest: catalog refresh failed: %v", err)
			}
		}
	}
}

// RefreshCatalog reloads the active asset catalog.
func (s *Subscriber) RefreshCatalog(ctx context.Context) error {
	list, err := s.assets.ListActive(ctx)
	if err != nil {
		return err
	}
	catalog := make(map[string]assets.Asset, len(list))
	for _, asset := range list {
		catalog[asset.ID] = asset
	}
	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
	return nil
}

// Latest returns the newest in-memory sample for an asset metric.
func (s *Subscriber) Latest(assetID, metric string) (Sample, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sample, ok := s.latest[assetID+"/"+metric]
	return sample, ok
}

func (s *Subscriber) filter() string {
	return s.cfg.BaseTopic + "/sensor/+/+/data"
}

func (s *Subscriber) shutdown() {
	token := s.client.Unsubscribe(s.filter())
	token.WaitTimeout(2 * time.Second)
	s.client.Disconnect(disconnectQuiesceMS)
	s.logger.Printf("ingest: disconnected from broker")
}

func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	metrics.IncMessageReceived()

	assetID, metric, err := ParseTopic(msg.Topic(), s.cfg.BaseTopic)
	if err != nil {
		metrics.IncMessageDropped("topic")
		s.logger.Printf("ingest: topic %q: %v", msg.Topic(), err)
		return
	}
	sample, err := ParsePayload(msg.Payload())
	if err != nil {
		metrics.IncMessageDropped("payload")
		s.logger.Printf("ingest: payload on %q: %v", msg.Topic(), err)
		return
	}

	s.mu.RLock()
	asset, known := s.catalog[assetID]
	s.mu.RUnlock()
	if !known {
		metrics.IncMessageDropped("unknown_asset")
		s.logger.Printf("ingest: reading for unknown asset %s dropped", assetID)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reading := telemetry.RawReading{
		AssetID:    assetID,
		MetricName: metric,
		SourceID:   "MQTT_sensor",
		Value:      sample.Value,
		ValueText:  sample.ValueText,
		Unit:       sample.Unit,
		Status:     sample.Status,
		Time:       sample.Time,
	}
	if !sample.Numeric {
		reading.Value = math.NaN()
	}
	if err := s.readings.Insert(ctx, reading); err != nil {
		metrics.IncMessageDropped("persist")
		s.logger.Printf("ingest: persist %s/%s: %v", assetID, metric, err)
		return
	}
	metrics.IncReadingPersisted()

	s.mu.Lock()
	s.latest[assetID+"/"+metric] = sample
	s.mu.Unlock()

	chained := sample.Numeric && asset.ChainMetric(metric)
	if chained {
		if err := s.engine.ProcessAssetMetric(ctx, &asset); err != nil {
			s.logger.Printf("ingest: derive for %s: %v", assetID, err)
		}
	}

	if s.alerts != nil && s.rules != nil && sample.Numeric {
		if ruleSet := s.rules.Get(); ruleSet != nil {
			if chained {
				// A chain metric refreshes the asset's calculated
				// outputs, so evaluate every rule for the asset rather
				// than only the raw sample's metric.
				if err := s.alerts.EvaluateAsset(ctx, ruleSet, &asset); err != nil {
					s.logger.Printf("ingest: alerts for %s: %v", assetID, err)
				}
			} else if err := s.alerts.EvaluateMetric(ctx, ruleSet, &asset, metric, sample.Value, sample.Time); err != nil {
				s.logger.Printf("ingest: alerts for %s: %v", assetID, err)
			}
		}
	}
}
