package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	alertapp "depot-twin/internal/alerts/application"
	alertrepo "depot-twin/internal/alerts/infrastructure/postgres"
	"depot-twin/internal/alerts/notify"
	assetrepo "depot-twin/internal/assets/infrastructure/postgres"
	calcapp "depot-twin/internal/calc/application"
	"depot-twin/internal/config"
	"depot-twin/internal/ingest"
	"depot-twin/internal/observability/metrics"
	"depot-twin/internal/physics/energy"
	"depot-twin/internal/physics/evaporation"
	"depot-twin/internal/physics/massbalance"
	"depot-twin/internal/reports"
	"depot-twin/internal/scheduler"
	telemetryrepo "depot-twin/internal/telemetry/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadEnv()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	fileCfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)

	assetRepo := assetrepo.NewAssetRepository(db)
	strappingRepo := assetrepo.NewStrappingRepository(db)
	readingRepo := telemetryrepo.NewReadingRepository(db)
	derivedRepo := telemetryrepo.NewDerivedRepository(db)
	ruleRepo := alertrepo.NewRuleRepository(db)
	alertRepo := alertrepo.NewAlertRepository(db)

	massCalc := massbalance.NewCalculator(
		massbalance.WithReferenceTemperature(cfg.ReferenceTempC),
		massbalance.WithProperties(fileCfg.ProductTable()),
	)
	energyCalc := energy.NewCalculator(0)
	estimator := evaporation.NewEstimator(fileCfg.Vapor)

	engine, err := calcapp.NewEngine(readingRepo, derivedRepo, strappingRepo, massCalc, energyCalc, logger,
		calcapp.WithTariff(cfg.TariffPerKWh),
		calcapp.WithInterval(cfg.CalcInterval),
	)
	if err != nil {
		logger.Fatalf("calc engine error: %v", err)
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		logger.Fatalf("notifier error: %v", err)
	}

	alertService, err := alertapp.NewService(ruleRepo, alertRepo, readingRepo, derivedRepo, logger,
		alertapp.WithNotifier(notifier))
	if err != nil {
		logger.Fatalf("alert service error: %v", err)
	}
	ruleSnapshot := &alertapp.RuleSnapshot{}

	subscriber, err := ingest.NewSubscriber(ingest.Config{
		BrokerURL: cfg.MQTTBrokerURL,
		ClientID:  cfg.MQTTClientID,
		BaseTopic: cfg.MQTTBaseTopic,
		Username:  cfg.MQTTUsername,
		Password:  cfg.MQTTPassword,
		UseTLS:    cfg.MQTTUseTLS,
	}, readingRepo, engine, alertService, ruleSnapshot, assetRepo, logger)
	if err != nil {
		logger.Fatalf("subscriber error: %v", err)
	}

	calcDriver, err := scheduler.NewCalcDriver(engine, assetRepo, cfg.CalcInterval, logger)
	if err != nil {
		logger.Fatalf("calc driver error: %v", err)
	}
	alertDriver, err := scheduler.NewAlertDriver(alertService, ruleSnapshot, assetRepo, cfg.AlertInterval, logger)
	if err != nil {
		logger.Fatalf("alert driver error: %v", err)
	}

	var reportGen *reports.Generator
	if fileCfg.Reporting.OutputDir != "" {
		reportGen, err = reports.NewGenerator(assetRepo, estimator, fileCfg.Reporting.OutputDir, logger,
			reports.WithClimate(fileCfg.Climate.MonthlyAvgTempsC, fileCfg.Climate.MonthlyTempRangesC),
			reports.WithValuation(fileCfg.Reporting.PricePerLitre, fileCfg.Reporting.Currency),
		)
		if err != nil {
			logger.Fatalf("report generator error: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		calcDriver.Start(ctx)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		alertDriver.Start(ctx)
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := subscriber.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("subscriber stopped: %v", err)
		}
	}()
	if reportGen != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reportGen.Start(ctx)
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("http server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Printf("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("http shutdown error: %v", err)
	}
	wg.Wait()
	logger.Printf("stopped")
}

func buildNotifier(cfg envConfig, logger *log.Logger) (alertapp.Notifier, error) {
	template, err := notify.NewTemplate("")
	if err != nil {
		return nil, err
	}
	logNotifier, err := notify.NewLogNotifier(logger, template)
	if err != nil {
		return nil, err
	}
	if cfg.AlertWebhookURL == "" {
		return logNotifier, nil
	}
	webhook, err := notify.NewWebhookNotifier(cfg.AlertWebhookURL, logger, template)
	if err != nil {
		return nil, err
	}
	return notify.NewMultiNotifier(logNotifier, webhook), nil
}

type envConfig struct {
	DatabaseURL     string
	HTTPAddr        string
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTBaseTopic   string
	MQTTUsername    string
	MQTTPassword    string
	MQTTUseTLS      bool
	CalcInterval    time.Duration
	AlertInterval   time.Duration
	TariffPerKWh    float64
	ReferenceTempC  float64
	AlertWebhookURL string
}

func loadEnv() envConfig {
	cfg := envConfig{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		MQTTBrokerURL:   getenvDefault("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:    getenvDefault("MQTT_CLIENT_ID", "depot-twin-processor"),
		MQTTBaseTopic:   getenvDefault("MQTT_BASE_TOPIC", "demo/depot/dev"),
		MQTTUsername:    getenvDefault("MQTT_USERNAME", ""),
		MQTTPassword:    getenvDefault("MQTT_PASSWORD", ""),
		MQTTUseTLS:      getenvBoolDefault("MQTT_USE_TLS", false),
		CalcInterval:    getenvDuration("CALC_INTERVAL", 30*time.Second),
		AlertInterval:   getenvDuration("ALERT_INTERVAL", 20*time.Second),
		TariffPerKWh:    getenvFloatDefault("ELECTRICITY_RATE_PER_KWH", 2.21),
		ReferenceTempC:  getenvFloatDefault("REFERENCE_TEMP_C", 20),
		AlertWebhookURL: getenvDefault("ALERT_WEBHOOK_URL", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
