package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "depot_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	mqttMessagesReceived prometheus.Counter
	mqttMessagesDropped  *prometheus.CounterVec

	readingsPersisted prometheus.Counter
	derivedWritten    *prometheus.CounterVec

	calcCycleTotal   *prometheus.CounterVec
	calcCycleLatency *prometheus.HistogramVec
	calcAssetFaults  prometheus.Counter

	alertCycleTotal   *prometheus.CounterVec
	alertCycleLatency *prometheus.HistogramVec
	alertEventsTotal  *prometheus.CounterVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		mqttMessagesReceived = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "mqtt_messages_received_total",
				Help: "Total MQTT telemetry messages received",
			},
		)
		mqttMessagesDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "mqtt_messages_dropped_total",
				Help: "Total dropped MQTT messages by reason",
			},
			[]string{"reason"},
		)

		readingsPersisted = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "readings_persisted_total",
				Help: "Total raw sensor readings persisted",
			},
		)
		derivedWritten = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "derived_metrics_written_total",
				Help: "Total derived metric values written by metric",
			},
			[]string{"metric"},
		)

		calcCycleTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calc_cycles_total",
				Help: "Total calculation cycles by result",
			},
			[]string{"result"},
		)
		calcCycleLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "calc_cycle_latency_seconds",
				Help:    "Calculation cycle latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		calcAssetFaults = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "calc_asset_faults_total",
				Help: "Total per-asset calculation faults",
			},
		)

		alertCycleTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_cycles_total",
				Help: "Total alert evaluation cycles by result",
			},
			[]string{"result"},
		)
		alertCycleLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "alert_cycle_latency_seconds",
				Help:    "Alert evaluation cycle latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		alertEventsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alert_events_total",
				Help: "Total alert lifecycle events by type",
			},
			[]string{"event"},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report export operations by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			mqttMessagesReceived,
			mqttMessagesDropped,
			readingsPersisted,
			derivedWritten,
			calcCycleTotal,
			calcCycleLatency,
			calcAssetFaults,
			alertCycleTotal,
			alertCycleLatency,
			alertEventsTotal,
			reportExportTotal,
			reportExportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// IncMessageReceived increments the received message counter.
func IncMessageReceived() {
	if mqttMessagesReceived != nil {
		mqttMessagesReceived.Inc()
	}
}

// IncMessageDropped increments the dropped message counter.
func IncMessageDropped(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if mqttMessagesDropped != nil {
		mqttMessagesDropped.WithLabelValues(reason).Inc()
	}
}

// IncReadingPersisted increments the persisted readings counter.
func IncReadingPersisted() {
	if readingsPersisted != nil {
		readingsPersisted.Inc()
	}
}

// IncDerivedWritten increments the derived metric counter.
func IncDerivedWritten(metric string) {
	if metric == "" {
		metric = "unknown"
	}
	if derivedWritten != nil {
		derivedWritten.WithLabelValues(metric).Inc()
	}
}

// ObserveCalcCycle records a calculation cycle latency and result.
func ObserveCalcCycle(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if calcCycleTotal != nil {
		calcCycleTotal.WithLabelValues(result).Inc()
	}
	if calcCycleLatency != nil {
		calcCycleLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncCalcAssetFault increments the per-asset fault counter.
func IncCalcAssetFault() {
	if calcAssetFaults != nil {
		calcAssetFaults.Inc()
	}
}

// ObserveAlertCycle records an alert evaluation cycle latency and result.
func ObserveAlertCycle(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if alertCycleTotal != nil {
		alertCycleTotal.WithLabelValues(result).Inc()
	}
	if alertCycleLatency != nil {
		alertCycleLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncAlertEvent increments alert lifecycle counters.
func IncAlertEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	if alertEventsTotal != nil {
		alertEventsTotal.WithLabelValues(event).Inc()
	}
}

// ObserveReportExport records report export latency and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
