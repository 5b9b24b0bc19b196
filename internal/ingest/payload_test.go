package ingest

import (
	"errors"
	"testing"
	"time"
)

const baseTopic = "demo/depot/dev"

func TestParseTopic(t *testing.T) {
	assetID, metric, err := ParseTopic("demo/depot/dev/sensor/TANK-01/level_mm/data", baseTopic)
	if err != nil {
		t.Fatalf("ParseTopic: %v", err)
	}
	if assetID != "TANK-01" || metric != "level_mm" {
		t.Fatalf("expected TANK-01/level_mm, got %s/%s", assetID, metric)
	}
}

func TestParseTopic_Rejections(t *testing.T) {
	bad := []string{
		"other/base/sensor/TANK-01/level_mm/data",
		"demo/depot/dev/actuator/TANK-01/level_mm/data",
		"demo/depot/dev/sensor/TANK-01/level_mm/state",
		"demo/depot/dev/sensor/TANK-01/data",
		"demo/depot/dev/sensor/TANK-01/level_mm/extra/data",
		"demo/depot/dev/sensor//level_mm/data",
		"demo/depot/dev/sensor/TANK-01//data",
	}
	for _, topic := range bad {
		if _, _, err := ParseTopic(topic, baseTopic); !errors.Is(err, ErrTopicMismatch) {
			t.Fatalf("topic %q: expected ErrTopicMismatch, got %v", topic, err)
		}
	}
}

func TestParsePayload_Numeric(t *testing.T) {
	sample, err := ParsePayload([]byte(`{"value": 8123.5, "timestamp_utc": "2025-06-01T12:00:00Z", "unit": "mm"}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if !sample.Numeric || sample.Value != 8123.5 {
		t.Fatalf("expected numeric 8123.5, got %+v", sample)
	}
	if sample.Unit != "mm" {
		t.Fatalf("expected unit mm, got %q", sample.Unit)
	}
	if sample.Status != "OK" {
		t.Fatalf("status should default to OK, got %q", sample.Status)
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !sample.Time.Equal(want) {
		t.Fatalf("expected %v, got %v", want, sample.Time)
	}
}

func TestParsePayload_ZonelessTimestampIsUTC(t *testing.T) {
	sample, err := ParsePayload([]byte(`{"value": 1, "timestamp_utc": "2025-06-01T12:00:00.123456"}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 123456000, time.UTC)
	if !sample.Time.Equal(want) {
		t.Fatalf("expected %v, got %v", want, sample.Time)
	}
}

func TestParsePayload_BoolAndString(t *testing.T) {
	sample, err := ParsePayload([]byte(`{"value": true, "timestamp_utc": "2025-06-01T12:00:00Z"}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if !sample.Numeric || sample.Value != 1 {
		t.Fatalf("expected true to map to 1, got %+v", sample)
	}

	sample, err = ParsePayload([]byte(`{"value": "FAULT", "timestamp_utc": "2025-06-01T12:00:00Z", "status": "DEGRADED"}`))
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if sample.Numeric || sample.ValueText != "FAULT" {
		t.Fatalf("expected text sample, got %+v", sample)
	}
	if sample.Status != "DEGRADED" {
		t.Fatalf("explicit status must be kept, got %q", sample.Status)
	}
}

func TestParsePayload_Invalid(t *testing.T) {
	cases := []struct {
		name string
		body string
		want error
	}{
		{"missing value", `{"timestamp_utc": "2025-06-01T12:00:00Z"}`, ErrMissingValue},
		{"missing timestamp", `{"value": 1}`, ErrEmptyTimestamp},
		{"bad timestamp", `{"value": 1, "timestamp_utc": "01/06/2025 12:00"}`, ErrBadTimestamp},
	}
	for _, tc := range cases {
		if _, err := ParsePayload([]byte(tc.body)); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}

	if _, err := ParsePayload([]byte(`{"value": 1,`)); err == nil {
		t.Fatalf("malformed JSON must error")
	}
	if _, err := ParsePayload([]byte(`{"value": {"nested": 1}, "timestamp_utc": "2025-06-01T12:00:00Z"}`)); err == nil {
		t.Fatalf("object values are unsupported")
	}
}
