package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Topic layout: {base}/sensor/{asset_id}/{metric}/data.
const (
	topicSegmentSensor = "sensor"
	topicSegmentData   = "data"
)

var (
	ErrTopicMismatch  = errors.New("ingest: topic does not match sensor layout")
	ErrMissingValue   = errors.New("ingest: payload missing value")
	ErrBadTimestamp   = errors.New("ingest: invalid timestamp_utc, expected ISO 8601")
	ErrEmptyTimestamp = errors.New("ingest: payload missing timestamp_utc")
)

// Payload is the JSON body published on sensor topics.
type Payload struct {
	Value        any    `json:"value"`
	TimestampUTC string `json:"timestamp_utc"`
	Unit         string `json:"unit,omitempty"`
	Status       string `json:"status,omitempty"`
}

// Sample is a validated payload ready for persistence. Non-numeric values
// keep their text form and report Numeric false.
type Sample struct {
	Value     float64
	ValueText string
	Numeric   bool
	Unit      string
	Status    string
	Time      time.Time
}

// ParseTopic extracts the asset id and metric name from a sensor topic.
func ParseTopic(topic, baseTopic string) (assetID, metric string, err error) {
	prefix := baseTopic + "/"
	if !strings.HasPrefix(topic, prefix) {
		return "", "", ErrTopicMismatch
	}
	parts := strings.Split(strings.TrimPrefix(topic, prefix), "/")
	if len(parts) != 4 || parts[0] != topicSegmentSensor || parts[3] != topicSegmentData {
		return "", "", ErrTopicMismatch
	}
	if parts[1] == "" || parts[2] == "" {
		return "", "", ErrTopicMismatch
	}
	return parts[1], parts[2], nil
}

// ParsePayload decodes and validates one message body.
func ParsePayload(body []byte) (Sample, error) {
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Sample{}, fmt.Errorf("ingest: decode payload: %w", err)
	}
	if payload.Value == nil {
		return Sample{}, ErrMissingValue
	}
	if payload.TimestampUTC == "" {
		return Sample{}, ErrEmptyTimestamp
	}
	at, err := parseISOTimestamp(payload.TimestampUTC)
	if err != nil {
		return Sample{}, err
	}

	sample := Sample{
		Unit:   payload.Unit,
		Status: payload.Status,
		Time:   at,
	}
	if sample.Status == "" {
		sample.Status = "OK"
	}
	switch v := payload.Value.(type) {
	case float64:
		sample.Value = v
		sample.Numeric = true
	case bool:
		if v {
			sample.Value = 1
		}
		sample.Numeric = true
	case string:
		sample.ValueText = v
	default:
		return Sample{}, fmt.Errorf("ingest: unsupported value type %T", payload.Value)
	}
	return sample, nil
}

// parseISOTimestamp accepts RFC 3339 timestamps and zone-less ISO 8601
// variants, which are interpreted as UTC.
func parseISOTimestamp(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if at, err := time.Parse(layout, value); err == nil {
			return at.UTC(), nil
		}
	}
	return time.Time{}, ErrBadTimestamp
}
