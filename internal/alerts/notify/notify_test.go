package notify

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	alertapp "depot-twin/internal/alerts/application"
	alerts "depot-twin/internal/alerts/domain"
)

func sampleEvent(eventType string) alertapp.Event {
	return alertapp.Event{
		Type: eventType,
		Alert: alerts.Alert{
			ID:          7,
			AssetID:     "TANK-01",
			RuleName:    "tank-high-level",
			Severity:    alerts.SeverityCritical,
			Status:      alerts.StatusActive,
			Message:     "Tank TANK-01 level 93.50% above 90%",
			MetricName:  "level_percentage",
			MetricValue: 93.5,
			Threshold:   90,
			TriggeredAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestTemplateRender(t *testing.T) {
	tpl, err := NewTemplate("")
	if err != nil {
		t.Fatalf("new template: %v", err)
	}
	content, err := tpl.Render(sampleEvent("triggered"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"[Alert Triggered]", "TANK-01", "tank-high-level", "93.50", "Threshold: 90"} {
		if !strings.Contains(content, want) {
			t.Fatalf("content missing %q:\n%s", want, content)
		}
	}
	if strings.Contains(content, "Resolved:") {
		t.Fatalf("active alert must not carry a resolved line:\n%s", content)
	}

	event := sampleEvent("resolved")
	resolvedAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	event.Alert.Status = alerts.StatusResolved
	event.Alert.ResolvedAt = &resolvedAt
	content, err = tpl.Render(event)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(content, "Resolved: 2025-06-01T12:30:00Z") {
		t.Fatalf("resolved event missing resolution time:\n%s", content)
	}
}

func TestWebhookNotifierPayload(t *testing.T) {
	payloadCh := make(chan webhookPayload, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var payload webhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		payloadCh <- payload
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := NewWebhookNotifier(server.URL, log.New(io.Discard, "", 0), nil)
	if err != nil {
		t.Fatalf("new webhook notifier: %v", err)
	}
	notifier.Notify(context.Background(), sampleEvent("triggered"))

	select {
	case payload := <-payloadCh:
		if payload.MsgType != "text" {
			t.Fatalf("expected text msgtype, got %q", payload.MsgType)
		}
		if !strings.Contains(payload.Text.Content, "TANK-01") {
			t.Fatalf("payload missing asset id: %s", payload.Text.Content)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("webhook not called")
	}
}

type countingNotifier struct {
	events []alertapp.Event
}

func (c *countingNotifier) Notify(ctx context.Context, event alertapp.Event) {
	c.events = append(c.events, event)
}

func TestMultiNotifierFanOut(t *testing.T) {
	first := &countingNotifier{}
	second := &countingNotifier{}
	multi := NewMultiNotifier(first, nil, second)

	multi.Notify(context.Background(), sampleEvent("triggered"))
	if len(first.events) != 1 || len(second.events) != 1 {
		t.Fatalf("expected both notifiers called, got %d and %d", len(first.events), len(second.events))
	}
}
