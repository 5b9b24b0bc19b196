package notify

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
	"time"

	alertapp "depot-twin/internal/alerts/application"
)

const DefaultTemplate = `[Alert {{.EventLabel}}]
Asset: {{.AssetID}}
Rule: {{.Rule}}
Severity: {{.Severity}}
Metric: {{.Metric}} = {{.Value}}
Threshold: {{.Threshold}}
Triggered: {{.TriggeredAt}}
{{- if .ResolvedAt }}
Resolved: {{.ResolvedAt}}
{{- end }}
{{.Message}}`

// TemplateData provides fields for rendering notification content.
type TemplateData struct {
	Event       string
	EventLabel  string
	AssetID     string
	Rule        string
	Severity    string
	Metric      string
	Value       string
	Threshold   string
	TriggeredAt string
	ResolvedAt  string
	Message     string
}

// Template renders notification content.
type Template struct {
	tpl *template.Template
}

// NewTemplate parses a notification template, falling back to DefaultTemplate.
func NewTemplate(tpl string) (*Template, error) {
	if tpl == "" {
		tpl = DefaultTemplate
	}
	parsed, err := template.New("alert-notification").Parse(tpl)
	if err != nil {
		return nil, err
	}
	return &Template{tpl: parsed}, nil
}

// Render applies the template to an alert event.
func (t *Template) Render(event alertapp.Event) (string, error) {
	if t == nil || t.tpl == nil {
		return "", errors.New("alert template: nil")
	}
	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, buildTemplateData(event)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildTemplateData(event alertapp.Event) TemplateData {
	alert := event.Alert
	resolved := ""
	if alert.ResolvedAt != nil {
		resolved = alert.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return TemplateData{
		Event:       event.Type,
		EventLabel:  eventLabel(event.Type),
		AssetID:     alert.AssetID,
		Rule:        alert.RuleName,
		Severity:    alert.Severity,
		Metric:      alert.MetricName,
		Value:       fmt.Sprintf("%.2f", alert.MetricValue),
		Threshold:   fmt.Sprintf("%g", alert.Threshold),
		TriggeredAt: alert.TriggeredAt.UTC().Format(time.RFC3339),
		ResolvedAt:  resolved,
		Message:     alert.Message,
	}
}

func eventLabel(event string) string {
	switch event {
	case "triggered":
		return "Triggered"
	case "resolved":
		return "Resolved"
	default:
		return event
	}
}
