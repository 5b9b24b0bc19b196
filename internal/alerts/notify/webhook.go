package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	alertapp "depot-twin/internal/alerts/application"
)

// WebhookNotifier posts alert events to an HTTP endpoint as a plain text
// message wrapped in JSON. Delivery is best effort; failures are logged
// and never block alert evaluation.
type WebhookNotifier struct {
	url      string
	client   *http.Client
	logger   *log.Logger
	template *Template
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a webhook notifier.
func NewWebhookNotifier(url string, logger *log.Logger, template *Template) (*WebhookNotifier, error) {
	if url == "" {
		return nil, errors.New("webhook notifier: empty url")
	}
	if logger == nil {
		logger = log.Default()
	}
	if template == nil {
		var err error
		template, err = NewTemplate("")
		if err != nil {
			return nil, err
		}
	}
	return &WebhookNotifier{
		url:      url,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		template: template,
	}, nil
}

// Notify implements application.Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event alertapp.Event) {
	if n == nil || n.url == "" {
		return
	}
	if err := n.send(ctx, event); err != nil {
		n.logger.Printf("notify: webhook delivery failed for alert %d: %v", event.Alert.ID, err)
	}
}

func (n *WebhookNotifier) send(ctx context.Context, event alertapp.Event) error {
	content, err := n.template.Render(event)
	if err != nil {
		return err
	}
	body, err := json.Marshal(webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: content},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook notifier: non-2xx")
	}
	return nil
}
