package notify

import (
	"context"
	"log"

	alertapp "depot-twin/internal/alerts/application"
)

// LogNotifier writes alert events to the process log. Always wired so
// every lifecycle transition leaves a trace even without a webhook.
type LogNotifier struct {
	logger   *log.Logger
	template *Template
}

// NewLogNotifier constructs a log notifier.
func NewLogNotifier(logger *log.Logger, template *Template) (*LogNotifier, error) {
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
	return &LogNotifier{logger: logger, template: template}, nil
}

// Notify implements application.Notifier.
func (n *LogNotifier) Notify(ctx context.Context, event alertapp.Event) {
	if n == nil {
		return
	}
	content, err := n.template.Render(event)
	if err != nil {
		n.logger.Printf("notify: render failed for alert %d: %v", event.Alert.ID, err)
		return
	}
	n.logger.Printf("notify: %s", content)
}
