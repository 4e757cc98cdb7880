package notification

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

const webhookTimeout = 10 * time.Second

// WebhookNotifier posts the event as JSON to a Slack-style incoming webhook.
type WebhookNotifier struct {
	url    string
	client *resty.Client
	log    *logger.Logger
}

func NewWebhookNotifier(url string, log *logger.Logger) (*WebhookNotifier, error) {
	if url == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "webhook channel requires a url")
	}

	client := resty.New().
		SetTimeout(webhookTimeout).
		SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{url: url, client: client, log: log}, nil
}

// webhookPayload carries a human readable text field for Slack along with the raw event.
type webhookPayload struct {
	Text string `json:"text"`
	Event
}

func (w *WebhookNotifier) Trigger(ctx context.Context, event Event) error {
	payload := webhookPayload{
		Text:  formatMessage(event),
		Event: event,
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(w.url)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "failed to post webhook", err)
	}

	if resp.IsError() {
		return errors.Newf(errors.ErrCodeNotificationFailed, "webhook returned status %d", resp.StatusCode())
	}

	w.log.Debug("Webhook notification sent", zap.String("url", w.url), zap.Int("status", resp.StatusCode()))

	return nil
}
