// Package notification delivers the end-of-run action of a strategy to an
// external channel.
package notification

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// Channel names accepted by New.
const (
	ChannelConsole = "console"
	ChannelSlack   = "slack"
	ChannelWebhook = "webhook"
	ChannelScript  = "script"
)

// Event is the payload sent once a run stops.
type Event struct {
	Symbol     string             `json:"symbol"`
	Action     types.Action       `json:"action"`
	Time       time.Time          `json:"date"`
	Indicators map[string]float64 `json:"indicators,omitempty"`
}

// Notifier is the notification sink consumed by the strategy engine.
type Notifier interface {
	Trigger(ctx context.Context, event Event) error
}

// New builds the notifier for a channel. target is the webhook URL or the
// script path. An empty channel means notifications are disabled and (nil, nil)
// is returned.
func New(channel string, target string, log *logger.Logger) (Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case "":
		return nil, nil
	case ChannelConsole:
		return NewConsoleNotifier(log), nil
	case ChannelSlack, ChannelWebhook:
		n, err := NewWebhookNotifier(target, log)
		if err != nil {
			return nil, err
		}

		return n, nil
	case ChannelScript:
		n, err := NewScriptNotifier(target, log)
		if err != nil {
			return nil, err
		}

		return n, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedChannel, "unsupported notification channel: %s", channel)
	}
}

func formatMessage(event Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s on %s", event.Symbol, event.Action, event.Time.Format(time.DateOnly))

	names := make([]string, 0, len(event.Indicators))
	for name := range event.Indicators {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&b, "\n%s: %.4f", name, event.Indicators[name])
	}

	return b.String()
}
