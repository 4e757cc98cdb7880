package notification

import (
	"context"

	"github.com/rxtech-lab/argo-quant/internal/logger"
	"go.uber.org/zap"
)

// ConsoleNotifier writes the event to the structured log.
type ConsoleNotifier struct {
	log *logger.Logger
}

func NewConsoleNotifier(log *logger.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (c *ConsoleNotifier) Trigger(_ context.Context, event Event) error {
	fields := []zap.Field{
		zap.String("symbol", event.Symbol),
		zap.String("action", string(event.Action)),
		zap.Time("date", event.Time),
	}

	for name, value := range event.Indicators {
		fields = append(fields, zap.Float64(name, value))
	}

	c.log.Info("Strategy final action", fields...)

	return nil
}
