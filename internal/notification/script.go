package notification

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

// ScriptNotifier runs an external command with the symbol, action and date as
// arguments. The indicator summary is passed as JSON on stdin.
type ScriptNotifier struct {
	path string
	log  *logger.Logger
}

func NewScriptNotifier(path string, log *logger.Logger) (*ScriptNotifier, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "script channel requires a command path")
	}

	return &ScriptNotifier{path: path, log: log}, nil
}

func (s *ScriptNotifier) Trigger(ctx context.Context, event Event) error {
	indicators, err := json.Marshal(event.Indicators)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotificationFailed, "failed to encode indicators", err)
	}

	//nolint:gosec // the command path comes from the run configuration
	cmd := exec.CommandContext(ctx, s.path, event.Symbol, string(event.Action), event.Time.Format(time.DateOnly))
	cmd.Stdin = strings.NewReader(string(indicators))

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeNotificationFailed, err, "notification script %s failed: %s", s.path, strings.TrimSpace(string(output)))
	}

	s.log.Debug("Notification script finished", zap.String("path", s.path), zap.ByteString("output", output))

	return nil
}
