// Package bracket manages the protective exit orders tied to a long entry:
// a stop-loss, a trailing stop and a take-profit level.
package bracket

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/trading"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

// Config holds bracket percentages as fractions (0.05 = 5%). Zero disables a bracket.
type Config struct {
	StopLoss   float64 `yaml:"stop_loss" json:"stop_loss" validate:"gte=0,lt=1"`
	StopTrail  float64 `yaml:"stop_trail" json:"stop_trail" validate:"gte=0,lt=1"`
	TakeProfit float64 `yaml:"take_profit" json:"take_profit" validate:"gte=0"`
}

// Enabled reports whether any bracket is configured.
func (c Config) Enabled() bool {
	return c.StopLoss > 0 || c.StopTrail > 0 || c.TakeProfit > 0
}

// BracketManager keeps at most one stop-loss, one trailing stop and one
// take-profit level alive per open position.
type BracketManager struct {
	broker trading.Broker
	config Config
	log    *logger.Logger

	stopLossID string
	trailID    string
	takeProfit optional.Option[float64]
}

func NewBracketManager(broker trading.Broker, config Config, log *logger.Logger) *BracketManager {
	return &BracketManager{
		broker:     broker,
		config:     config,
		log:        log,
		takeProfit: optional.None[float64](),
	}
}

// AttachStopLoss submits a stop sell at entryPrice*(1-pct) sized to exit the whole entry.
// An existing stop-loss is cancelled first.
func (m *BracketManager) AttachStopLoss(entryPrice, pct, size float64) error {
	if pct <= 0 || size <= 0 {
		return nil
	}

	if err := m.cancel(&m.stopLossID); err != nil {
		return err
	}

	order, err := m.broker.Submit(types.OrderRequest{
		Side:      types.PurchaseTypeSell,
		OrderType: types.OrderTypeStop,
		Quantity:  size,
		Reason:    types.OrderReasonStopLoss,
		StopPrice: optional.Some(entryPrice * (1 - pct)),
	})
	if err != nil {
		return err
	}

	m.stopLossID = order.ID
	m.log.Debug("Stop loss attached",
		zap.String("order_id", order.ID),
		zap.Float64("stop_price", entryPrice*(1-pct)),
		zap.Float64("size", size),
	)

	return nil
}

// AttachTrailingStop submits a trailing stop sell. Any previous trailing stop is cancelled
// so trailing orders never stack.
func (m *BracketManager) AttachTrailingStop(pct, size float64) error {
	if pct <= 0 || size <= 0 {
		return nil
	}

	if err := m.cancel(&m.trailID); err != nil {
		return err
	}

	order, err := m.broker.Submit(types.OrderRequest{
		Side:         types.PurchaseTypeSell,
		OrderType:    types.OrderTypeStopTrail,
		Quantity:     size,
		Reason:       types.OrderReasonStopTrail,
		TrailPercent: optional.Some(pct),
	})
	if err != nil {
		return err
	}

	m.trailID = order.ID
	m.log.Debug("Trailing stop attached",
		zap.String("order_id", order.ID),
		zap.Float64("trail_percent", pct),
		zap.Float64("size", size),
	)

	return nil
}

// AttachTakeProfit arms the take-profit level entryPrice*(1+pct). The level is checked
// on every bar with CheckTakeProfit.
func (m *BracketManager) AttachTakeProfit(entryPrice, pct float64) {
	if pct <= 0 {
		return
	}

	m.takeProfit = optional.Some(entryPrice * (1 + pct))
}

// OnEntry replaces every configured bracket for a freshly filled long entry.
func (m *BracketManager) OnEntry(entryPrice, size float64) error {
	if err := m.CancelAll(); err != nil {
		return err
	}

	if err := m.AttachStopLoss(entryPrice, m.config.StopLoss, size); err != nil {
		return err
	}

	if err := m.AttachTrailingStop(m.config.StopTrail, size); err != nil {
		return err
	}

	m.AttachTakeProfit(entryPrice, m.config.TakeProfit)

	return nil
}

// CheckTakeProfit returns the armed limit price when a long position is open and
// closePrice has reached it.
func (m *BracketManager) CheckTakeProfit(closePrice, position float64) (float64, bool) {
	if position <= 0 || m.takeProfit.IsNone() {
		return 0, false
	}

	limit := m.takeProfit.Unwrap()
	if closePrice >= limit {
		return limit, true
	}

	return 0, false
}

// CancelAll cancels outstanding stop orders and disarms the take-profit level.
func (m *BracketManager) CancelAll() error {
	m.takeProfit = optional.None[float64]()

	if err := m.cancel(&m.stopLossID); err != nil {
		return err
	}

	return m.cancel(&m.trailID)
}

// OnOrderTerminal forgets a bracket order once the broker reports it filled or aborted.
func (m *BracketManager) OnOrderTerminal(order types.Order) {
	if !order.Status.IsTerminal() {
		return
	}

	switch order.ID {
	case m.stopLossID:
		m.stopLossID = ""
	case m.trailID:
		m.trailID = ""
	}
}

// IsBracketOrder reports whether id belongs to a live bracket order.
func (m *BracketManager) IsBracketOrder(id string) bool {
	return id != "" && (id == m.stopLossID || id == m.trailID)
}

// Active returns the ids of the outstanding bracket orders.
func (m *BracketManager) Active() []string {
	ids := make([]string, 0, 2)

	if m.stopLossID != "" {
		ids = append(ids, m.stopLossID)
	}

	if m.trailID != "" {
		ids = append(ids, m.trailID)
	}

	return ids
}

// TakeProfitLevel returns the armed take-profit price, if any.
func (m *BracketManager) TakeProfitLevel() optional.Option[float64] {
	return m.takeProfit
}

// Reset drops all bracket state without talking to the broker.
func (m *BracketManager) Reset() {
	m.stopLossID = ""
	m.trailID = ""
	m.takeProfit = optional.None[float64]()
}

func (m *BracketManager) cancel(id *string) error {
	if *id == "" {
		return nil
	}

	err := m.broker.Cancel(*id)
	if err != nil && !errors.HasCode(err, errors.ErrCodeOrderNotFound) {
		return err
	}

	*id = ""

	return nil
}
