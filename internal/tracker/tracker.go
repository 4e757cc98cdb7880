// Package tracker keeps the append-only logs of one run: completed orders,
// per-bar portfolio snapshots, closed trades, cash injections and strategy
// indicator values.
package tracker

import (
	"sort"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// Logs is the materialized output of a run.
type Logs struct {
	Orders     []types.OrderRecord
	Periodic   []types.PeriodicRecord
	Trades     []types.TradeRecord
	Indicators []types.IndicatorRecord
	Injections []types.InjectionRecord
}

// OrderLifecycleTracker records run events. Logs are readable only after Materialize.
type OrderLifecycleTracker struct {
	orders     []types.OrderRecord
	periodic   []types.PeriodicRecord
	trades     []types.TradeRecord
	indicators []types.IndicatorRecord
	injections []types.InjectionRecord

	materialized bool
}

func NewOrderLifecycleTracker() *OrderLifecycleTracker {
	return &OrderLifecycleTracker{}
}

// Reset empties all logs for a new run.
func (t *OrderLifecycleTracker) Reset() {
	t.orders = nil
	t.periodic = nil
	t.trades = nil
	t.indicators = nil
	t.injections = nil
	t.materialized = false
}

// RecordOrder appends a completed order. Orders that are not completed are ignored.
func (t *OrderLifecycleTracker) RecordOrder(order types.Order) {
	if order.Status != types.OrderStatusCompleted {
		return
	}

	recordType := types.OrderRecordTypeSell
	if order.IsBuy() {
		recordType = types.OrderRecordTypeBuy
	}

	t.orders = append(t.orders, types.OrderRecord{
		Time:       order.ExecutedAt,
		Type:       recordType,
		Price:      order.ExecutedPrice,
		Size:       order.ExecutedQty,
		Value:      order.Value(),
		Commission: order.Commission,
		PnL:        order.PnL,
		Reason:     order.Reason,
	})
}

// RecordPeriodic appends a portfolio snapshot.
func (t *OrderLifecycleTracker) RecordPeriodic(at time.Time, value, cash, position float64) {
	t.periodic = append(t.periodic, types.PeriodicRecord{
		Time:           at,
		PortfolioValue: value,
		Cash:           cash,
		PositionSize:   position,
	})
}

// RecordTrade appends a closed trade. Open trades are ignored.
func (t *OrderLifecycleTracker) RecordTrade(trade types.Trade) {
	if !trade.IsClosed {
		return
	}

	t.trades = append(t.trades, types.TradeRecord{
		Time:    trade.ClosedAt,
		PnL:     trade.PnL,
		PnLComm: trade.PnLComm,
	})
}

// RecordInjection appends a cash injection.
func (t *OrderLifecycleTracker) RecordInjection(at time.Time, amount, total float64) {
	t.injections = append(t.injections, types.InjectionRecord{
		Time:          at,
		Amount:        amount,
		TotalInjected: total,
	})
}

// RecordIndicators appends one row per indicator, ordered by name.
func (t *OrderLifecycleTracker) RecordIndicators(at time.Time, values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		t.indicators = append(t.indicators, types.IndicatorRecord{
			Time:  at,
			Name:  name,
			Value: values[name],
		})
	}
}

// Materialize freezes the logs and returns copies of them.
func (t *OrderLifecycleTracker) Materialize() Logs {
	t.materialized = true

	return t.snapshot()
}

// Logs returns the materialized logs. Reading a live run is an error.
func (t *OrderLifecycleTracker) Logs() (Logs, error) {
	if !t.materialized {
		return Logs{}, errors.New(errors.ErrCodeDataUnavailable, "logs are not available before the run stops")
	}

	return t.snapshot(), nil
}

// OrderCount returns the number of completed orders recorded so far.
func (t *OrderLifecycleTracker) OrderCount() int {
	return len(t.orders)
}

func (t *OrderLifecycleTracker) snapshot() Logs {
	return Logs{
		Orders:     append([]types.OrderRecord(nil), t.orders...),
		Periodic:   append([]types.PeriodicRecord(nil), t.periodic...),
		Trades:     append([]types.TradeRecord(nil), t.trades...),
		Indicators: append([]types.IndicatorRecord(nil), t.indicators...),
		Injections: append([]types.InjectionRecord(nil), t.injections...),
	}
}
