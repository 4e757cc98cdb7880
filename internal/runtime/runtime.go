// Package runtime drives one strategy through a bar feed: it applies the per-bar
// preamble, asks the signal source for a decision, sizes it, submits it to the
// broker and follows the order until it is filled or aborted.
package runtime

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/bracket"
	"github.com/rxtech-lab/argo-quant/internal/calendar"
	"github.com/rxtech-lab/argo-quant/internal/sizing"
	"github.com/rxtech-lab/argo-quant/internal/tracker"
	"github.com/rxtech-lab/argo-quant/internal/trading"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/shopspring/decimal"
)

// StrategyRuntime is what the backtest engine drives. It also listens to the
// broker it trades with.
type StrategyRuntime interface {
	trading.Listener
	// Name returns the strategy key.
	Name() string
	// Start resets all per-run state. total is the number of bars, zero when unknown.
	Start(total int)
	// Next processes one bar. Errors are per bar and never invalidate the run.
	Next(bar types.Bar) error
	// Stop finalizes the run, materializes the logs and fires the notification.
	Stop(ctx context.Context) (Result, error)
}

// Config is the immutable configuration of one strategy run.
type Config struct {
	Symbol   string
	InitCash float64
	Sizing   sizing.Config
	Brackets bracket.Config
	// SinglePosition enables the flat/long/short tri-state: an entry is only taken
	// from flat and an exit only closes the position.
	SinglePosition bool
	ExecutionType  types.ExecutionType
	AddCashAmount  float64
	// AddCashFreq is M, W or D. Ignored when CashRule is set.
	AddCashFreq string
	CashRule    calendar.RuleFunc
	// InvestDividends adds the bar's dividend column to cash.
	InvestDividends    bool
	PeriodicLogging    bool
	TransactionLogging bool
}

// Result is the outcome of one run.
type Result struct {
	InitCash      float64
	FinalValue    float64
	FinalCash     float64
	PnL           decimal.Decimal
	TotalInjected float64
	Injections    int
	Dividends     float64
	FinalAction   types.Action
	FinalTime     time.Time
	// Indicators is the last indicator snapshot of the strategy, with the last close.
	Indicators map[string]float64
	Logs       tracker.Logs
}
