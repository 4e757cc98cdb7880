// Package strategy defines signal sources: the policies that say when to buy and
// when to sell. A signal source only answers questions; sizing, order submission
// and bracket handling belong to the strategy engine in internal/runtime.
package strategy

import (
	"github.com/rxtech-lab/argo-quant/internal/types"
)

// SignalContext is what a signal source sees on one bar.
type SignalContext struct {
	Bar types.Bar
	// Index is the zero-based position of Bar in the feed.
	Index int
	// Total is the number of bars in the feed, zero when unknown.
	Total int
	// PositionSize is the broker's signed position before this bar's decision.
	PositionSize float64
}

// IsLastDecisionBar reports whether this is the last bar on which an order can
// still be executed. The final bar of a feed never executes.
func (c SignalContext) IsLastDecisionBar() bool {
	return c.Total > 0 && c.Index >= c.Total-2
}

// SignalSource is implemented by every strategy.
type SignalSource interface {
	// Name returns the registry key of the strategy.
	Name() string
	// Update feeds the bar into the strategy's indicators. Called once per bar,
	// before any signal is queried, including on bars where no decision is made.
	Update(ctx SignalContext) error
	BuySignal(ctx SignalContext) types.SignalResult
	SellSignal(ctx SignalContext) types.SignalResult
}

// TakeProfitSignaler is implemented by strategies with their own take-profit rule.
type TakeProfitSignaler interface {
	TakeProfitSignal(ctx SignalContext) types.SignalResult
}

// ExitLongSignaler is implemented by strategies that can close a long without reversing.
type ExitLongSignaler interface {
	ExitLongSignal(ctx SignalContext) types.SignalResult
}

// ExitShortSignaler is implemented by strategies that can cover a short without reversing.
type ExitShortSignaler interface {
	ExitShortSignal(ctx SignalContext) types.SignalResult
}

// IndicatorReporter is implemented by strategies that expose indicator values for the indicator log.
type IndicatorReporter interface {
	Indicators() map[string]float64
}
