package types

import "github.com/moznion/go-optional"

// SignalResult is the normalized answer of a signal source.
// Proportion, when set, overrides the configured buy/sell proportion for this order.
type SignalResult struct {
	Fires      bool
	Proportion optional.Option[float64]
}

// NoSignal is the result of a signal that did not fire.
func NoSignal() SignalResult {
	return SignalResult{Fires: false, Proportion: optional.None[float64]()}
}

// Fire returns a firing signal using the configured proportion.
func Fire() SignalResult {
	return SignalResult{Fires: true, Proportion: optional.None[float64]()}
}

// FireWithProportion returns a firing signal that trades the given proportion.
func FireWithProportion(proportion float64) SignalResult {
	return SignalResult{Fires: true, Proportion: optional.Some(proportion)}
}

// SignalIf fires when cond is true.
func SignalIf(cond bool) SignalResult {
	if cond {
		return Fire()
	}

	return NoSignal()
}

// ProportionOr returns the signal's proportion, or fallback when none was given.
func (s SignalResult) ProportionOr(fallback float64) float64 {
	return s.Proportion.TakeOr(fallback)
}

// Action is the decision taken on a bar.
type Action string

const (
	ActionBuy        Action = "buy"
	ActionSell       Action = "sell"
	ActionTakeProfit Action = "take_profit"
	ActionExitLong   Action = "exit_long"
	ActionExitShort  Action = "exit_short"
	ActionNeutral    Action = "neutral"
)

// StrategyPosition is the tri-state used by single position mode.
// StrategyPositionUnconstrained means single position mode is off.
type StrategyPosition string

const (
	StrategyPositionUnconstrained StrategyPosition = "unconstrained"
	StrategyPositionFlat          StrategyPosition = "flat"
	StrategyPositionLong          StrategyPosition = "long"
	StrategyPositionShort         StrategyPosition = "short"
)
