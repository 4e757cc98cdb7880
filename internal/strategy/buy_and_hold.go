package strategy

import "github.com/rxtech-lab/argo-quant/internal/types"

// BuyAndHoldStrategy buys whenever it holds nothing and sells on the last bar
// that can still execute.
type BuyAndHoldStrategy struct{}

func NewBuyAndHoldStrategy(_ Params) (SignalSource, error) {
	return &BuyAndHoldStrategy{}, nil
}

func (s *BuyAndHoldStrategy) Name() string {
	return KeyBuyAndHold
}

func (s *BuyAndHoldStrategy) Update(_ SignalContext) error {
	return nil
}

func (s *BuyAndHoldStrategy) BuySignal(ctx SignalContext) types.SignalResult {
	return types.SignalIf(ctx.PositionSize == 0 && !ctx.IsLastDecisionBar())
}

func (s *BuyAndHoldStrategy) SellSignal(ctx SignalContext) types.SignalResult {
	return types.SignalIf(ctx.IsLastDecisionBar())
}
