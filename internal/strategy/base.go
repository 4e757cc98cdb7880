package strategy

import (
	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

const (
	KeyBase       = "base"
	KeyRSI        = "rsi"
	KeySMAC       = "smac"
	KeyEMAC       = "emac"
	KeyMACD       = "macd"
	KeyBBands     = "bbands"
	KeyBuyAndHold = "buynhold"
	KeySentiment  = "sentiment"
	KeyCustom     = "custom"
	KeyTernary    = "ternary"
)

// indicatorSet gives a strategy a registry of its indicators and the IndicatorReporter capability.
type indicatorSet struct {
	registry indicator.IndicatorRegistry
}

func newIndicatorSet(indicators ...indicator.Indicator) (indicatorSet, error) {
	registry := indicator.NewIndicatorRegistry()

	for _, ind := range indicators {
		if err := registry.RegisterIndicator(ind); err != nil {
			return indicatorSet{}, err
		}
	}

	return indicatorSet{registry: registry}, nil
}

// Indicators returns the current value of every indicator past its warm-up.
func (s indicatorSet) Indicators() map[string]float64 {
	return s.registry.Snapshot()
}

// BaseStrategy fires both signals on every bar. Buy wins by priority, so it buys whenever it can.
type BaseStrategy struct{}

func NewBaseStrategy(_ Params) (SignalSource, error) {
	return &BaseStrategy{}, nil
}

func (s *BaseStrategy) Name() string {
	return KeyBase
}

func (s *BaseStrategy) Update(_ SignalContext) error {
	return nil
}

func (s *BaseStrategy) BuySignal(_ SignalContext) types.SignalResult {
	return types.Fire()
}

func (s *BaseStrategy) SellSignal(_ SignalContext) types.SignalResult {
	return types.Fire()
}
