package strategy

import (
	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

func RSIDefaults() Params {
	return Params{"rsi_period": 14, "rsi_upper": 70, "rsi_lower": 30}
}

// RSIStrategy buys when RSI is below rsi_lower and sells when it is above rsi_upper.
type RSIStrategy struct {
	indicatorSet
	rsi   *indicator.RSI
	upper float64
	lower float64
}

func NewRSIStrategy(params Params) (SignalSource, error) {
	period, err := params.Period("rsi_period")
	if err != nil {
		return nil, err
	}

	rsi, err := indicator.NewRSI("rsi", period)
	if err != nil {
		return nil, err
	}

	set, err := newIndicatorSet(rsi)
	if err != nil {
		return nil, err
	}

	return &RSIStrategy{
		indicatorSet: set,
		rsi:          rsi,
		upper:        params["rsi_upper"],
		lower:        params["rsi_lower"],
	}, nil
}

func (s *RSIStrategy) Name() string {
	return KeyRSI
}

func (s *RSIStrategy) Update(ctx SignalContext) error {
	s.rsi.Update(ctx.Bar.Close)

	return nil
}

func (s *RSIStrategy) BuySignal(_ SignalContext) types.SignalResult {
	value, err := s.rsi.Value()

	return types.SignalIf(err == nil && value < s.lower)
}

func (s *RSIStrategy) SellSignal(_ SignalContext) types.SignalResult {
	value, err := s.rsi.Value()

	return types.SignalIf(err == nil && value > s.upper)
}
