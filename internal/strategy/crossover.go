package strategy

import (
	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

func CrossoverDefaults() Params {
	return Params{"fast_period": 10, "slow_period": 30}
}

// CrossoverStrategy buys when the fast average crosses above the slow one and
// sells when it crosses below. It backs both smac and emac.
type CrossoverStrategy struct {
	indicatorSet
	key   string
	fast  indicator.SeriesIndicator
	slow  indicator.SeriesIndicator
	cross *indicator.CrossOver
}

func NewSMACStrategy(params Params) (SignalSource, error) {
	return newCrossoverStrategy(KeySMAC, params, func(name string, period int) (indicator.SeriesIndicator, error) {
		return indicator.NewSMA(name, period)
	})
}

func NewEMACStrategy(params Params) (SignalSource, error) {
	return newCrossoverStrategy(KeyEMAC, params, func(name string, period int) (indicator.SeriesIndicator, error) {
		return indicator.NewEMA(name, period)
	})
}

func newCrossoverStrategy(
	key string,
	params Params,
	newAverage func(name string, period int) (indicator.SeriesIndicator, error),
) (SignalSource, error) {
	fastPeriod, err := params.Period("fast_period")
	if err != nil {
		return nil, err
	}

	slowPeriod, err := params.Period("slow_period")
	if err != nil {
		return nil, err
	}

	fast, err := newAverage("fast", fastPeriod)
	if err != nil {
		return nil, err
	}

	slow, err := newAverage("slow", slowPeriod)
	if err != nil {
		return nil, err
	}

	cross := indicator.NewCrossOver("crossover")

	set, err := newIndicatorSet(fast, slow, cross)
	if err != nil {
		return nil, err
	}

	return &CrossoverStrategy{indicatorSet: set, key: key, fast: fast, slow: slow, cross: cross}, nil
}

func (s *CrossoverStrategy) Name() string {
	return s.key
}

func (s *CrossoverStrategy) Update(ctx SignalContext) error {
	s.fast.Update(ctx.Bar.Close)
	s.slow.Update(ctx.Bar.Close)

	fast, err := s.fast.Value()
	if err != nil {
		return nil
	}

	slow, err := s.slow.Value()
	if err != nil {
		return nil
	}

	s.cross.Update(fast, slow)

	return nil
}

func (s *CrossoverStrategy) BuySignal(_ SignalContext) types.SignalResult {
	value, err := s.cross.Value()

	return types.SignalIf(err == nil && value > 0)
}

func (s *CrossoverStrategy) SellSignal(_ SignalContext) types.SignalResult {
	value, err := s.cross.Value()

	return types.SignalIf(err == nil && value < 0)
}
