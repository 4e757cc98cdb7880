package strategy

import (
	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

func MACDDefaults() Params {
	return Params{
		"fast_period":   12,
		"slow_period":   26,
		"signal_period": 9,
		"sma_period":    30,
		"dir_period":    10,
	}
}

// MACDStrategy enters when the MACD line crosses above its signal line while a
// control SMA has been falling over the last dir_period bars, and exits on the
// opposite condition.
type MACDStrategy struct {
	indicatorSet
	macd  *indicator.MACD
	cross *indicator.CrossOver
	sma   *indicator.SMA
	dir   *indicator.Direction
}

func NewMACDStrategy(params Params) (SignalSource, error) {
	periods := map[string]int{}

	for _, key := range []string{"fast_period", "slow_period", "signal_period", "sma_period", "dir_period"} {
		period, err := params.Period(key)
		if err != nil {
			return nil, err
		}

		periods[key] = period
	}

	macd, err := indicator.NewMACD("macd", periods["fast_period"], periods["slow_period"], periods["signal_period"])
	if err != nil {
		return nil, err
	}

	sma, err := indicator.NewSMA("sma", periods["sma_period"])
	if err != nil {
		return nil, err
	}

	dir, err := indicator.NewDirection("smadir", periods["dir_period"])
	if err != nil {
		return nil, err
	}

	cross := indicator.NewCrossOver("crossover")

	set, err := newIndicatorSet(macd, sma, dir, cross)
	if err != nil {
		return nil, err
	}

	return &MACDStrategy{indicatorSet: set, macd: macd, cross: cross, sma: sma, dir: dir}, nil
}

func (s *MACDStrategy) Name() string {
	return KeyMACD
}

func (s *MACDStrategy) Update(ctx SignalContext) error {
	s.macd.Update(ctx.Bar.Close)
	s.sma.Update(ctx.Bar.Close)

	if sma, err := s.sma.Value(); err == nil {
		s.dir.Update(sma)
	}

	macd, err := s.macd.Value()
	if err != nil {
		return nil
	}

	signal, err := s.macd.Signal()
	if err != nil {
		return nil
	}

	s.cross.Update(macd, signal)

	return nil
}

func (s *MACDStrategy) state() (cross float64, dir float64, ok bool) {
	cross, err := s.cross.Value()
	if err != nil {
		return 0, 0, false
	}

	dir, err = s.dir.Value()
	if err != nil {
		return 0, 0, false
	}

	return cross, dir, true
}

func (s *MACDStrategy) BuySignal(_ SignalContext) types.SignalResult {
	cross, dir, ok := s.state()

	return types.SignalIf(ok && cross > 0 && dir < 0)
}

func (s *MACDStrategy) SellSignal(_ SignalContext) types.SignalResult {
	cross, dir, ok := s.state()

	return types.SignalIf(ok && cross < 0 && dir > 0)
}
