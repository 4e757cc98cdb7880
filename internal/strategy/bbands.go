package strategy

import (
	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

func BBandsDefaults() Params {
	return Params{"period": 20, "devfactor": 2.0}
}

// BBandsStrategy buys below the bottom band and sells above the top band.
type BBandsStrategy struct {
	indicatorSet
	bands *indicator.BollingerBands
}

func NewBBandsStrategy(params Params) (SignalSource, error) {
	period, err := params.Period("period")
	if err != nil {
		return nil, err
	}

	devFactor, err := params.Float("devfactor")
	if err != nil {
		return nil, err
	}

	bands, err := indicator.NewBollingerBands("bbands", period, devFactor)
	if err != nil {
		return nil, err
	}

	set, err := newIndicatorSet(bands)
	if err != nil {
		return nil, err
	}

	return &BBandsStrategy{indicatorSet: set, bands: bands}, nil
}

func (s *BBandsStrategy) Name() string {
	return KeyBBands
}

func (s *BBandsStrategy) Update(ctx SignalContext) error {
	s.bands.Update(ctx.Bar.Close)

	return nil
}

func (s *BBandsStrategy) BuySignal(ctx SignalContext) types.SignalResult {
	bottom, _, _, err := s.bands.Bands()

	return types.SignalIf(err == nil && ctx.Bar.Close < bottom)
}

func (s *BBandsStrategy) SellSignal(ctx SignalContext) types.SignalResult {
	_, _, top, err := s.bands.Bands()

	return types.SignalIf(err == nil && ctx.Bar.Close > top)
}

// Indicators adds the outer bands to the middle band reported by the registry.
func (s *BBandsStrategy) Indicators() map[string]float64 {
	values := s.indicatorSet.Indicators()

	if bottom, _, top, err := s.bands.Bands(); err == nil {
		values["bbands_top"] = top
		values["bbands_bot"] = bottom
	}

	return values
}
