package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

func SentimentDefaults() Params {
	return Params{"senti": 0.2}
}

func CustomDefaults() Params {
	return Params{"upper_limit": 80, "lower_limit": 20}
}

// columnStrategy compares one optional bar column against thresholds.
// Bars without the column never fire.
type columnStrategy struct {
	key    string
	column func(bar types.Bar) optional.Option[float64]
	buy    func(v float64) bool
	sell   func(v float64) bool
	last   optional.Option[float64]
}

func (s *columnStrategy) Name() string {
	return s.key
}

func (s *columnStrategy) Update(ctx SignalContext) error {
	s.last = s.column(ctx.Bar)

	return nil
}

func (s *columnStrategy) BuySignal(_ SignalContext) types.SignalResult {
	return types.SignalIf(s.last.IsSome() && s.buy(s.last.Unwrap()))
}

func (s *columnStrategy) SellSignal(_ SignalContext) types.SignalResult {
	return types.SignalIf(s.last.IsSome() && s.sell(s.last.Unwrap()))
}

func (s *columnStrategy) Indicators() map[string]float64 {
	if s.last.IsNone() {
		return map[string]float64{}
	}

	return map[string]float64{s.key: s.last.Unwrap()}
}

// NewSentimentStrategy buys when the sentiment score is at least senti and sells when it is at most senti.
func NewSentimentStrategy(params Params) (SignalSource, error) {
	senti, err := params.Float("senti")
	if err != nil {
		return nil, err
	}

	return &columnStrategy{
		key:    KeySentiment,
		column: func(bar types.Bar) optional.Option[float64] { return bar.Sentiment },
		buy:    func(v float64) bool { return v >= senti },
		sell:   func(v float64) bool { return v <= senti },
	}, nil
}

// NewCustomStrategy buys when the custom column is below lower_limit and sells when above upper_limit.
func NewCustomStrategy(params Params) (SignalSource, error) {
	upper, err := params.Float("upper_limit")
	if err != nil {
		return nil, err
	}

	lower, err := params.Float("lower_limit")
	if err != nil {
		return nil, err
	}

	return &columnStrategy{
		key:    KeyCustom,
		column: func(bar types.Bar) optional.Option[float64] { return bar.Custom },
		buy:    func(v float64) bool { return v < lower },
		sell:   func(v float64) bool { return v > upper },
	}, nil
}

// NewTernaryStrategy reads a precomputed signal in the custom column: 1 buys, -1 sells, anything else holds.
func NewTernaryStrategy(_ Params) (SignalSource, error) {
	return &columnStrategy{
		key:    KeyTernary,
		column: func(bar types.Bar) optional.Option[float64] { return bar.Custom },
		buy:    func(v float64) bool { return v == 1 },
		sell:   func(v float64) bool { return v == -1 },
	}, nil
}
