// Package sizing turns a firing signal into an order size that the current cash,
// position and short limit can actually support.
package sizing

import (
	"math"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// DefaultMinFractionalCash is the smallest order value accepted in fractional mode.
const DefaultMinFractionalCash = 10.0

// Config holds the sizing parameters of one run.
type Config struct {
	// Commission is the commission rate per unit of traded value (0.001 = 0.1%).
	Commission float64
	// Slippage is the expected adverse price move per fill, as a fraction.
	Slippage       float64
	BuyProportion  float64
	SellProportion float64
	AllowShort     bool
	// ShortMax caps total short notional at ShortMax x portfolio value.
	ShortMax   float64
	Fractional bool
	// MinFractionalCash replaces the one-unit minimum in fractional mode.
	MinFractionalCash float64
	// MaxQuantity, when set, returns the largest quantity cash can buy at price
	// under the broker's commission model. It replaces the flat Commission reserve.
	MaxQuantity func(cash, price float64) float64
}

// PositionSizer computes buy and sell sizes. It never mutates anything.
type PositionSizer struct {
	config Config
}

func NewPositionSizer(config Config) *PositionSizer {
	if config.MinFractionalCash <= 0 {
		config.MinFractionalCash = DefaultMinFractionalCash
	}

	return &PositionSizer{config: config}
}

// Config returns the sizing configuration.
func (s *PositionSizer) Config() Config {
	return s.config
}

// Affordable is the largest size purchasable with cash after reserving slippage and commission.
func (s *PositionSizer) Affordable(cash, price float64) float64 {
	if price <= 0 || cash <= 0 {
		return 0
	}

	fillPrice := price * (1 + s.config.Slippage)

	if s.config.MaxQuantity != nil {
		return math.Max(s.config.MaxQuantity(cash, fillPrice), 0)
	}

	return cash / (fillPrice * (1 + s.config.Commission))
}

// SizeBuy returns the size of a buy. position is the current signed position; a
// short is covered in full before proportion applies to the rest.
// proportion overrides the configured buy proportion when positive.
// A non-positive result is reported as an ErrCodeSizingRejected error.
func (s *PositionSizer) SizeBuy(cash, price, proportion, position float64) (float64, error) {
	if proportion <= 0 {
		proportion = s.config.BuyProportion
	}

	affordable := s.Affordable(cash, price)
	shortAbs := math.Max(-position, 0)

	target := shortAbs + (affordable-shortAbs)*proportion
	size := s.round(math.Min(target, affordable))

	return s.accept(size, price, "buy")
}

// SizeSell returns the size of a sell. Without shorting it only reduces a long.
// With shorting, once the long is fully closed it adds a short leg capped so that
// total short notional stays within ShortMax x portfolioValue.
func (s *PositionSizer) SizeSell(position, price, proportion, portfolioValue float64) (float64, error) {
	if proportion <= 0 {
		proportion = s.config.SellProportion
	}

	longPart := 0.0

	if position > 0 {
		longPart = position
		if proportion < 1 {
			longPart = s.round(position * proportion)
		}
	}

	if !s.config.AllowShort {
		if position <= 0 {
			return 0, errors.New(errors.ErrCodeSizingRejected, "sell without a long position and shorting disabled")
		}

		return s.accept(longPart, price, "sell")
	}

	shortPart := 0.0

	if longPart >= position && price > 0 && portfolioValue > 0 {
		incremental := portfolioValue * s.config.ShortMax * proportion / price
		capUnits := s.config.ShortMax * portfolioValue / price
		currentShort := math.Max(-position, 0)
		shortPart = math.Max(s.round(math.Min(incremental, capUnits-currentShort)), 0)
	}

	return s.accept(longPart+shortPart, price, "short")
}

func (s *PositionSizer) round(size float64) float64 {
	if s.config.Fractional {
		return size
	}

	return math.Floor(size)
}

func (s *PositionSizer) accept(size, price float64, side string) (float64, error) {
	if size <= 0 {
		return 0, errors.Newf(errors.ErrCodeSizingRejected, "%s size %.4f is not positive", side, size)
	}

	if s.config.Fractional && size*price < s.config.MinFractionalCash {
		return 0, errors.Newf(errors.ErrCodeSizingRejected, "%s value %.2f below fractional minimum %.2f", side, size*price, s.config.MinFractionalCash)
	}

	return size, nil
}
