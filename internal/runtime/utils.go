package runtime

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

// DefaultShortMax is the short cap used when shorting is enabled without one.
const DefaultShortMax = 1.5

func initialPosition(singlePosition bool) types.StrategyPosition {
	if singlePosition {
		return types.StrategyPositionFlat
	}

	return types.StrategyPositionUnconstrained
}

// nextPosition maps the broker's signed position to the tri-state.
func nextPosition(singlePosition bool, size float64) types.StrategyPosition {
	if !singlePosition {
		return types.StrategyPositionUnconstrained
	}

	switch {
	case size > 0:
		return types.StrategyPositionLong
	case size < 0:
		return types.StrategyPositionShort
	default:
		return types.StrategyPositionFlat
	}
}

func validProportion(p float64) bool {
	return p > 0 && p <= 1
}

func someFloat(v float64) optional.Option[float64] {
	return optional.Some(v)
}
