package commission_fee

type CommissionFee interface {
	// Calculate returns the commission of a fill of quantity units at price.
	Calculate(quantity float64, price float64) float64
}

type Model string

const (
	ModelPercentage        Model = "percentage"
	ModelInteractiveBroker Model = "interactive_broker"
	ModelZero              Model = "zero_commission"
)

var AllModels = []any{
	ModelPercentage,
	ModelInteractiveBroker,
	ModelZero,
}

// GetCommissionFeeHandler returns the commission model. rate is only used by the
// percentage model. Unknown models fall back to percentage.
func GetCommissionFeeHandler(model Model, rate float64) CommissionFee {
	switch model {
	case ModelInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case ModelZero:
		return NewZeroCommissionFee()
	default:
		return NewPercentageCommissionFee(rate)
	}
}
