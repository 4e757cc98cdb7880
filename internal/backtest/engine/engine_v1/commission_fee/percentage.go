package commission_fee

import "math"

// PercentageCommissionFee charges a fixed fraction of the traded value.
type PercentageCommissionFee struct {
	rate float64
}

func NewPercentageCommissionFee(rate float64) CommissionFee {
	return &PercentageCommissionFee{rate: rate}
}

func (c *PercentageCommissionFee) Calculate(quantity float64, price float64) float64 {
	if c.rate <= 0 {
		return 0
	}

	return math.Abs(quantity*price) * c.rate
}
