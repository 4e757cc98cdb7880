package utils

import (
	"math"

	"github.com/rxtech-lab/argo-quant/internal/backtest/engine/engine_v1/commission_fee"
)

// CalculateMaxQuantity calculates the maximum quantity that can be bought with the given balance, commission included.
func CalculateMaxQuantity(balance float64, price float64, commissionFee commission_fee.CommissionFee) float64 {
	if price <= 0 || balance <= 0 {
		return 0
	}

	maxQty := balance / price

	// usually converges in a couple of steps
	for i := 0; i < 10; i++ {
		totalCost := maxQty*price + commissionFee.Calculate(maxQty, price)
		if totalCost <= balance {
			break
		}

		maxQty = maxQty * balance / totalCost
	}

	return maxQty
}

// RoundToDecimalPrecision rounds the quantity down to the specified decimal precision.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	multiplier := math.Pow10(decimalPrecision)

	return math.Floor(quantity*multiplier+1e-9) / multiplier
}
