package commission_fee

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionFeeTestSuite struct {
	suite.Suite
}

func TestCommissionFeeSuite(t *testing.T) {
	suite.Run(t, new(CommissionFeeTestSuite))
}

func (suite *CommissionFeeTestSuite) TestZeroCommissionFee() {
	fee := NewZeroCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"zero quantity", 0, 0},
		{"small quantity", 10, 0},
		{"large quantity", 10000, 0},
		{"negative quantity", -100, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(tc.quantity, 100)
			suite.Equal(tc.expected, result)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestInteractiveBrokerCommissionFee() {
	fee := NewInteractiveBrokerCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"zero quantity", 0, 1.0},
		{"small quantity - min fee", 10, 1.0},
		{"quantity at threshold", 200, 1.0},
		{"large quantity", 1000, 5.0},
		{"very large quantity", 10000, 50.0},
		{"short sale uses absolute quantity", -1000, 5.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(tc.quantity, 100)
			suite.Equal(tc.expected, result)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestPercentageCommissionFee() {
	tests := []struct {
		name     string
		rate     float64
		quantity float64
		price    float64
		expected float64
	}{
		{"zero rate", 0, 100, 10, 0},
		{"one percent", 0.01, 100, 10, 10},
		{"quarter percent", 0.0025, 400, 50, 50},
		{"negative quantity", 0.01, -100, 10, 10},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			fee := NewPercentageCommissionFee(tc.rate)
			suite.InDelta(tc.expected, fee.Calculate(tc.quantity, tc.price), 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestGetCommissionFeeHandler() {
	tests := []struct {
		name           string
		model          Model
		rate           float64
		expectedResult float64
	}{
		{
			name:           "interactive broker",
			model:          ModelInteractiveBroker,
			expectedResult: 5.0,
		},
		{
			name:           "zero commission",
			model:          ModelZero,
			rate:           0.01,
			expectedResult: 0.0,
		},
		{
			name:           "percentage",
			model:          ModelPercentage,
			rate:           0.001,
			expectedResult: 10.0,
		},
		{
			name:           "unknown model defaults to percentage",
			model:          Model("unknown"),
			rate:           0.002,
			expectedResult: 20.0,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetCommissionFeeHandler(tc.model, tc.rate)
			suite.NotNil(handler)
			suite.InDelta(tc.expectedResult, handler.Calculate(1000, 10), 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestAllModels() {
	suite.Len(AllModels, 3)
	suite.Contains(AllModels, ModelPercentage)
	suite.Contains(AllModels, ModelInteractiveBroker)
	suite.Contains(AllModels, ModelZero)
}
