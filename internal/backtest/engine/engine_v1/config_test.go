package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultConfig() {
	config := DefaultConfig()

	suite.Equal(100000.0, config.InitialCapital)
	suite.Equal(0.0, config.Commission)
	suite.Equal(commission_fee.ModelPercentage, config.CommissionModel)
	suite.Equal(1.0, config.BuyProportion)
	suite.Equal(1.0, config.SellProportion)
	suite.Equal(1.5, config.ShortMax)
	suite.Equal("M", config.AddCashFreq)
	suite.Equal(types.ExecutionTypeClose, config.ExecutionType)
	suite.Equal("rnorm", config.SortBy)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestTestConfig() {
	startTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	config := TestConfig(startTime, endTime, commission_fee.ModelZero)

	suite.Equal(10000.0, config.InitialCapital)
	suite.Equal(commission_fee.ModelZero, config.CommissionModel)
	suite.Equal(startTime, config.StartTime.Unwrap())
	suite.Equal(endTime, config.EndTime.Unwrap())
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	config := &BacktestEngineV1Config{}
	schema, err := config.GenerateSchema()

	suite.NoError(err)
	suite.NotNil(schema)
	suite.Equal("backtest-engine-v1-config", schema.Title)
	suite.Equal("Configuration schema for BacktestEngineV1", schema.Description)
	suite.Equal("http://json-schema.org/draft-07/schema#", schema.Version)

	sortBy, ok := schema.Properties.Get("sort_by")
	suite.Require().True(ok)
	suite.Equal(AllSortKeys, sortBy.Enum)

	model, ok := schema.Properties.Get("commission_model")
	suite.Require().True(ok)
	suite.Equal(commission_fee.AllModels, model.Enum)

	startTime, ok := schema.Properties.Get("start_time")
	suite.Require().True(ok)
	suite.Equal("date-time", startTime.Format)
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := &BacktestEngineV1Config{}
	schemaJSON, err := config.GenerateSchemaJSON()

	suite.NoError(err)
	suite.NotEmpty(schemaJSON)

	var result map[string]interface{}
	err = json.Unmarshal([]byte(schemaJSON), &result)
	suite.NoError(err)

	suite.Equal("backtest-engine-v1-config", result["title"])
	suite.Contains(result["properties"], "allow_short")
	suite.Contains(result["properties"], "strategies")
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLComplete() {
	yamlData := `
initial_capital: 50000
commission: 0.001
commission_model: interactive_broker
allow_short: true
short_max: 2
stop_loss: 0.05
add_cash_amount: 1000
add_cash_freq: W
execution_type: market
start_time: 2023-01-01T00:00:00Z
end_time: 2023-12-31T00:00:00Z
decimal_precision: 2
sort_by: sharpe
strategies:
  smac:
    fast_period: [5, 10]
    slow_period: [30]
`

	var config BacktestEngineV1Config
	err := yaml.Unmarshal([]byte(yamlData), &config)

	suite.NoError(err)
	suite.Equal(50000.0, config.InitialCapital)
	suite.Equal(0.001, config.Commission)
	suite.Equal(commission_fee.ModelInteractiveBroker, config.CommissionModel)
	suite.True(config.AllowShort)
	suite.Equal(2.0, config.ShortMax)
	suite.Equal(0.05, config.StopLoss)
	suite.Equal(1000.0, config.AddCashAmount)
	suite.Equal("W", config.AddCashFreq)
	suite.Equal(types.ExecutionTypeMarket, config.ExecutionType)
	suite.Equal(2, config.DecimalPrecision)
	suite.Equal("sharpe", config.SortBy)
	suite.Equal([]float64{5, 10}, config.Strategies["smac"]["fast_period"])

	startTime := config.StartTime.Unwrap()
	suite.Equal(2023, startTime.Year())
	suite.Equal(time.January, startTime.Month())
	suite.Equal(1, startTime.Day())

	endTime := config.EndTime.Unwrap()
	suite.Equal(time.December, endTime.Month())
	suite.Equal(31, endTime.Day())

	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLKeepsDefaults() {
	yamlData := `
initial_capital: 25000
`

	var config BacktestEngineV1Config
	err := yaml.Unmarshal([]byte(yamlData), &config)

	suite.NoError(err)
	suite.Equal(25000.0, config.InitialCapital)
	suite.Equal(1.0, config.BuyProportion)
	suite.Equal(1.5, config.ShortMax)
	suite.Equal(types.ExecutionTypeClose, config.ExecutionType)
	suite.Equal("rnorm", config.SortBy)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLOnlyStartTime() {
	yamlData := `
start_time: 2024-06-01
`

	var config BacktestEngineV1Config
	err := yaml.Unmarshal([]byte(yamlData), &config)

	suite.NoError(err)
	suite.True(config.StartTime.IsSome())
	suite.True(config.EndTime.IsNone())
	suite.Equal(time.June, config.StartTime.Unwrap().Month())
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLInvalid() {
	yamlData := `
initial_capital: not_a_number
`

	var config BacktestEngineV1Config
	err := yaml.Unmarshal([]byte(yamlData), &config)

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestValidate() {
	tests := []struct {
		name   string
		mutate func(c *BacktestEngineV1Config)
		code   errors.ErrorCode
	}{
		{
			name:   "non positive capital",
			mutate: func(c *BacktestEngineV1Config) { c.InitialCapital = 0 },
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name:   "proportion above one",
			mutate: func(c *BacktestEngineV1Config) { c.BuyProportion = 1.5 },
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name:   "unknown execution type",
			mutate: func(c *BacktestEngineV1Config) { c.ExecutionType = "vwap" },
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "short with open execution",
			mutate: func(c *BacktestEngineV1Config) {
				c.AllowShort = true
				c.ExecutionType = types.ExecutionTypeOpen
			},
			code: errors.ErrCodeUnsupportedShortExecution,
		},
		{
			name: "unknown cash frequency",
			mutate: func(c *BacktestEngineV1Config) {
				c.AddCashAmount = 100
				c.AddCashFreq = "Q"
			},
			code: errors.ErrCodeInvalidCashFrequency,
		},
		{
			name:   "unknown sort column",
			mutate: func(c *BacktestEngineV1Config) { c.SortBy = "alpha" },
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "end before start",
			mutate: func(c *BacktestEngineV1Config) {
				c.StartTime = optional.Some(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
				c.EndTime = optional.Some(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
			},
			code: errors.ErrCodeMalformedDate,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := DefaultConfig()
			tc.mutate(&config)

			err := config.Validate()
			suite.Require().Error(err)
			suite.Equal(tc.code, errors.GetCode(err))
			suite.True(errors.IsConfigurationError(err))
		})
	}
}

func (suite *ConfigTestSuite) TestToRuntimeConfig() {
	config := DefaultConfig()
	config.Commission = 0.002
	config.AllowShort = true
	config.StopTrail = 0.1
	config.Verbose = true

	runtimeConfig := config.ToRuntimeConfig("SPY")

	suite.Equal("SPY", runtimeConfig.Symbol)
	suite.Equal(100000.0, runtimeConfig.InitCash)
	suite.Equal(0.002, runtimeConfig.Sizing.Commission)
	suite.True(runtimeConfig.Sizing.AllowShort)
	suite.Equal(1.5, runtimeConfig.Sizing.ShortMax)
	suite.Equal(0.1, runtimeConfig.Brackets.StopTrail)
	suite.True(runtimeConfig.TransactionLogging)

	config.Symbol = "QQQ"
	suite.Equal("QQQ", config.ToRuntimeConfig("SPY").Symbol)
}

func (suite *ConfigTestSuite) TestMaxQuantityFollowsCommissionModel() {
	config := DefaultConfig()
	config.CommissionModel = commission_fee.ModelInteractiveBroker

	maxQuantity := config.ToRuntimeConfig("SPY").Sizing.MaxQuantity
	suite.Require().NotNil(maxQuantity)

	// 99.99 shares cost 9999 plus the 1.0 minimum fee
	quantity := maxQuantity(10000, 100)
	suite.InDelta(99.99, quantity, 1e-6)
	suite.LessOrEqual(quantity*100+config.CommissionFee().Calculate(quantity, 100), 10000.0+1e-9)
}

func (suite *ConfigTestSuite) TestQuantityPrecision() {
	config := DefaultConfig()
	suite.Equal(0, config.QuantityPrecision())

	config.Fractional = true
	suite.Equal(6, config.QuantityPrecision())
}

func (suite *ConfigTestSuite) TestCommissionFee() {
	config := DefaultConfig()
	config.Commission = 0.01

	suite.InDelta(1.0, config.CommissionFee().Calculate(1, 100), 1e-9)

	config.CommissionModel = commission_fee.ModelZero
	suite.Equal(0.0, config.CommissionFee().Calculate(1, 100))
}
