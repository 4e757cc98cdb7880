package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-quant/internal/bracket"
	"github.com/rxtech-lab/argo-quant/internal/calendar"
	"github.com/rxtech-lab/argo-quant/internal/runtime"
	"github.com/rxtech-lab/argo-quant/internal/sizing"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/internal/utils"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// Sortable result columns.
var AllSortKeys = []any{
	"pnl", "final_value", "rtot", "rnorm", "sharpe", "maxdrawdown", "win_rate", "won", "lost", "total",
}

type BacktestEngineV1Config struct {
	InitialCapital     float64                    `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting cash of every run,minimum=0" validate:"gt=0"`
	Commission         float64                    `yaml:"commission" json:"commission" jsonschema:"title=Commission,description=Commission rate per unit of traded value (0.001 = 0.1%),minimum=0" validate:"gte=0,lt=1"`
	CommissionModel    commission_fee.Model       `yaml:"commission_model" json:"commission_model" jsonschema:"title=Commission Model,description=How commission is charged" validate:"omitempty,oneof=percentage interactive_broker zero_commission"`
	Slippage           float64                    `yaml:"slippage" json:"slippage" jsonschema:"title=Slippage,description=Adverse price move per fill as a fraction,minimum=0" validate:"gte=0,lt=1"`
	BuyProportion      float64                    `yaml:"buy_prop" json:"buy_prop" jsonschema:"title=Buy Proportion,description=Fraction of affordable size bought on a signal,minimum=0,maximum=1" validate:"gte=0,lte=1"`
	SellProportion     float64                    `yaml:"sell_prop" json:"sell_prop" jsonschema:"title=Sell Proportion,description=Fraction of the position sold on a signal,minimum=0,maximum=1" validate:"gte=0,lte=1"`
	AllowShort         bool                       `yaml:"allow_short" json:"allow_short" jsonschema:"title=Allow Short,description=Allow sell signals to open short positions"`
	ShortMax           float64                    `yaml:"short_max" json:"short_max" jsonschema:"title=Short Max,description=Maximum short notional as a multiple of portfolio value,minimum=0" validate:"gte=0"`
	StopLoss           float64                    `yaml:"stop_loss" json:"stop_loss" jsonschema:"title=Stop Loss,description=Stop loss below the entry price as a fraction,minimum=0,maximum=1" validate:"gte=0,lt=1"`
	StopTrail          float64                    `yaml:"stop_trail" json:"stop_trail" jsonschema:"title=Trailing Stop,description=Trailing stop distance as a fraction,minimum=0,maximum=1" validate:"gte=0,lt=1"`
	TakeProfit         float64                    `yaml:"take_profit" json:"take_profit" jsonschema:"title=Take Profit,description=Take profit above the entry price as a fraction,minimum=0" validate:"gte=0"`
	Fractional         bool                       `yaml:"fractional" json:"fractional" jsonschema:"title=Fractional,description=Allow fractional order sizes"`
	SinglePosition     bool                       `yaml:"single_position" json:"single_position" jsonschema:"title=Single Position,description=Only enter from flat and only exit to flat"`
	AddCashAmount      float64                    `yaml:"add_cash_amount" json:"add_cash_amount" jsonschema:"title=Add Cash Amount,description=Cash injected on every scheduled date,minimum=0" validate:"gte=0"`
	AddCashFreq        string                     `yaml:"add_cash_freq" json:"add_cash_freq" jsonschema:"title=Add Cash Frequency,description=M for monthly or W for weekly or D for daily"`
	InvestDividends    bool                       `yaml:"invest_div" json:"invest_div" jsonschema:"title=Invest Dividends,description=Add the dividend column to cash"`
	ExecutionType      types.ExecutionType        `yaml:"execution_type" json:"execution_type" jsonschema:"title=Execution Type,description=market fills at the current close and close or open at the next bar" validate:"omitempty,oneof=market close open"`
	Verbose            bool                       `yaml:"verbose" json:"verbose" jsonschema:"title=Verbose,description=Log sizing rejections and every transaction"`
	StartTime          optional.Option[time.Time] `yaml:"-" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime            optional.Option[time.Time] `yaml:"-" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
	SortBy             string                     `yaml:"sort_by" json:"sort_by" jsonschema:"title=Sort By,description=Result column used to rank parameter combinations"`
	Symbol             string                     `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Overrides the symbol derived from the data file"`
	Channel            string                     `yaml:"channel" json:"channel" jsonschema:"title=Channel,description=Notification channel: console or slack or webhook or script"`
	ChannelURL         string                     `yaml:"channel_url" json:"channel_url" jsonschema:"title=Channel URL,description=Webhook url or script path of the channel"`
	DataFormat         string                     `yaml:"data_format" json:"data_format" jsonschema:"title=Data Format,description=Column letters such as dohlcv; inferred from the header when empty"`
	PeriodicLogging    bool                       `yaml:"periodic_logging" json:"periodic_logging" jsonschema:"title=Periodic Logging,description=Log a portfolio snapshot on every bar"`
	TransactionLogging bool                       `yaml:"transaction_logging" json:"transaction_logging" jsonschema:"title=Transaction Logging,description=Log every filled order"`
	DecimalPrecision   int                        `yaml:"decimal_precision" json:"decimal_precision" jsonschema:"title=Decimal Precision,description=Decimal places kept on order quantities,minimum=0" validate:"gte=0,lte=12"`

	// Strategies maps a strategy key to its parameter grid.
	Strategies map[string]map[string][]float64 `yaml:"strategies" json:"strategies" jsonschema:"title=Strategies,description=Parameter grid per strategy key"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
// Missing keys keep their defaults.
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain BacktestEngineV1Config

	var times struct {
		StartTime *time.Time `yaml:"start_time"`
		EndTime   *time.Time `yaml:"end_time"`
	}

	config := plain(DefaultConfig())
	if err := unmarshal(&config); err != nil {
		return err
	}

	if err := unmarshal(&times); err != nil {
		return err
	}

	*c = BacktestEngineV1Config(config)

	if times.StartTime != nil {
		c.StartTime = optional.Some(*times.StartTime)
	}

	if times.EndTime != nil {
		c.EndTime = optional.Some(*times.EndTime)
	}

	return nil
}

// Validate checks the configuration. Every failure is a configuration error.
func (c *BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest configuration", err)
	}

	if c.AllowShort && c.ExecutionType == types.ExecutionTypeOpen {
		return errors.New(errors.ErrCodeUnsupportedShortExecution, "shorting is not supported with open execution")
	}

	if c.AddCashAmount > 0 {
		if _, err := calendar.ParseFrequency(c.AddCashFreq); err != nil {
			return err
		}
	}

	if c.SortBy != "" {
		if _, ok := (types.RunStats{}).Metric(c.SortBy); !ok {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown sort column %q", c.SortBy)
		}
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeMalformedDate, "end_time is before start_time")
	}

	return nil
}

// ToRuntimeConfig builds the per-run strategy engine configuration.
func (c *BacktestEngineV1Config) ToRuntimeConfig(symbol string) runtime.Config {
	if c.Symbol != "" {
		symbol = c.Symbol
	}

	commissionFee := c.CommissionFee()

	return runtime.Config{
		Symbol:   symbol,
		InitCash: c.InitialCapital,
		Sizing: sizing.Config{
			Commission:     c.Commission,
			Slippage:       c.Slippage,
			BuyProportion:  c.BuyProportion,
			SellProportion: c.SellProportion,
			AllowShort:     c.AllowShort,
			ShortMax:       c.ShortMax,
			Fractional:     c.Fractional,
			MaxQuantity:    func(cash, price float64) float64 {
				return utils.CalculateMaxQuantity(cash, price, commissionFee)
			},
		},
		Brackets: bracket.Config{
			StopLoss:   c.StopLoss,
			StopTrail:  c.StopTrail,
			TakeProfit: c.TakeProfit,
		},
		SinglePosition:     c.SinglePosition,
		ExecutionType:      c.ExecutionType,
		AddCashAmount:      c.AddCashAmount,
		AddCashFreq:        c.AddCashFreq,
		InvestDividends:    c.InvestDividends,
		PeriodicLogging:    c.PeriodicLogging,
		TransactionLogging: c.TransactionLogging || c.Verbose,
	}
}

// QuantityPrecision is the number of decimals the broker keeps on order quantities:
// DecimalPrecision in fractional mode, whole units otherwise.
func (c *BacktestEngineV1Config) QuantityPrecision() int {
	if !c.Fractional {
		return 0
	}

	return c.DecimalPrecision
}

// CommissionFee returns the commission handler of the configured model.
func (c *BacktestEngineV1Config) CommissionFee() commission_fee.CommissionFee {
	return commission_fee.GetCommissionFeeHandler(c.CommissionModel, c.Commission)
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Model") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllModels,
				}
			}

			if strings.Contains(t.String(), "types.ExecutionType") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: types.AllExecutionTypes,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	if sortBy, ok := schema.Properties.Get("sort_by"); ok {
		sortBy.Enum = AllSortKeys
	}

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config.
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns the configuration used when a key is absent.
func DefaultConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		InitialCapital:   100000,
		Commission:       0,
		CommissionModel:  commission_fee.ModelPercentage,
		BuyProportion:    1,
		SellProportion:   1,
		ShortMax:         runtime.DefaultShortMax,
		AddCashFreq:      "M",
		ExecutionType:    types.ExecutionTypeClose,
		StartTime:        optional.None[time.Time](),
		EndTime:          optional.None[time.Time](),
		SortBy:           "rnorm",
		DecimalPrecision: 6,
		Strategies:       map[string]map[string][]float64{},
	}
}

// TestConfig returns a default configuration limited to [startTime, endTime].
func TestConfig(startTime time.Time, endTime time.Time, model commission_fee.Model) BacktestEngineV1Config {
	config := DefaultConfig()
	config.InitialCapital = 10000
	config.CommissionModel = model
	config.StartTime = optional.Some(startTime)
	config.EndTime = optional.Some(endTime)

	return config
}
