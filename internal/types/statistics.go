package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TradeResult summarizes closed trades.
type TradeResult struct {
	// Count of closed trades.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades" csv:"total"`
	// Count of closed trades with a positive pnl after commission.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades" json:"number_of_winning_trades" csv:"won"`
	// Count of closed trades with a non-positive pnl after commission.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades" json:"number_of_losing_trades" csv:"lost"`
	// Win rate in [0, 1].
	WinRate float64 `yaml:"win_rate" json:"win_rate" csv:"win_rate"`
	// Largest winning trade.
	MaximumProfit float64 `yaml:"maximum_profit" json:"maximum_profit" csv:"won_max"`
	// Largest losing trade.
	MaximumLoss float64 `yaml:"maximum_loss" json:"maximum_loss" csv:"lost_max"`
}

// RunStats is one row of the results table: one strategy run with one parameter combination.
type RunStats struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id" json:"id" csv:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp" csv:"timestamp"`
	Symbol    string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Strategy  string    `yaml:"strategy" json:"strategy" csv:"strategy"`
	// Params is the parameter combination used for this run.
	Params map[string]float64 `yaml:"params" json:"params" csv:"-"`
	// ParamsLabel is Params rendered as "k=v,k=v" in key order.
	ParamsLabel string `yaml:"-" json:"-" csv:"params"`

	InitCash      float64 `yaml:"init_cash" json:"init_cash" csv:"init_cash"`
	FinalValue    float64 `yaml:"final_value" json:"final_value" csv:"final_value"`
	PnL           float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
	TotalInjected float64 `yaml:"total_injected" json:"total_injected" csv:"total_injected"`
	TotalFees     float64 `yaml:"total_fees" json:"total_fees" csv:"total_fees"`
	// Rtot is the total log return.
	Rtot float64 `yaml:"rtot" json:"rtot" csv:"rtot"`
	// Rnorm is the annualized return.
	Rnorm float64 `yaml:"rnorm" json:"rnorm" csv:"rnorm"`
	// Sharpe is the annualized sharpe ratio of per-bar returns, zero when undefined.
	Sharpe float64 `yaml:"sharpe" json:"sharpe" csv:"sharpe"`
	// MaxDrawdown is the largest peak-to-trough decline in percent.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown" csv:"maxdrawdown"`
	// MaxDrawdownPeriod is the longest drawdown in bars.
	MaxDrawdownPeriod int `yaml:"max_drawdown_period" json:"max_drawdown_period" csv:"maxdrawdownperiod"`

	TradeResult TradeResult `yaml:"trade_result" json:"trade_result" csv:"-"`
	// FinalAction is the action decided on the last bar.
	FinalAction Action `yaml:"final_action" json:"final_action" csv:"final_action"`

	OrdersFilePath     string `yaml:"orders_file_path,omitempty" json:"orders_file_path,omitempty" csv:"-"`
	PeriodicFilePath   string `yaml:"periodic_file_path,omitempty" json:"periodic_file_path,omitempty" csv:"-"`
	TradesFilePath     string `yaml:"trades_file_path,omitempty" json:"trades_file_path,omitempty" csv:"-"`
	IndicatorsFilePath string `yaml:"indicators_file_path,omitempty" json:"indicators_file_path,omitempty" csv:"-"`
	DataPath           string `yaml:"data_path" json:"data_path" csv:"-"`
}

// Metric returns the named metric used to sort results.
// Names follow the result table columns: pnl, final_value, rtot, rnorm, sharpe,
// maxdrawdown, win_rate, won, lost, total.
func (r RunStats) Metric(name string) (float64, bool) {
	switch name {
	case "pnl":
		return r.PnL, true
	case "final_value":
		return r.FinalValue, true
	case "rtot":
		return r.Rtot, true
	case "rnorm":
		return r.Rnorm, true
	case "sharpe":
		return r.Sharpe, true
	case "maxdrawdown":
		return r.MaxDrawdown, true
	case "win_rate":
		return r.TradeResult.WinRate, true
	case "won":
		return float64(r.TradeResult.NumberOfWinningTrades), true
	case "lost":
		return float64(r.TradeResult.NumberOfLosingTrades), true
	case "total":
		return float64(r.TradeResult.NumberOfTrades), true
	default:
		return 0, false
	}
}

func WriteRunStats(path string, stats []RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}
