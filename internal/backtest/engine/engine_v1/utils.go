package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// getResultFolder returns <results>/<strategy>/<params>/[<start>_<end>/]<data file>.
func getResultFolder(b *BacktestEngineV1, strategyKey string, paramsLabel string, dataPath string) string {
	// Create base folders for strategy and parameter combination
	strategyFolder := filepath.Join(b.resultsFolder, strategyKey)
	paramsFolder := filepath.Join(strategyFolder, paramsFolderName(paramsLabel))

	// Create data folder with time range if specified
	var dataFolder string

	if b.config.StartTime.IsSome() || b.config.EndTime.IsSome() {
		startTimeStr := "all"
		endTimeStr := "all"

		if b.config.StartTime.IsSome() {
			startTimeStr = b.config.StartTime.Unwrap().Format("20060102")
		}

		if b.config.EndTime.IsSome() {
			endTimeStr = b.config.EndTime.Unwrap().Format("20060102")
		}

		timeRange := fmt.Sprintf("%s_%s", startTimeStr, endTimeStr)
		dataFolder = filepath.Join(paramsFolder, timeRange)
	} else {
		dataFolder = paramsFolder
	}

	// Add data file name as the final folder
	dataFileName := strings.TrimSuffix(filepath.Base(dataPath), filepath.Ext(dataPath))

	return filepath.Join(dataFolder, dataFileName)
}

// paramsFolderName turns "fast_period=10,slow_period=30" into "fast_period-10_slow_period-30".
func paramsFolderName(label string) string {
	if label == "" {
		return "default"
	}

	return strings.NewReplacer("=", "-", ",", "_", string(filepath.Separator), "_").Replace(label)
}

// SortRunStats orders results by metric, best first. maxdrawdown sorts ascending,
// every other metric descending. An unknown metric keeps the run order.
func SortRunStats(stats []types.RunStats, metric string) {
	if _, ok := (types.RunStats{}).Metric(metric); !ok {
		return
	}

	ascending := metric == "maxdrawdown"

	sort.SliceStable(stats, func(i, j int) bool {
		a, _ := stats[i].Metric(metric)
		b, _ := stats[j].Metric(metric)

		if ascending {
			return a < b
		}

		return a > b
	})
}

// resultRow is one line of results.csv.
type resultRow struct {
	Strategy          string  `csv:"strategy"`
	Params            string  `csv:"params"`
	Symbol            string  `csv:"symbol"`
	Data              string  `csv:"data"`
	InitCash          float64 `csv:"init_cash"`
	FinalValue        float64 `csv:"final_value"`
	PnL               float64 `csv:"pnl"`
	TotalInjected     float64 `csv:"total_injected"`
	TotalFees         float64 `csv:"total_fees"`
	Rtot              float64 `csv:"rtot"`
	Rnorm             float64 `csv:"rnorm"`
	Sharpe            float64 `csv:"sharpe"`
	MaxDrawdown       float64 `csv:"maxdrawdown"`
	MaxDrawdownPeriod int     `csv:"maxdrawdownperiod"`
	WinRate           float64 `csv:"win_rate"`
	Won               int     `csv:"won"`
	Lost              int     `csv:"lost"`
	Total             int     `csv:"total"`
	FinalAction       string  `csv:"final_action"`
	ID                string  `csv:"id"`
}

func newResultRow(stats types.RunStats) resultRow {
	return resultRow{
		Strategy:          stats.Strategy,
		Params:            stats.ParamsLabel,
		Symbol:            stats.Symbol,
		Data:              filepath.Base(stats.DataPath),
		InitCash:          stats.InitCash,
		FinalValue:        stats.FinalValue,
		PnL:               stats.PnL,
		TotalInjected:     stats.TotalInjected,
		TotalFees:         stats.TotalFees,
		Rtot:              stats.Rtot,
		Rnorm:             stats.Rnorm,
		Sharpe:            stats.Sharpe,
		MaxDrawdown:       stats.MaxDrawdown,
		MaxDrawdownPeriod: stats.MaxDrawdownPeriod,
		WinRate:           stats.TradeResult.WinRate,
		Won:               stats.TradeResult.NumberOfWinningTrades,
		Lost:              stats.TradeResult.NumberOfLosingTrades,
		Total:             stats.TradeResult.NumberOfTrades,
		FinalAction:       string(stats.FinalAction),
		ID:                stats.ID,
	}
}

// WriteResultsCSV writes the results table in the given order.
func WriteResultsCSV(path string, stats []types.RunStats) error {
	rows := make([]resultRow, len(stats))
	for i, s := range stats {
		rows[i] = newResultRow(s)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create results file", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to write results", err)
	}

	return nil
}
