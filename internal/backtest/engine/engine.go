package engine

import (
	"context"

	"github.com/rxtech-lab/argo-quant/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

// Lifecycle callback types for backtest phases
// All callbacks with error return can abort execution if they return an error

// OnBacktestStartCallback is called when the entire backtest begins.
type OnBacktestStartCallback func(totalStrategies int, totalRuns int, totalDataFiles int) error

// OnBacktestEndCallback is called when the entire backtest completes (always called via defer).
type OnBacktestEndCallback func(err error)

// OnStrategyStartCallback is called when a strategy iteration begins.
type OnStrategyStartCallback func(strategyIndex int, strategyName string, totalStrategies int) error

// OnStrategyEndCallback is called when a strategy iteration ends.
type OnStrategyEndCallback func(strategyIndex int, strategyName string)

// OnRunStartCallback is called when one parameter combination starts on one data file.
// runID is a unique identifier for this run, generated before processing starts.
type OnRunStartCallback func(runID string, paramsIndex int, params string, dataFileIndex int, dataFilePath string, totalDataPoints int) error

// OnRunEndCallback is called when one parameter combination finishes on one data file.
type OnRunEndCallback func(paramsIndex int, params string, dataFileIndex int, dataFilePath string, resultFolderPath string)

// OnProcessDataCallback is called for each bar processed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for the backtest engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBacktestStart *OnBacktestStartCallback
	OnBacktestEnd   *OnBacktestEndCallback
	OnStrategyStart *OnStrategyStartCallback
	OnStrategyEnd   *OnStrategyEndCallback
	OnRunStart      *OnRunStartCallback
	OnRunEnd        *OnRunEndCallback
	OnProcessData   *OnProcessDataCallback
}

//nolint:interfacebloat // Engine is a core interface that naturally requires multiple methods
type Engine interface {
	// Initialize the engine with the given YAML configuration.
	Initialize(config string) error
	// SetDataPath sets the path to the market data file. Supports loading data from:
	// 1. Multiple files for a single stock (e.g., AAPL_2020.parquet, AAPL_2021.parquet)
	// 2. Multiple stocks in separate files (e.g., AAPL_2020.csv, GOOGL_2020.csv)
	// Accepts glob patterns for batch loading (e.g., "data/*.parquet")
	SetDataPath(path string) error
	// SetResultsFolder sets the output directory for saving backtest results.
	// Each run is written to <folder>/<strategy>/<params>/[<start>_<end>/]<data file>.
	SetResultsFolder(folder string) error
	// LoadStrategy adds a registered strategy with its parameter grid. Could be called
	// multiple times to load multiple strategies.
	LoadStrategy(key string, grid map[string][]float64) error
	// Run runs every parameter combination of every strategy on every data file and
	// returns the result rows sorted by the configured metric.
	// The context can be used to cancel the backtest operation.
	Run(ctx context.Context, callbacks LifecycleCallbacks) ([]types.RunStats, error)
	// SetDataSource replaces the data source opened from the file extension.
	SetDataSource(dataSource datasource.DataSource) error
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
