package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-quant/internal/analyzer"
	"github.com/rxtech-lab/argo-quant/internal/backtest/engine"
	"github.com/rxtech-lab/argo-quant/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/notification"
	"github.com/rxtech-lab/argo-quant/internal/runtime"
	"github.com/rxtech-lab/argo-quant/internal/strategy"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type strategyGrid struct {
	key  string
	grid map[string][]float64
}

type BacktestEngineV1 struct {
	config        BacktestEngineV1Config
	strategies    []strategyGrid
	dataPaths     []string
	resultsFolder string
	log           *logger.Logger
	registry      *strategy.Registry
	state         *BacktestState
	datasource    datasource.DataSource
}

func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{
		config:        DefaultConfig(),
		strategies:    nil,
		dataPaths:     nil,
		resultsFolder: "",
		log:           logger.NewNopLogger(),
		registry:      strategy.DefaultRegistry(),
		state:         nil,
		datasource:    nil,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	b.config = DefaultConfig()

	if err := yaml.Unmarshal([]byte(config), &b.config); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse backtest configuration", err)
	}

	if err := b.config.Validate(); err != nil {
		return err
	}

	log, err := logger.NewLoggerWithLevel(b.config.Verbose)
	if err != nil {
		return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", err)
	}

	b.log = log

	b.log.Debug("Backtest engine initialized",
		zap.String("config", config),
	)

	keys := make([]string, 0, len(b.config.Strategies))
	for key := range b.config.Strategies {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	b.strategies = nil
	for _, key := range keys {
		if err := b.LoadStrategy(key, b.config.Strategies[key]); err != nil {
			return err
		}
	}

	if b.state != nil {
		b.state.Close()
	}

	b.state, err = NewBacktestState(b.log)
	if err != nil {
		return err
	}

	return b.state.Initialize()
}

// RegisterStrategy adds a strategy definition to the registry used by LoadStrategy.
func (b *BacktestEngineV1) RegisterStrategy(def strategy.Definition) error {
	return b.registry.Register(def)
}

// LoadStrategy implements engine.Engine. Loading a key twice replaces its grid.
func (b *BacktestEngineV1) LoadStrategy(key string, grid map[string][]float64) error {
	if _, err := b.registry.Get(key); err != nil {
		return err
	}

	for i := range b.strategies {
		if b.strategies[i].key == key {
			b.strategies[i].grid = grid

			return nil
		}
	}

	b.strategies = append(b.strategies, strategyGrid{key: key, grid: grid})
	b.log.Debug("Strategy loaded",
		zap.String("strategy", key),
		zap.Int("total_strategies", len(b.strategies)),
	)

	return nil
}

// SetDataPath implements engine.Engine.
func (b *BacktestEngineV1) SetDataPath(path string) error {
	// use glob to get all the files that match the path
	files, err := filepath.Glob(path)
	if err != nil {
		b.log.Error("Failed to set data path",
			zap.String("path", path),
			zap.Error(err),
		)

		return errors.Wrap(errors.ErrCodeBacktestDataPathError, "invalid data path pattern", err)
	}

	// Convert all paths to absolute paths
	absolutePaths := make([]string, len(files))

	for i, file := range files {
		absPath, err := filepath.Abs(file)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeBacktestDataPathError, err, "failed to resolve %s", file)
		}

		absolutePaths[i] = absPath
	}

	b.dataPaths = absolutePaths
	b.log.Debug("Data paths set",
		zap.Strings("files", absolutePaths),
	)

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder
	b.log.Debug("Results folder set",
		zap.String("folder", folder),
	)

	return nil
}

// SetDataSource implements engine.Engine.
func (b *BacktestEngineV1) SetDataSource(datasource datasource.DataSource) error {
	b.datasource = datasource

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	return b.config.GenerateSchemaJSON()
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (results []types.RunStats, err error) {
	if callbacks.OnBacktestEnd != nil {
		defer func() {
			(*callbacks.OnBacktestEnd)(err)
		}()
	}

	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	// remove results folder if it exists
	if _, statErr := os.Stat(b.resultsFolder); statErr == nil {
		os.RemoveAll(b.resultsFolder)
	}

	if err := os.MkdirAll(b.resultsFolder, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to create results folder", err)
	}

	grids := make([][]strategy.Params, len(b.strategies))
	totalRuns := 0

	for i, s := range b.strategies {
		def, err := b.registry.Get(s.key)
		if err != nil {
			return nil, err
		}

		grids[i] = strategy.Grid(s.grid, def.Defaults)
		totalRuns += len(grids[i]) * len(b.dataPaths)
	}

	if callbacks.OnBacktestStart != nil {
		if err := (*callbacks.OnBacktestStart)(len(b.strategies), totalRuns, len(b.dataPaths)); err != nil {
			return nil, err
		}
	}

	for strategyIndex, s := range b.strategies {
		if callbacks.OnStrategyStart != nil {
			if err := (*callbacks.OnStrategyStart)(strategyIndex, s.key, len(b.strategies)); err != nil {
				return nil, err
			}
		}

		for paramsIndex, params := range grids[strategyIndex] {
			for dataIndex, dataPath := range b.dataPaths {
				stats, err := b.runOnce(ctx, s.key, params, paramsIndex, dataIndex, dataPath, callbacks)
				if err != nil {
					return nil, err
				}

				results = append(results, stats)
			}
		}

		if callbacks.OnStrategyEnd != nil {
			(*callbacks.OnStrategyEnd)(strategyIndex, s.key)
		}
	}

	SortRunStats(results, b.config.SortBy)

	if err := WriteResultsCSV(filepath.Join(b.resultsFolder, ResultsFileName), results); err != nil {
		return nil, err
	}

	return results, nil
}

// runOnce runs one parameter combination on one data file.
func (b *BacktestEngineV1) runOnce(
	ctx context.Context,
	key string,
	params strategy.Params,
	paramsIndex int,
	dataIndex int,
	dataPath string,
	callbacks engine.LifecycleCallbacks,
) (types.RunStats, error) {
	runID := uuid.New().String()
	label := params.String()

	source, err := b.openDataSource(dataPath)
	if err != nil {
		return types.RunStats{}, err
	}
	defer source.Close()

	count, err := source.Count(b.config.StartTime, b.config.EndTime)
	if err != nil {
		return types.RunStats{}, err
	}

	if callbacks.OnRunStart != nil {
		if err := (*callbacks.OnRunStart)(runID, paramsIndex, label, dataIndex, dataPath, count); err != nil {
			return types.RunStats{}, err
		}
	}

	signals, err := b.registry.New(key, params)
	if err != nil {
		return types.RunStats{}, err
	}

	notifier, err := notification.New(b.config.Channel, b.config.ChannelURL, b.log)
	if err != nil {
		return types.RunStats{}, err
	}

	broker := NewBacktestTrading(b.config.InitialCapital, b.config.CommissionFee(), b.config.Slippage, b.config.QuantityPrecision(), b.log)

	symbol := datasource.SymbolFromPath(dataPath)

	strategyEngine, err := runtime.NewStrategyEngine(b.config.ToRuntimeConfig(symbol), signals, broker, notifier, b.log)
	if err != nil {
		return types.RunStats{}, err
	}

	broker.SetListener(strategyEngine)
	strategyEngine.Start(count)

	resultFolderPath := getResultFolder(b, key, label, dataPath)

	b.log.Debug("Running strategy",
		zap.String("run_id", runID),
		zap.String("strategy", key),
		zap.String("params", label),
		zap.String("data", dataPath),
		zap.String("result", resultFolderPath),
	)

	current := 0

	for bar, err := range source.ReadAll(b.config.StartTime, b.config.EndTime) {
		if err != nil {
			return types.RunStats{}, err
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.RunStats{}, ctxErr
		}

		broker.ProcessBar(bar)

		if err := strategyEngine.Next(bar); err != nil {
			b.log.Warn("Failed to process bar",
				zap.Time("time", bar.Time),
				zap.Error(err),
			)
		}

		broker.EndBar()

		current++

		if callbacks.OnProcessData != nil {
			if err := (*callbacks.OnProcessData)(current, count); err != nil {
				return types.RunStats{}, err
			}
		}
	}

	result, err := strategyEngine.Stop(ctx)
	if err != nil {
		return types.RunStats{}, err
	}

	stats, err := b.collectStats(runID, key, params, symbol, dataPath, result)
	if err != nil {
		return types.RunStats{}, err
	}

	if err := b.writeResults(&stats, resultFolderPath); err != nil {
		return types.RunStats{}, err
	}

	if callbacks.OnRunEnd != nil {
		(*callbacks.OnRunEnd)(paramsIndex, label, dataIndex, dataPath, resultFolderPath)
	}

	return stats, nil
}

func (b *BacktestEngineV1) openDataSource(dataPath string) (datasource.DataSource, error) {
	if b.datasource == nil {
		return datasource.Open(dataPath, b.config.DataFormat, b.log)
	}

	if err := b.datasource.Initialize(dataPath); err != nil {
		return nil, err
	}

	return nopCloser{b.datasource}, nil
}

// nopCloser keeps an injected data source open across runs.
type nopCloser struct {
	datasource.DataSource
}

func (nopCloser) Close() error {
	return nil
}

func (b *BacktestEngineV1) collectStats(
	runID string,
	key string,
	params strategy.Params,
	symbol string,
	dataPath string,
	result runtime.Result,
) (types.RunStats, error) {
	if b.state == nil {
		return types.RunStats{}, errors.New(errors.ErrCodeBacktestStateNil, "backtest state is nil")
	}

	if err := b.state.Cleanup(); err != nil {
		return types.RunStats{}, err
	}

	if err := b.state.Load(result.Logs); err != nil {
		return types.RunStats{}, err
	}

	tradeResult, err := b.state.TradeResult()
	if err != nil {
		return types.RunStats{}, err
	}

	totalFees, err := b.state.TotalFees()
	if err != nil {
		return types.RunStats{}, err
	}

	metrics := analyzer.Analyze(analyzer.Series(result.Logs.Periodic, result.Logs.Injections))

	if b.config.Symbol != "" {
		symbol = b.config.Symbol
	}

	return types.RunStats{
		ID:                runID,
		Timestamp:         time.Now(),
		Symbol:            symbol,
		Strategy:          key,
		Params:            params,
		ParamsLabel:       params.String(),
		InitCash:          result.InitCash,
		FinalValue:        result.FinalValue,
		PnL:               result.PnL.InexactFloat64(),
		TotalInjected:     result.TotalInjected,
		TotalFees:         totalFees,
		Rtot:              metrics.Rtot,
		Rnorm:             metrics.Rnorm,
		Sharpe:            metrics.Sharpe,
		MaxDrawdown:       metrics.MaxDrawdown,
		MaxDrawdownPeriod: metrics.MaxDrawdownPeriod,
		TradeResult:       tradeResult,
		FinalAction:       result.FinalAction,
		DataPath:          dataPath,
	}, nil
}

func (b *BacktestEngineV1) writeResults(stats *types.RunStats, resultFolderPath string) error {
	paths, err := b.state.Write(resultFolderPath)
	if err != nil {
		return err
	}

	stats.OrdersFilePath = paths["orders"]
	stats.PeriodicFilePath = paths["periodic"]
	stats.TradesFilePath = paths["trades"]
	stats.IndicatorsFilePath = paths["indicators"]

	if err := types.WriteRunStats(filepath.Join(resultFolderPath, StatsFileName), []types.RunStats{*stats}); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestWriteFailed, "failed to write stats", err)
	}

	return nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if b.state == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "backtest engine is not initialized")
	}

	if len(b.strategies) == 0 {
		b.log.Error("No strategies loaded")

		return errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies loaded")
	}

	if len(b.dataPaths) == 0 {
		b.log.Error("No data paths loaded")

		return errors.New(errors.ErrCodeBacktestDataPathError, "no data paths loaded")
	}

	if b.resultsFolder == "" {
		b.log.Error("No results folder set")

		return errors.New(errors.ErrCodeBacktestNoResultsDir, "no results folder set")
	}

	return nil
}
