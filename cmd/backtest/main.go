package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rxtech-lab/argo-quant/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-quant/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/internal/version"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	schemaFileName       = "backtest-engine-v1-config.json"
	sampleConfigFileName = "backtest-engine-v1-config.yaml"
)

// progressCallbacks draws one progress bar per run.
func progressCallbacks(quiet bool) engine.LifecycleCallbacks {
	if quiet {
		return engine.LifecycleCallbacks{}
	}

	var bar *progressbar.ProgressBar

	onRunStart := engine.OnRunStartCallback(func(_ string, _ int, params string, _ int, dataFilePath string, totalDataPoints int) error {
		label := params
		if label == "" {
			label = "default"
		}

		bar = progressbar.NewOptions(totalDataPoints,
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetDescription(fmt.Sprintf("%s [%s]", filepath.Base(dataFilePath), label)),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))

		return nil
	})

	onProcessData := engine.OnProcessDataCallback(func(current int, _ int) error {
		if bar != nil {
			return bar.Set(current)
		}

		return nil
	})

	onRunEnd := engine.OnRunEndCallback(func(_ int, _ string, _ int, _ string, _ string) {
		if bar != nil {
			bar.Finish()
			fmt.Println()
		}
	})

	onStrategyStart := engine.OnStrategyStartCallback(func(_ int, strategyName string, _ int) error {
		fmt.Printf("Running strategy %s\n", strategyName)

		return nil
	})

	return engine.LifecycleCallbacks{
		OnStrategyStart: &onStrategyStart,
		OnRunStart:      &onRunStart,
		OnProcessData:   &onProcessData,
		OnRunEnd:        &onRunEnd,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	config, err := os.ReadFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	backtest := enginev1.NewBacktestEngineV1()

	if err := backtest.Initialize(string(config)); err != nil {
		return err
	}

	for _, key := range cmd.StringSlice("strategy") {
		if err := backtest.LoadStrategy(key, nil); err != nil {
			return err
		}
	}

	if err := backtest.SetDataPath(cmd.String("data")); err != nil {
		return err
	}

	if err := backtest.SetResultsFolder(cmd.String("results")); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := backtest.Run(ctx, progressCallbacks(cmd.Bool("quiet")))
	if err != nil {
		return err
	}

	top := min(int(cmd.Int("top")), len(results))
	for i, stats := range results[:top] {
		logResult(log, i+1, stats)
	}

	log.Info("Backtest finished",
		zap.Int("runs", len(results)),
		zap.String("results", filepath.Join(cmd.String("results"), enginev1.ResultsFileName)),
	)

	return nil
}

func logResult(log *logger.Logger, rank int, stats types.RunStats) {
	log.Info("Result",
		zap.Int("rank", rank),
		zap.String("strategy", stats.Strategy),
		zap.String("params", stats.ParamsLabel),
		zap.String("symbol", stats.Symbol),
		zap.Float64("final_value", stats.FinalValue),
		zap.Float64("pnl", stats.PnL),
		zap.Float64("rnorm", stats.Rnorm),
		zap.Float64("sharpe", stats.Sharpe),
		zap.Float64("maxdrawdown", stats.MaxDrawdown),
		zap.Float64("win_rate", stats.TradeResult.WinRate),
		zap.Int("trades", stats.TradeResult.NumberOfTrades),
		zap.String("final_action", string(stats.FinalAction)),
	)
}

// writeSchema writes the config JSON schema into dir, plus a sample config unless
// one already exists.
func writeSchema(dir string) error {
	schemaJSON, err := enginev1.NewBacktestEngineV1().GetConfigSchema()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, schemaFileName), []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}

	samplePath := filepath.Join(dir, sampleConfigFileName)
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	sample := enginev1.DefaultConfig()
	sample.Strategies = map[string]map[string][]float64{
		"smac": {"fast_period": {10, 20}, "slow_period": {30, 50}},
	}

	yamlBytes, err := yaml.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	yamlBytes = append([]byte("# yaml-language-server: $schema="+schemaFileName+"\n"), yamlBytes...)

	if err := os.WriteFile(samplePath, yamlBytes, 0644); err != nil {
		return fmt.Errorf("failed to write sample config: %w", err)
	}

	return nil
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "backtest",
		Version: version.GetVersion(),
		Usage:   "Run strategy parameter grids over historical bars",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run every parameter combination on every data file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the backtest `YAML` config",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Data file or glob pattern (e.g. data/*.parquet)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "results",
						Aliases: []string{"r"},
						Usage:   "Results output directory",
						Value:   "results",
					},
					&cli.StringSliceFlag{
						Name:    "strategy",
						Aliases: []string{"s"},
						Usage:   "Strategy key to run with its default parameters; replaces its grid from the config",
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of best results to print",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Hide progress bars",
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Write the config JSON schema and a sample config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   "config",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					dir := cmd.String("output")
					if err := writeSchema(dir); err != nil {
						return err
					}

					fmt.Printf("Schema written to %s\n", filepath.Join(dir, schemaFileName))

					return nil
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
