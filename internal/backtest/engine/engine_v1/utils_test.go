package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/stretchr/testify/suite"
)

// UtilsTestSuite is a test suite for utils package
type UtilsTestSuite struct {
	suite.Suite
}

// TestUtilsSuite runs the test suite
func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestGetResultFolder() {
	tests := []struct {
		name          string
		params        string
		dataPath      string
		strategyName  string
		resultsFolder string
		startTime     optional.Option[time.Time]
		endTime       optional.Option[time.Time]
		expectedPath  string
	}{
		{
			name:          "Basic case without time range",
			params:        "fast_period=10,slow_period=30",
			dataPath:      "/path/to/data.csv",
			strategyName:  "smac",
			resultsFolder: "/results",
			startTime:     optional.None[time.Time](),
			endTime:       optional.None[time.Time](),
			expectedPath:  "/results/smac/fast_period-10_slow_period-30/data",
		},
		{
			name:          "Case with time range",
			params:        "rsi_period=14",
			dataPath:      "/path/to/data.csv",
			strategyName:  "rsi",
			resultsFolder: "/results",
			startTime:     optional.Some(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
			endTime:       optional.Some(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
			expectedPath:  "/results/rsi/rsi_period-14/20230101_20231231/data",
		},
		{
			name:          "Case with only start time",
			params:        "rsi_period=14",
			dataPath:      "/path/to/data.csv",
			strategyName:  "rsi",
			resultsFolder: "/results",
			startTime:     optional.Some(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)),
			endTime:       optional.None[time.Time](),
			expectedPath:  "/results/rsi/rsi_period-14/20230101_all/data",
		},
		{
			name:          "Case with only end time",
			params:        "rsi_period=14",
			dataPath:      "/path/to/data.csv",
			strategyName:  "rsi",
			resultsFolder: "/results",
			startTime:     optional.None[time.Time](),
			endTime:       optional.Some(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)),
			expectedPath:  "/results/rsi/rsi_period-14/all_20231231/data",
		},
		{
			name:          "Strategy without parameters",
			params:        "",
			dataPath:      "/path/to/trading.data.parquet",
			strategyName:  "buynhold",
			resultsFolder: "/results",
			startTime:     optional.None[time.Time](),
			endTime:       optional.None[time.Time](),
			expectedPath:  "/results/buynhold/default/trading.data",
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			mockEngine := &BacktestEngineV1{
				config: BacktestEngineV1Config{
					StartTime: tc.startTime,
					EndTime:   tc.endTime,
				},
				resultsFolder: tc.resultsFolder,
			}

			resultPath := getResultFolder(mockEngine, tc.strategyName, tc.params, tc.dataPath)

			suite.Equal(filepath.Clean(tc.expectedPath), filepath.Clean(resultPath))
		})
	}
}

func (suite *UtilsTestSuite) TestSortRunStats() {
	stats := func() []types.RunStats {
		return []types.RunStats{
			{ID: "a", Rnorm: 0.1, MaxDrawdown: 12},
			{ID: "b", Rnorm: 0.3, MaxDrawdown: 20},
			{ID: "c", Rnorm: -0.2, MaxDrawdown: 5},
		}
	}

	ids := func(stats []types.RunStats) []string {
		result := make([]string, len(stats))
		for i, s := range stats {
			result[i] = s.ID
		}

		return result
	}

	tests := []struct {
		name     string
		metric   string
		expected []string
	}{
		{name: "rnorm descending", metric: "rnorm", expected: []string{"b", "a", "c"}},
		{name: "maxdrawdown ascending", metric: "maxdrawdown", expected: []string{"c", "a", "b"}},
		{name: "unknown metric keeps order", metric: "unknown", expected: []string{"a", "b", "c"}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			sorted := stats()
			SortRunStats(sorted, tc.metric)
			suite.Equal(tc.expected, ids(sorted))
		})
	}
}

func (suite *UtilsTestSuite) TestWriteResultsCSV() {
	path := filepath.Join(suite.T().TempDir(), ResultsFileName)

	stats := []types.RunStats{
		{
			ID:          "run-1",
			Strategy:    "smac",
			ParamsLabel: "fast_period=10,slow_period=30",
			Symbol:      "SPY",
			DataPath:    "/data/spy.csv",
			InitCash:    10000,
			FinalValue:  11000,
			PnL:         1000,
			FinalAction: types.ActionBuy,
			TradeResult: types.TradeResult{NumberOfTrades: 3, NumberOfWinningTrades: 2, NumberOfLosingTrades: 1, WinRate: 2.0 / 3},
		},
	}

	suite.Require().NoError(WriteResultsCSV(path, stats))

	file, err := os.Open(path)
	suite.Require().NoError(err)
	defer file.Close()

	var rows []resultRow
	suite.Require().NoError(gocsv.UnmarshalFile(file, &rows))
	suite.Require().Len(rows, 1)
	suite.Equal("smac", rows[0].Strategy)
	suite.Equal("fast_period=10,slow_period=30", rows[0].Params)
	suite.Equal("spy.csv", rows[0].Data)
	suite.Equal(1000.0, rows[0].PnL)
	suite.Equal(3, rows[0].Total)
	suite.Equal(2, rows[0].Won)
	suite.Equal("buy", rows[0].FinalAction)
}
