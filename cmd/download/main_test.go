package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/rxtech-lab/argo-quant/pkg/marketdata"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v3"
)

type DownloadCommandTestSuite struct {
	suite.Suite
}

func TestDownloadCommandSuite(t *testing.T) {
	suite.Run(t, new(DownloadCommandTestSuite))
}

// parse runs the app with a stub action and returns the resolved download config.
func (suite *DownloadCommandTestSuite) parse(args ...string) (marketdata.DownloadConfig, error) {
	app := newApp()

	var (
		config marketdata.DownloadConfig
		err    error
	)

	app.Action = func(_ context.Context, cmd *cli.Command) error {
		config, err = downloadConfig(cmd)

		return nil
	}

	suite.Require().NoError(app.Run(context.Background(), append([]string{"download"}, args...)))

	return config, err
}

func (suite *DownloadCommandTestSuite) TestFlags() {
	config, err := suite.parse("-t", "BTCUSDT", "-p", "binance", "-s", "2024-01-01", "-e", "2024-02-01", "-i", "1h")
	suite.Require().NoError(err)

	suite.Equal(marketdata.ProviderBinance, config.Provider)
	suite.Equal("BTCUSDT", config.Ticker)
	suite.Equal("2024-01-01", config.StartDate)
	suite.Equal("2024-02-01", config.EndDate)
	suite.Equal("1h", config.Interval)
}

func (suite *DownloadCommandTestSuite) TestMissingTicker() {
	_, err := suite.parse("-p", "binance", "-s", "2024-01-01", "-e", "2024-02-01")
	suite.True(errors.IsConfigurationError(err))
}

func (suite *DownloadCommandTestSuite) TestConfigFileExpandsEnv() {
	suite.T().Setenv("POLYGON_API_KEY", "secret")

	path := filepath.Join(suite.T().TempDir(), "download.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(`
provider: polygon
ticker: SPY
start_date: 2024-01-01
end_date: 2024-06-30
interval: 1d
api_key: ${POLYGON_API_KEY}
`), 0644))

	config, err := suite.parse("-c", path)
	suite.Require().NoError(err)
	suite.Equal("secret", config.APIKey)
	suite.Equal("SPY", config.Ticker)
}

func (suite *DownloadCommandTestSuite) TestProgressReporter() {
	report := progressReporter()

	suite.NotPanics(func() {
		report(0, 10, "start")
		report(10, 10, "done")
	})
}
