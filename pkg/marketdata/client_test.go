package marketdata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/mocks"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/rxtech-lab/argo-quant/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-quant/pkg/marketdata/writer"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ClientTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockProvider *mocks.MockProvider
	dir          string
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.mockProvider = mocks.NewMockProvider(suite.ctrl)
	suite.dir = filepath.Join(suite.T().TempDir(), "data")
}

func (suite *ClientTestSuite) params() DownloadParams {
	return DownloadParams{
		Ticker:    "SPY",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Interval:  IntervalOneDay,
	}
}

func (suite *ClientTestSuite) TestNewClient() {
	tests := []struct {
		name   string
		config ClientConfig
		code   errors.ErrorCode
	}{
		{name: "binance", config: ClientConfig{ProviderType: ProviderBinance, DataPath: "data"}},
		{name: "polygon", config: ClientConfig{ProviderType: ProviderPolygon, DataPath: "data", PolygonAPIKey: "key"}},
		{
			name:   "polygon without key",
			config: ClientConfig{ProviderType: ProviderPolygon, DataPath: "data"},
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name:   "unknown provider",
			config: ClientConfig{ProviderType: "yahoo", DataPath: "data"},
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name:   "missing data path",
			config: ClientConfig{ProviderType: ProviderBinance},
			code:   errors.ErrCodeInvalidConfiguration,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			client, err := NewClient(tc.config, nil)

			if tc.code != 0 {
				suite.Nil(client)
				suite.Equal(tc.code, errors.GetCode(err))

				return
			}

			suite.NoError(err)
			suite.NotNil(client)
		})
	}
}

func (suite *ClientTestSuite) TestDownloadWritesParquet() {
	client := NewClientWithProvider(ClientConfig{ProviderType: ProviderPolygon, DataPath: suite.dir}, suite.mockProvider, nil)

	var configured writer.BarWriter

	suite.mockProvider.EXPECT().ConfigWriter(gomock.Any()).Do(func(w writer.BarWriter) {
		configured = w
	})
	suite.mockProvider.EXPECT().
		Download(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, request provider.Request, _ provider.OnDownloadProgress) (string, error) {
			suite.Equal("SPY", request.Ticker)
			suite.Equal(1, request.Multiplier)
			suite.Equal(models.Day, request.Timespan)

			suite.Require().NoError(configured.Initialize())
			suite.Require().NoError(configured.Write(types.Bar{
				Time:   request.Start,
				Symbol: request.Ticker,
				Open:   optional.Some(100.0),
				Close:  101,
			}))

			return configured.Finalize()
		})

	path, err := client.Download(context.Background(), suite.params(), nil)
	suite.Require().NoError(err)
	suite.Equal(filepath.Join(suite.dir, "SPY_2024-01-01_2024-01-31_1d.parquet"), path)
	suite.FileExists(path)
}

func (suite *ClientTestSuite) TestDownloadProviderError() {
	client := NewClientWithProvider(ClientConfig{ProviderType: ProviderBinance, DataPath: suite.dir}, suite.mockProvider, nil)

	suite.mockProvider.EXPECT().ConfigWriter(gomock.Any())
	suite.mockProvider.EXPECT().
		Download(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New(errors.ErrCodeMarketDataFetchFailed, "rate limited"))

	_, err := client.Download(context.Background(), suite.params(), nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
}

func (suite *ClientTestSuite) TestDownloadInvalidParams() {
	client := NewClientWithProvider(ClientConfig{ProviderType: ProviderBinance, DataPath: suite.dir}, suite.mockProvider, nil)

	tests := []struct {
		name   string
		mutate func(p *DownloadParams)
		code   errors.ErrorCode
	}{
		{name: "missing ticker", mutate: func(p *DownloadParams) { p.Ticker = "" }, code: errors.ErrCodeInvalidParameter},
		{name: "end before start", mutate: func(p *DownloadParams) { p.EndDate = p.StartDate.AddDate(0, 0, -1) }, code: errors.ErrCodeInvalidParameter},
		{name: "unknown interval", mutate: func(p *DownloadParams) { p.Interval = "2w" }, code: errors.ErrCodeInvalidTimespan},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			params := suite.params()
			tc.mutate(&params)

			_, err := client.Download(context.Background(), params, nil)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *ClientTestSuite) TestFileName() {
	params := suite.params()
	params.Interval = IntervalFourHours

	suite.Equal("SPY_2024-01-01_2024-01-31_4h.parquet", params.FileName())
}
