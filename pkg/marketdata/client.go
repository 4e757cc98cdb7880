package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/rxtech-lab/argo-quant/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-quant/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// ProviderType defines the type of market data provider.
type ProviderType = provider.ProviderType

const (
	ProviderPolygon = provider.ProviderPolygon
	ProviderBinance = provider.ProviderBinance
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  ProviderType `validate:"required,oneof=polygon binance"`
	DataPath      string       `validate:"required"`
	PolygonAPIKey string       `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a market data download request.
type DownloadParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
	Interval  Interval  `validate:"required"`
}

// FileName is TICKER_START_END_INTERVAL.parquet. The ticker comes first so the
// backtest engine derives the symbol from it.
func (p DownloadParams) FileName() string {
	return fmt.Sprintf("%s_%s_%s_%s.parquet",
		p.Ticker,
		p.StartDate.Format(time.DateOnly),
		p.EndDate.Format(time.DateOnly),
		p.Interval)
}

// Client downloads bars from a provider into parquet files under DataPath.
type Client struct {
	provider provider.Provider
	config   ClientConfig
	validate *validator.Validate
	log      *logger.Logger
}

// NewClient creates a client for the configured provider.
func NewClient(config ClientConfig, log *logger.Logger) (*Client, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, config.PolygonAPIKey, log)
	if err != nil {
		return nil, err
	}

	return NewClientWithProvider(config, marketProvider, log), nil
}

// NewClientWithProvider creates a client on top of an existing provider.
func NewClientWithProvider(config ClientConfig, marketProvider provider.Provider, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Client{
		provider: marketProvider,
		config:   config,
		validate: validator.New(),
		log:      log,
	}
}

// Download fetches the requested bars and returns the path of the parquet file.
// The context can be used to cancel the download operation.
func (c *Client) Download(ctx context.Context, params DownloadParams, onProgress provider.OnDownloadProgress) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	if _, err := ParseInterval(string(params.Interval)); err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create data folder", err)
	}

	outputPath := filepath.Join(c.config.DataPath, params.FileName())
	barWriter := writer.NewParquetWriter(outputPath, c.log)

	defer func() {
		if err := barWriter.Close(); err != nil {
			c.log.Warn("Failed to close writer", zap.Error(err))
		}
	}()

	c.provider.ConfigWriter(barWriter)

	c.log.Info("Downloading market data",
		zap.String("provider", string(c.config.ProviderType)),
		zap.String("ticker", params.Ticker),
		zap.Time("start", params.StartDate),
		zap.Time("end", params.EndDate),
		zap.String("interval", string(params.Interval)),
	)

	path, err := c.provider.Download(ctx, provider.Request{
		Ticker:     params.Ticker,
		Start:      params.StartDate,
		End:        params.EndDate,
		Multiplier: params.Interval.Multiplier(),
		Timespan:   params.Interval.Timespan(),
	}, onProgress)
	if err != nil {
		return "", err
	}

	return path, nil
}
