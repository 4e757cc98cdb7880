package provider

import (
	"context"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/rxtech-lab/argo-quant/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// OnDownloadProgress reports download progress. current and total share a unit
// chosen by the provider; message describes the step.
type OnDownloadProgress = func(current float64, total float64, message string)

// Request describes one historical bar download.
type Request struct {
	Ticker     string
	Start      time.Time
	End        time.Time
	Multiplier int
	Timespan   models.Timespan
}

type Provider interface {
	// ConfigWriter configures the writer the downloaded bars are sent to.
	ConfigWriter(writer writer.BarWriter)
	// Download fetches the bars of the request, writes them and returns the output path.
	// The context can be used to cancel the download operation.
	// onProgress may be nil.
	Download(ctx context.Context, request Request, onProgress OnDownloadProgress) (path string, err error)
}

// NewMarketDataProvider creates a provider. apiKey is only used by polygon.
func NewMarketDataProvider(providerType ProviderType, apiKey string, log *logger.Logger) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient(log), nil
	case ProviderPolygon:
		client, err := NewPolygonClient(apiKey, log)
		if err != nil {
			return nil, err
		}

		return client, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

func report(onProgress OnDownloadProgress, current, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}
