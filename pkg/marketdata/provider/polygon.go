package provider

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/rxtech-lab/argo-quant/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// polygonPageLimit is the largest aggregate page polygon serves.
const polygonPageLimit = 50000

// PolygonAggsIterator is the part of the polygon aggregate iterator the client uses.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the part of the polygon REST client the provider uses.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonRESTClient struct {
	client *polygon.Client
}

func (c polygonRESTClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return c.client.ListAggs(ctx, params, options...)
}

// PolygonClient downloads aggregate bars from polygon.io.
type PolygonClient struct {
	apiClient PolygonAPIClient
	writer    writer.BarWriter
	log       *logger.Logger
}

func NewPolygonClient(apiKey string, log *logger.Logger) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	return NewPolygonClientWithAPI(polygonRESTClient{client: polygon.New(apiKey)}, log), nil
}

// NewPolygonClientWithAPI creates a client on top of an existing API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient, log *logger.Logger) *PolygonClient {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &PolygonClient{
		apiClient: apiClient,
		log:       log,
	}
}

// ConfigWriter implements Provider.
func (c *PolygonClient) ConfigWriter(w writer.BarWriter) {
	c.writer = w
}

// Download implements Provider. Progress is reported in days since the request start.
func (c *PolygonClient) Download(ctx context.Context, request Request, onProgress OnDownloadProgress) (string, error) {
	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "no writer configured, call ConfigWriter first")
	}

	if err := c.writer.Initialize(); err != nil {
		return "", err
	}

	totalDays := math.Max(request.End.Sub(request.Start).Hours()/24, 1)
	message := fmt.Sprintf("Downloading %s", request.Ticker)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     request.Ticker,
		Multiplier: request.Multiplier,
		Timespan:   request.Timespan,
		From:       models.Millis(request.Start),
		To:         models.Millis(request.End),
	}.WithLimit(polygonPageLimit)

	aggs := c.apiClient.ListAggs(ctx, params)
	count := 0

	for aggs.Next() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		agg := aggs.Item()

		bar := types.Bar{
			Time:   time.Time(agg.Timestamp),
			Symbol: request.Ticker,
			Open:   optional.Some(agg.Open),
			High:   optional.Some(agg.High),
			Low:    optional.Some(agg.Low),
			Close:  agg.Close,
			Volume: optional.Some(agg.Volume),
		}

		if err := c.writer.Write(bar); err != nil {
			return "", err
		}

		count++

		report(onProgress, math.Min(bar.Time.Sub(request.Start).Hours()/24, totalDays), totalDays, message)
	}

	if err := aggs.Err(); err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to list polygon aggregates for %s", request.Ticker)
	}

	report(onProgress, totalDays, totalDays, message)

	c.log.Info("Downloaded polygon aggregates",
		zap.String("ticker", request.Ticker),
		zap.Int("bars", count),
	)

	return c.writer.Finalize()
}
