package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/moznion/go-optional"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/rxtech-lab/argo-quant/pkg/marketdata/writer"
	"go.uber.org/zap"
)

// binancePageLimit is the default number of klines per request.
const binancePageLimit = 500

// BinanceKlinesService is the part of the binance klines service the provider uses.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the part of the binance client the provider uses.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceRESTClient struct {
	client *binance.Client
}

func (c binanceRESTClient) NewKlinesService() BinanceKlinesService {
	return binanceKlines{service: c.client.NewKlinesService()}
}

type binanceKlines struct {
	service *binance.KlinesService
}

func (k binanceKlines) Symbol(symbol string) BinanceKlinesService {
	return binanceKlines{service: k.service.Symbol(symbol)}
}

func (k binanceKlines) Interval(interval string) BinanceKlinesService {
	return binanceKlines{service: k.service.Interval(interval)}
}

func (k binanceKlines) StartTime(startTime int64) BinanceKlinesService {
	return binanceKlines{service: k.service.StartTime(startTime)}
}

func (k binanceKlines) EndTime(endTime int64) BinanceKlinesService {
	return binanceKlines{service: k.service.EndTime(endTime)}
}

func (k binanceKlines) Do(ctx context.Context) ([]*binance.Kline, error) {
	return k.service.Do(ctx)
}

// BinanceClient downloads klines from the public binance market data API.
type BinanceClient struct {
	apiClient BinanceAPIClient
	writer    writer.BarWriter
	log       *logger.Logger
}

// NewBinanceClient creates a client without credentials; public market data needs none.
func NewBinanceClient(log *logger.Logger) *BinanceClient {
	return NewBinanceClientWithAPI(binanceRESTClient{client: binance.NewClient("", "")}, log)
}

// NewBinanceClientWithAPI creates a client on top of an existing API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient, log *logger.Logger) *BinanceClient {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &BinanceClient{
		apiClient: apiClient,
		log:       log,
	}
}

// ConfigWriter implements Provider.
func (c *BinanceClient) ConfigWriter(w writer.BarWriter) {
	c.writer = w
}

// Download implements Provider. Pages are requested until a short page arrives or
// the end time is passed. Progress is reported in milliseconds since the request start.
func (c *BinanceClient) Download(ctx context.Context, request Request, onProgress OnDownloadProgress) (string, error) {
	interval, err := BinanceInterval(request.Timespan, request.Multiplier)
	if err != nil {
		return "", err
	}

	if c.writer == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "no writer configured, call ConfigWriter first")
	}

	if err := c.writer.Initialize(); err != nil {
		return "", err
	}

	startMillis := request.Start.UnixMilli()
	endMillis := request.End.UnixMilli()
	total := float64(endMillis - startMillis)
	message := fmt.Sprintf("Downloading %s klines from Binance", request.Ticker)

	current := startMillis
	count := 0

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(request.Ticker).
			Interval(interval).
			StartTime(current).
			EndTime(endMillis).
			Do(ctx)
		if err != nil {
			return "", errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s", request.Ticker)
		}

		if err := writeKlines(c.writer, request.Ticker, klines); err != nil {
			return "", err
		}

		count += len(klines)

		if len(klines) < binancePageLimit {
			break
		}

		// continue after the close of the last kline to avoid duplicates
		current = klines[len(klines)-1].CloseTime + 1

		report(onProgress, float64(current-startMillis), total, message)

		if current >= endMillis {
			break
		}
	}

	report(onProgress, total, total, message)

	c.log.Info("Downloaded binance klines",
		zap.String("ticker", request.Ticker),
		zap.String("interval", interval),
		zap.Int("bars", count),
	)

	return c.writer.Finalize()
}

// writeKlines converts klines to bars timestamped at their open time.
func writeKlines(w writer.BarWriter, ticker string, klines []*binance.Kline) error {
	for _, k := range klines {
		prices, err := parsePrices(k.Open, k.High, k.Low, k.Close, k.Volume)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "malformed kline at %d", k.OpenTime)
		}

		bar := types.Bar{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Symbol: ticker,
			Open:   optional.Some(prices[0]),
			High:   optional.Some(prices[1]),
			Low:    optional.Some(prices[2]),
			Close:  prices[3],
			Volume: optional.Some(prices[4]),
		}

		if err := w.Write(bar); err != nil {
			return err
		}
	}

	return nil
}

func parsePrices(raw ...string) ([]float64, error) {
	values := make([]float64, len(raw))

	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}

		values[i] = v
	}

	return values, nil
}

// BinanceInterval converts a polygon timespan and multiplier to a binance interval.
// Binance intervals: 1s, 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M.
func BinanceInterval(timespan models.Timespan, multiplier int) (string, error) {
	allowed := map[models.Timespan][]int{
		models.Second: {1},
		models.Minute: {1, 3, 5, 15, 30},
		models.Hour:   {1, 2, 4, 6, 8, 12},
		models.Day:    {1, 3},
		models.Week:   {1},
		models.Month:  {1},
	}

	suffix := map[models.Timespan]string{
		models.Second: "s",
		models.Minute: "m",
		models.Hour:   "h",
		models.Day:    "d",
		models.Week:   "w",
		models.Month:  "M",
	}

	multipliers, ok := allowed[timespan]
	if !ok {
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported timespan for Binance: %s", timespan)
	}

	for _, m := range multipliers {
		if m == multiplier {
			return fmt.Sprintf("%d%s", multiplier, suffix[timespan]), nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported %s multiplier for Binance: %d", timespan, multiplier)
}
