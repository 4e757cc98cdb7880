package provider

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type mockPolygonAPIClient struct {
	iterator PolygonAggsIterator
	params   *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.params = params

	return m.iterator
}

type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	return m.aggs[m.index-1]
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

type PolygonClientTestSuite struct {
	suite.Suite
	request Request
}

func TestPolygonClientSuite(t *testing.T) {
	suite.Run(t, new(PolygonClientTestSuite))
}

func (suite *PolygonClientTestSuite) SetupTest() {
	suite.request = Request{
		Ticker:     "SPY",
		Start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:        time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC),
		Multiplier: 1,
		Timespan:   models.Day,
	}
}

func agg(day int, close float64) models.Agg {
	return models.Agg{
		Timestamp: models.Millis(time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)),
		Open:      close - 1,
		High:      close + 1,
		Low:       close - 2,
		Close:     close,
		Volume:    1000,
	}
}

func (suite *PolygonClientTestSuite) TestNewPolygonClientRequiresKey() {
	client, err := NewPolygonClient("", nil)
	suite.Nil(client)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	client, err = NewPolygonClient("key", nil)
	suite.NoError(err)
	suite.NotNil(client.apiClient)
}

func (suite *PolygonClientTestSuite) TestDownload() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{agg(2, 100), agg(3, 101), agg(4, 102)}}}
	w := &mockWriter{outputPath: "/tmp/spy.parquet"}

	client := NewPolygonClientWithAPI(api, nil)
	client.ConfigWriter(w)

	var progress []float64

	path, err := client.Download(context.Background(), suite.request, func(current, total float64, _ string) {
		suite.Equal(10.0, total)
		progress = append(progress, current)
	})
	suite.Require().NoError(err)
	suite.Equal("/tmp/spy.parquet", path)
	suite.True(w.initialized)
	suite.Equal(1, w.finalizeCalls)

	suite.Require().Len(w.written, 3)
	suite.Equal("SPY", w.written[0].Symbol)
	suite.Equal(100.0, w.written[0].Close)
	suite.Equal(99.0, w.written[0].Open.Unwrap())
	suite.Equal(1000.0, w.written[2].Volume.Unwrap())
	suite.True(w.written[1].Time.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))

	suite.Equal([]float64{1, 2, 3, 10}, progress)

	suite.Equal("SPY", api.params.Ticker)
	suite.Equal(models.Day, api.params.Timespan)
	suite.Equal(1, api.params.Multiplier)
}

func (suite *PolygonClientTestSuite) TestDownloadWithoutWriter() {
	client := NewPolygonClientWithAPI(&mockPolygonAPIClient{}, nil)

	_, err := client.Download(context.Background(), suite.request, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
}

func (suite *PolygonClientTestSuite) TestDownloadErrors() {
	tests := []struct {
		name     string
		iterator *mockPolygonIterator
		writer   *mockWriter
		code     errors.ErrorCode
	}{
		{
			name:     "writer initialize fails",
			iterator: &mockPolygonIterator{},
			writer:   &mockWriter{initializeErr: errors.New(errors.ErrCodeMarketDataWriteFailed, "init")},
			code:     errors.ErrCodeMarketDataWriteFailed,
		},
		{
			name:     "iterator fails",
			iterator: &mockPolygonIterator{aggs: []models.Agg{agg(2, 100)}, err: stderrors.New("rate limited")},
			writer:   &mockWriter{},
			code:     errors.ErrCodeMarketDataFetchFailed,
		},
		{
			name:     "write fails",
			iterator: &mockPolygonIterator{aggs: []models.Agg{agg(2, 100), agg(3, 101)}},
			writer:   &mockWriter{writeErr: errors.New(errors.ErrCodeMarketDataWriteFailed, "disk full"), writeErrAfterN: 1},
			code:     errors.ErrCodeMarketDataWriteFailed,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			client := NewPolygonClientWithAPI(&mockPolygonAPIClient{iterator: tc.iterator}, nil)
			client.ConfigWriter(tc.writer)

			_, err := client.Download(context.Background(), suite.request, nil)
			suite.Equal(tc.code, errors.GetCode(err))
			suite.Equal(0, tc.writer.finalizeCalls)
		})
	}
}

func (suite *PolygonClientTestSuite) TestDownloadCancelled() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{agg(2, 100)}}}
	client := NewPolygonClientWithAPI(api, nil)
	client.ConfigWriter(&mockWriter{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Download(ctx, suite.request, nil)
	suite.ErrorIs(err, context.Canceled)
}
