package writer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ParquetWriterTestSuite struct {
	suite.Suite
	dir string
}

func TestParquetWriterSuite(t *testing.T) {
	suite.Run(t, new(ParquetWriterTestSuite))
}

func (suite *ParquetWriterTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func bar(day int, close float64) types.Bar {
	return types.Bar{
		Time:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Symbol: "SPY",
		Open:   optional.Some(close - 1),
		High:   optional.Some(close + 1),
		Low:    optional.Some(close - 2),
		Close:  close,
		Volume: optional.Some(1000.0),
	}
}

func (suite *ParquetWriterTestSuite) TestRoundTripThroughDataSource() {
	path := filepath.Join(suite.dir, "SPY_2024-01-01_2024-01-05_1d.parquet")
	w := NewParquetWriter(path, nil)

	suite.Require().NoError(w.Initialize())
	defer w.Close()

	// out of order on purpose, the export sorts by time
	for _, b := range []types.Bar{bar(3, 102), bar(2, 101), bar(4, 103)} {
		suite.Require().NoError(w.Write(b))
	}

	suite.Equal(3, w.Written())

	output, err := w.Finalize()
	suite.Require().NoError(err)
	suite.Equal(path, output)
	suite.FileExists(path)

	source, err := datasource.NewDataSource("", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Require().NoError(source.Initialize(path))
	defer source.Close()

	var closes []float64

	for b, err := range source.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)
		suite.Equal("SPY", b.Symbol)
		closes = append(closes, b.Close)
	}

	suite.Equal([]float64{101, 102, 103}, closes)
}

func (suite *ParquetWriterTestSuite) TestMissingColumnsAreNull() {
	path := filepath.Join(suite.dir, "close_only.parquet")
	w := NewParquetWriter(path, logger.NewNopLogger())

	suite.Require().NoError(w.Initialize())
	defer w.Close()

	suite.Require().NoError(w.Write(types.Bar{
		Time:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Symbol: "SPY",
		Close:  100,
	}))

	_, err := w.Finalize()
	suite.Require().NoError(err)

	source, err := datasource.NewDataSource("", logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.Require().NoError(source.Initialize(path))
	defer source.Close()

	for b, err := range source.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)
		suite.True(b.Open.IsNone())
		suite.Equal(100.0, b.Close)
	}
}

func (suite *ParquetWriterTestSuite) TestUseBeforeInitialize() {
	w := NewParquetWriter(filepath.Join(suite.dir, "x.parquet"), nil)

	err := w.Write(bar(2, 100))
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))

	_, err = w.Finalize()
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))

	suite.NoError(w.Close())
}

func (suite *ParquetWriterTestSuite) TestCloseIsIdempotent() {
	w := NewParquetWriter(filepath.Join(suite.dir, "x.parquet"), nil)

	suite.Require().NoError(w.Initialize())
	suite.Require().NoError(w.Write(bar(2, 100)))

	suite.NoError(w.Close())
	suite.NoError(w.Close())
	suite.NoFileExists(w.OutputPath())
}

func (suite *ParquetWriterTestSuite) TestExportToMissingDirectoryFails() {
	w := NewParquetWriter(filepath.Join(suite.dir, "missing", "x.parquet"), nil)

	suite.Require().NoError(w.Initialize())
	defer w.Close()

	suite.Require().NoError(w.Write(bar(2, 100)))

	_, err := w.Finalize()
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataWriteFailed))
}
