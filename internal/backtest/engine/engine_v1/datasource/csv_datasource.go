package datasource

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

// CSVDataSource loads a whole csv bar file into memory.
// The first row is always treated as the header.
type CSVDataSource struct {
	logger *logger.Logger
	spec   string
	format Format
	bars   []types.Bar
}

// NewCSVDataSource creates a csv data source. formatSpec may be empty to infer
// the format from the header row.
func NewCSVDataSource(formatSpec string, logger *logger.Logger) (DataSource, error) {
	if formatSpec != "" {
		if _, err := ParseFormat(formatSpec); err != nil {
			return nil, err
		}
	}

	return &CSVDataSource{logger: logger, spec: formatSpec}, nil
}

// Initialize implements DataSource.
func (c *CSVDataSource) Initialize(path string) error {
	c.logger.Debug("Initializing csv data source", zap.String("path", path))

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open %s", path)
	}
	defer file.Close()

	records, err := gocsv.LazyCSVReader(file).ReadAll()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to parse %s", path)
	}

	if len(records) == 0 {
		return errors.Newf(errors.ErrCodeDataUnavailable, "%s is empty", path)
	}

	header := records[0]

	if c.spec != "" {
		c.format, err = ParseFormat(c.spec)
	} else {
		c.format, err = InferFormat(header)
	}

	if err != nil {
		return err
	}

	symbol := SymbolFromPath(path)
	symbolIndex := -1

	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), ColumnSymbol) {
			symbolIndex = i
		}
	}

	bars := make([]types.Bar, 0, len(records)-1)

	for line, record := range records[1:] {
		rowSymbol := symbol
		if symbolIndex >= 0 && symbolIndex < len(record) && record[symbolIndex] != "" {
			rowSymbol = record[symbolIndex]
		}

		bar, err := c.format.parseRecord(record, rowSymbol)
		if err != nil {
			return errors.Wrapf(errors.GetCode(err), err, "%s line %d", path, line+2)
		}

		bars = append(bars, bar)
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	c.bars = bars

	return nil
}

// ReadAll implements DataSource.
func (c *CSVDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		for _, bar := range c.bars {
			if !inRange(bar.Time, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

// Count implements DataSource.
func (c *CSVDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	count := 0

	for _, bar := range c.bars {
		if inRange(bar.Time, start, end) {
			count++
		}
	}

	return count, nil
}

// Format implements DataSource.
func (c *CSVDataSource) Format() Format {
	return c.format
}

// Close implements DataSource.
func (c *CSVDataSource) Close() error {
	c.bars = nil

	return nil
}

// Open picks the data source for path by extension.
func Open(path string, formatSpec string, logger *logger.Logger) (DataSource, error) {
	var (
		source DataSource
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		source, err = NewCSVDataSource(formatSpec, logger)
	case ".parquet":
		source, err = NewDataSource(formatSpec, logger)
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedDataFormat, "unsupported bar file %s", path)
	}

	if err != nil {
		return nil, err
	}

	if err := source.Initialize(path); err != nil {
		source.Close()

		return nil, err
	}

	return source, nil
}
