package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

// Canonical column names of a bar feed.
const (
	ColumnTime      = "time"
	ColumnSymbol    = "symbol"
	ColumnOpen      = "open"
	ColumnHigh      = "high"
	ColumnLow       = "low"
	ColumnClose     = "close"
	ColumnVolume    = "volume"
	ColumnSentiment = "sentiment"
	ColumnCustom    = "custom"
	ColumnDividend  = "dividend"
)

type DataSource interface {
	// Initialize loads the bar file at path.
	Initialize(path string) error
	// ReadAll yields the bars between start and end in time order.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// Count returns the number of bars between start and end.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Format returns the format of the loaded file.
	Format() Format
	// Close releases any resources.
	Close() error
}

func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
