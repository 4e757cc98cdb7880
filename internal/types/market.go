package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Bar is a single time step of market data. Only Close is mandatory; the other
// columns are present depending on the data format of the feed.
type Bar struct {
	Time      time.Time
	Symbol    string
	Open      optional.Option[float64]
	High      optional.Option[float64]
	Low       optional.Option[float64]
	Close     float64
	Volume    optional.Option[float64]
	Dividend  optional.Option[float64]
	Sentiment optional.Option[float64]
	Custom    optional.Option[float64]
}

// OpenPrice returns the open price, or the close when the feed has no open column.
func (b Bar) OpenPrice() float64 {
	return b.Open.TakeOr(b.Close)
}

// HighPrice returns the high price, or the close when the feed has no high column.
func (b Bar) HighPrice() float64 {
	return b.High.TakeOr(b.Close)
}

// LowPrice returns the low price, or the close when the feed has no low column.
func (b Bar) LowPrice() float64 {
	return b.Low.TakeOr(b.Close)
}
