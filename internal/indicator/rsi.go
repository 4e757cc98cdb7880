package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// RSI is the Relative Strength Index using Wilder's smoothing.
type RSI struct {
	name    string
	period  int
	history series
}

// NewRSI creates an RSI over period price changes. The period must be at least 2.
func NewRSI(name string, period int) (*RSI, error) {
	if period < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "%s period must be at least 2, got %d", name, period)
	}

	return &RSI{name: name, period: period}, nil
}

func (r *RSI) Name() string {
	return r.name
}

func (r *RSI) Update(value float64) {
	r.history.push(value)
}

func (r *RSI) Ready() bool {
	return r.history.len() > r.period
}

func (r *RSI) Value() (float64, error) {
	if !r.Ready() {
		return 0, notReady(r.name, r.period+1, r.history.count)
	}

	return last(talib.Rsi(r.history.values, r.period)), nil
}
