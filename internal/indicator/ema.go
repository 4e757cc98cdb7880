package indicator

import "github.com/markcheno/go-talib"

// EMA is an exponential moving average with alpha 2/(period+1), seeded with
// the simple average of the first period values. The whole history is kept
// because every value depends on the seed.
type EMA struct {
	name    string
	period  int
	history series
}

// NewEMA creates an exponential moving average.
func NewEMA(name string, period int) (*EMA, error) {
	if err := validatePeriod(name, period); err != nil {
		return nil, err
	}

	return &EMA{name: name, period: period}, nil
}

func (e *EMA) Name() string {
	return e.name
}

func (e *EMA) Update(value float64) {
	e.history.push(value)
}

func (e *EMA) Ready() bool {
	return e.history.len() >= e.period
}

func (e *EMA) Value() (float64, error) {
	if !e.Ready() {
		return 0, notReady(e.name, e.period, e.history.count)
	}

	return last(talib.Ema(e.history.values, e.period)), nil
}
