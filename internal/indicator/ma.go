package indicator

import "github.com/markcheno/go-talib"

// SMA is a simple moving average over the last period values.
type SMA struct {
	name   string
	period int
	window series
}

// NewSMA creates a simple moving average.
func NewSMA(name string, period int) (*SMA, error) {
	if err := validatePeriod(name, period); err != nil {
		return nil, err
	}

	return &SMA{
		name:   name,
		period: period,
		window: series{limit: period},
	}, nil
}

func (s *SMA) Name() string {
	return s.name
}

// Update pushes the next value into the window.
func (s *SMA) Update(value float64) {
	s.window.push(value)
}

func (s *SMA) Ready() bool {
	return s.window.len() == s.period
}

func (s *SMA) Value() (float64, error) {
	if !s.Ready() {
		return 0, notReady(s.name, s.period, s.window.count)
	}

	return last(talib.Sma(s.window.values, s.period)), nil
}

// values returns the window in insertion order.
func (s *SMA) values() []float64 {
	return append([]float64(nil), s.window.values...)
}
