package indicator

import "github.com/markcheno/go-talib"

// MACD is the difference between a fast and a slow EMA, with a signal EMA of that difference.
// The signal line starts at the first complete MACD value; talib.Macd would seed it
// over the zero-filled warm-up instead.
type MACD struct {
	name   string
	fast   *EMA
	slow   *EMA
	signal *EMA
	macd   float64
}

// NewMACD creates a MACD indicator.
func NewMACD(name string, fastPeriod, slowPeriod, signalPeriod int) (*MACD, error) {
	fast, err := NewEMA(name+"_fast", fastPeriod)
	if err != nil {
		return nil, err
	}

	slow, err := NewEMA(name+"_slow", slowPeriod)
	if err != nil {
		return nil, err
	}

	signal, err := NewEMA(name+"_signal", signalPeriod)
	if err != nil {
		return nil, err
	}

	return &MACD{name: name, fast: fast, slow: slow, signal: signal}, nil
}

func (m *MACD) Name() string {
	return m.name
}

func (m *MACD) Update(value float64) {
	m.fast.Update(value)
	m.slow.Update(value)

	if !m.fast.Ready() || !m.slow.Ready() {
		return
	}

	fast := last(talib.Ema(m.fast.history.values, m.fast.period))
	slow := last(talib.Ema(m.slow.history.values, m.slow.period))

	m.macd = fast - slow
	m.signal.Update(m.macd)
}

func (m *MACD) Ready() bool {
	return m.signal.Ready()
}

// Value returns the MACD line.
func (m *MACD) Value() (float64, error) {
	if !m.Ready() {
		return 0, notReady(m.name, m.slow.period+m.signal.period-1, m.slow.history.count)
	}

	return m.macd, nil
}

// Signal returns the signal line.
func (m *MACD) Signal() (float64, error) {
	return m.signal.Value()
}

// Histogram returns MACD minus signal.
func (m *MACD) Histogram() (float64, error) {
	signal, err := m.signal.Value()
	if err != nil {
		return 0, err
	}

	return m.macd - signal, nil
}
