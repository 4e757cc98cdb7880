package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// BollingerBands is a simple moving average with bands devFactor population
// standard deviations above and below it.
type BollingerBands struct {
	name      string
	devFactor float64
	mid       *SMA
}

// NewBollingerBands creates Bollinger Bands.
func NewBollingerBands(name string, period int, devFactor float64) (*BollingerBands, error) {
	if devFactor <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "devfactor must be a positive number, got %f", devFactor)
	}

	mid, err := NewSMA(name+"_mid", period)
	if err != nil {
		return nil, err
	}

	return &BollingerBands{name: name, devFactor: devFactor, mid: mid}, nil
}

func (bb *BollingerBands) Name() string {
	return bb.name
}

func (bb *BollingerBands) Update(value float64) {
	bb.mid.Update(value)
}

func (bb *BollingerBands) Ready() bool {
	return bb.mid.Ready()
}

// Value returns the middle band.
func (bb *BollingerBands) Value() (float64, error) {
	return bb.mid.Value()
}

// Bands returns the bottom, middle and top bands.
func (bb *BollingerBands) Bands() (bottom, middle, top float64, err error) {
	if !bb.Ready() {
		return 0, 0, 0, notReady(bb.name, bb.mid.period, bb.mid.window.count)
	}

	upper, mid, lower := talib.BBands(bb.mid.window.values, bb.mid.period, bb.devFactor, bb.devFactor, talib.SMA)

	return last(lower), last(mid), last(upper), nil
}
