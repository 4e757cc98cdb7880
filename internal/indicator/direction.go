package indicator

import "github.com/markcheno/go-talib"

// Direction is the momentum of a series over the last period values: x[t] - x[t-period].
type Direction struct {
	name   string
	period int
	window series
}

func NewDirection(name string, period int) (*Direction, error) {
	if err := validatePeriod(name, period); err != nil {
		return nil, err
	}

	return &Direction{name: name, period: period, window: series{limit: period + 1}}, nil
}

func (d *Direction) Name() string {
	return d.name
}

func (d *Direction) Update(value float64) {
	d.window.push(value)
}

func (d *Direction) Ready() bool {
	return d.window.len() == d.period+1
}

func (d *Direction) Value() (float64, error) {
	if !d.Ready() {
		return 0, notReady(d.name, d.period+1, d.window.count)
	}

	return last(talib.Mom(d.window.values, d.period)), nil
}
