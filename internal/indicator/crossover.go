package indicator

import "github.com/markcheno/go-talib"

// crossWindow is the number of points talib.Crossover and talib.Crossunder look at.
const crossWindow = 3

// CrossOver reports 1 when the first series crosses above the second, -1 when it
// crosses below and 0 otherwise. A cross compares the previous and the current
// pair; touching on the previous bar counts.
type CrossOver struct {
	name  string
	a     series
	b     series
	value float64
}

func NewCrossOver(name string) *CrossOver {
	return &CrossOver{
		name: name,
		a:    series{limit: crossWindow},
		b:    series{limit: crossWindow},
	}
}

func (c *CrossOver) Name() string {
	return c.name
}

// Update takes the current values of both series.
func (c *CrossOver) Update(a, b float64) {
	c.a.push(a)
	c.b.push(b)

	switch {
	case talib.Crossover(c.a.values, c.b.values):
		c.value = 1
	case talib.Crossunder(c.a.values, c.b.values):
		c.value = -1
	default:
		c.value = 0
	}
}

func (c *CrossOver) Ready() bool {
	return c.a.count > 0
}

func (c *CrossOver) Value() (float64, error) {
	if !c.Ready() {
		return 0, notReady(c.name, 1, 0)
	}

	return c.value, nil
}
