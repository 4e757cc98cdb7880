package strategy

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// Params is the parameter bag of one strategy run.
type Params map[string]float64

// WithDefaults returns a copy of p with every missing key taken from defaults.
func (p Params) WithDefaults(defaults Params) Params {
	merged := make(Params, len(defaults)+len(p))
	for k, v := range defaults {
		merged[k] = v
	}

	for k, v := range p {
		merged[k] = v
	}

	return merged
}

// Float returns the named parameter.
func (p Params) Float(key string) (float64, error) {
	value, ok := p[key]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeMissingParameter, "missing parameter %s", key)
	}

	return value, nil
}

// Period returns the named parameter as a positive integer period.
func (p Params) Period(key string) (int, error) {
	value, err := p.Float(key)
	if err != nil {
		return 0, err
	}

	if value < 1 || value != math.Trunc(value) {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %v", key, value)
	}

	return int(value), nil
}

// String renders the bag as "k=v,k=v" sorted by key.
func (p Params) String() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, p[k]))
	}

	return strings.Join(parts, ",")
}

// Grid expands a parameter grid into every combination, in a stable order.
// Keys missing from the grid are filled from defaults.
func Grid(grid map[string][]float64, defaults Params) []Params {
	keys := make([]string, 0, len(grid))
	for k, values := range grid {
		if len(values) == 0 {
			continue
		}

		keys = append(keys, k)
	}

	sort.Strings(keys)

	combos := []Params{{}}

	for _, k := range keys {
		next := make([]Params, 0, len(combos)*len(grid[k]))

		for _, combo := range combos {
			for _, v := range grid[k] {
				c := make(Params, len(combo)+1)
				for ck, cv := range combo {
					c[ck] = cv
				}

				c[k] = v
				next = append(next, c)
			}
		}

		combos = next
	}

	for i := range combos {
		combos[i] = combos[i].WithDefaults(defaults)
	}

	return combos
}
