// Package indicator holds streaming technical indicators.
//
// Each indicator is fed one value per bar, buffers what it needs and computes
// its current value with go-talib. Before enough bars have been seen, Value
// returns an *errors.InsufficientDataError.
package indicator

import "github.com/rxtech-lab/argo-quant/pkg/errors"

// Indicator is the read side shared by every indicator.
type Indicator interface {
	// Name returns the name the indicator is registered under.
	Name() string
	// Value returns the current value, or an InsufficientDataError during warm-up.
	Value() (float64, error)
	// Ready reports whether Value will succeed.
	Ready() bool
}

// SeriesIndicator is an indicator computed from a single input series.
type SeriesIndicator interface {
	Indicator
	Update(value float64)
}

// series buffers input values. A positive limit keeps only the most recent limit values.
type series struct {
	values []float64
	limit  int
	count  int
}

func (s *series) push(value float64) {
	s.count++
	s.values = append(s.values, value)

	if s.limit > 0 && len(s.values) > s.limit {
		s.values = s.values[len(s.values)-s.limit:]
	}
}

func (s *series) len() int {
	return len(s.values)
}

func last(values []float64) float64 {
	return values[len(values)-1]
}

func notReady(name string, required, actual int) error {
	return errors.NewInsufficientDataErrorf(required, actual, "", "%s needs %d values, got %d", name, required, actual)
}

func validatePeriod(name string, period int) error {
	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "%s period must be a positive integer, got %d", name, period)
	}

	return nil
}
