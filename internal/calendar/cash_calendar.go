// Package calendar schedules periodic cash injections.
package calendar

import (
	"strings"
	"time"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// RuleFunc returns the first occurrence strictly after t.
type RuleFunc func(t time.Time) time.Time

// Monthly occurs at midnight on the first day of every month.
func Monthly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// Weekly occurs at midnight every Monday.
func Weekly(t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	days := (int(time.Monday) - int(midnight.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}

	return midnight.AddDate(0, 0, days)
}

// Daily occurs at every midnight.
func Daily(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

// ParseFrequency maps a frequency spec to its rule.
// Accepted: "M"/"monthly", "W"/"weekly", "D"/"daily".
func ParseFrequency(spec string) (RuleFunc, error) {
	switch strings.ToLower(strings.TrimSpace(spec)) {
	case "m", "monthly":
		return Monthly, nil
	case "w", "weekly":
		return Weekly, nil
	case "d", "daily":
		return Daily, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidCashFrequency, "unsupported cash frequency %q, expected M, W or D", spec)
	}
}

// CashCalendar tracks when the next periodic injection is due.
// The schedule is anchored on the first bar it sees.
type CashCalendar struct {
	rule       RuleFunc
	amount     float64
	started    bool
	start      time.Time
	nextDue    time.Time
	total      float64
	injections int
}

// New creates a calendar from a frequency spec.
func New(spec string, amount float64) (*CashCalendar, error) {
	rule, err := ParseFrequency(spec)
	if err != nil {
		return nil, err
	}

	return NewWithRule(rule, amount), nil
}

// NewWithRule creates a calendar with a custom rule.
func NewWithRule(rule RuleFunc, amount float64) *CashCalendar {
	return &CashCalendar{rule: rule, amount: amount}
}

// Reset forgets the anchor and the running total.
func (c *CashCalendar) Reset() {
	c.started = false
	c.start = time.Time{}
	c.nextDue = time.Time{}
	c.total = 0
	c.injections = 0
}

// Due reports the amount to inject on a bar at barTime. At most one injection
// happens per bar; after it the schedule skips every occurrence up to barTime.
func (c *CashCalendar) Due(barTime time.Time) (float64, bool) {
	if !c.started {
		c.started = true
		c.start = barTime
		c.nextDue = c.rule(barTime)

		return 0, false
	}

	if barTime.Before(c.nextDue) {
		return 0, false
	}

	for !c.nextDue.After(barTime) {
		c.nextDue = c.rule(c.nextDue)
	}

	c.total += c.amount
	c.injections++

	return c.amount, true
}

// Started reports whether the calendar has been anchored.
func (c *CashCalendar) Started() bool {
	return c.started
}

// Start is the anchor time, the time of the first bar.
func (c *CashCalendar) Start() time.Time {
	return c.start
}

// NextDue is the next injection time.
func (c *CashCalendar) NextDue() time.Time {
	return c.nextDue
}

// Amount is the amount injected per occurrence.
func (c *CashCalendar) Amount() float64 {
	return c.amount
}

// TotalInjected is the sum of all injections since the anchor.
func (c *CashCalendar) TotalInjected() float64 {
	return c.total
}

// Injections is the number of injections since the anchor.
func (c *CashCalendar) Injections() int {
	return c.injections
}
