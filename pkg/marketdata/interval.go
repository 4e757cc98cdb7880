package marketdata

import (
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// Interval is a bar size such as "1m", "4h" or "1d".
type Interval string

const (
	IntervalOneSecond      Interval = "1s"
	IntervalOneMinute      Interval = "1m"
	IntervalThreeMinutes   Interval = "3m"
	IntervalFiveMinutes    Interval = "5m"
	IntervalFifteenMinutes Interval = "15m"
	IntervalThirtyMinutes  Interval = "30m"
	IntervalOneHour        Interval = "1h"
	IntervalTwoHours       Interval = "2h"
	IntervalFourHours      Interval = "4h"
	IntervalSixHours       Interval = "6h"
	IntervalEightHours     Interval = "8h"
	IntervalTwelveHours    Interval = "12h"
	IntervalOneDay         Interval = "1d"
	IntervalThreeDays      Interval = "3d"
	IntervalOneWeek        Interval = "1w"
	IntervalOneMonth       Interval = "1M"
)

type intervalSpec struct {
	multiplier int
	timespan   models.Timespan
}

var intervals = map[Interval]intervalSpec{
	IntervalOneSecond:      {1, models.Second},
	IntervalOneMinute:      {1, models.Minute},
	IntervalThreeMinutes:   {3, models.Minute},
	IntervalFiveMinutes:    {5, models.Minute},
	IntervalFifteenMinutes: {15, models.Minute},
	IntervalThirtyMinutes:  {30, models.Minute},
	IntervalOneHour:        {1, models.Hour},
	IntervalTwoHours:       {2, models.Hour},
	IntervalFourHours:      {4, models.Hour},
	IntervalSixHours:       {6, models.Hour},
	IntervalEightHours:     {8, models.Hour},
	IntervalTwelveHours:    {12, models.Hour},
	IntervalOneDay:         {1, models.Day},
	IntervalThreeDays:      {3, models.Day},
	IntervalOneWeek:        {1, models.Week},
	IntervalOneMonth:       {1, models.Month},
}

// ParseInterval validates an interval string.
func ParseInterval(s string) (Interval, error) {
	interval := Interval(s)
	if _, ok := intervals[interval]; !ok {
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported interval %q", s)
	}

	return interval, nil
}

// Multiplier returns the number of timespan units in one bar. Unknown intervals return 1.
func (i Interval) Multiplier() int {
	if spec, ok := intervals[i]; ok {
		return spec.multiplier
	}

	return 1
}

// Timespan returns the bar unit. Unknown intervals return a day.
func (i Interval) Timespan() models.Timespan {
	if spec, ok := intervals[i]; ok {
		return spec.timespan
	}

	return models.Day
}
