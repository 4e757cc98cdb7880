package marketdata

import (
	"testing"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/rxtech-lab/argo-quant/pkg/marketdata/provider"
	"github.com/stretchr/testify/suite"
)

type IntervalTestSuite struct {
	suite.Suite
}

func TestIntervalSuite(t *testing.T) {
	suite.Run(t, new(IntervalTestSuite))
}

func (suite *IntervalTestSuite) TestMultiplierAndTimespan() {
	tests := []struct {
		interval   Interval
		multiplier int
		timespan   models.Timespan
	}{
		{IntervalOneSecond, 1, models.Second},
		{IntervalFifteenMinutes, 15, models.Minute},
		{IntervalFourHours, 4, models.Hour},
		{IntervalOneDay, 1, models.Day},
		{IntervalThreeDays, 3, models.Day},
		{IntervalOneWeek, 1, models.Week},
		{IntervalOneMonth, 1, models.Month},
		{Interval("7x"), 1, models.Day},
	}

	for _, tc := range tests {
		suite.Equal(tc.multiplier, tc.interval.Multiplier(), string(tc.interval))
		suite.Equal(tc.timespan, tc.interval.Timespan(), string(tc.interval))
	}
}

func (suite *IntervalTestSuite) TestParseInterval() {
	interval, err := ParseInterval("30m")
	suite.NoError(err)
	suite.Equal(IntervalThirtyMinutes, interval)

	_, err = ParseInterval("2w")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimespan))
}

func (suite *IntervalTestSuite) TestEveryIntervalIsABinanceInterval() {
	for interval := range intervals {
		binanceInterval, err := provider.BinanceInterval(interval.Timespan(), interval.Multiplier())
		suite.NoError(err)
		suite.Equal(string(interval), binanceInterval)
	}
}
