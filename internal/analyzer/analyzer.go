// Package analyzer computes run metrics from the periodic portfolio snapshots.
// Returns are adjusted for cash injections so deposits never count as performance.
package analyzer

import (
	"math"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/shopspring/decimal"
)

// Point is the portfolio value at one bar together with the cash injected on that bar.
type Point struct {
	Time  time.Time
	Value float64
	Flow  float64
}

// Metrics are the return and risk metrics of one run.
type Metrics struct {
	// Rtot is the total log return.
	Rtot float64
	// Rnorm is the annualized return.
	Rnorm float64
	// Sharpe is the annualized sharpe ratio with a zero risk-free rate.
	Sharpe float64
	// MaxDrawdown is the largest peak-to-trough decline of the return index, in percent.
	MaxDrawdown float64
	// MaxDrawdownPeriod is the longest drawdown, in bars.
	MaxDrawdownPeriod int
	PeriodsPerYear    float64
}

// Series joins the periodic snapshots with the injections recorded on the same bar.
func Series(periodic []types.PeriodicRecord, injections []types.InjectionRecord) []Point {
	flows := make(map[time.Time]float64, len(injections))
	for _, injection := range injections {
		flows[injection.Time] += injection.Amount
	}

	points := make([]Point, len(periodic))
	for i, record := range periodic {
		points[i] = Point{Time: record.Time, Value: record.PortfolioValue, Flow: flows[record.Time]}
	}

	return points
}

// Returns computes the per-bar returns, net of the cash injected on each bar.
func Returns(points []Point) []float64 {
	if len(points) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(points)-1)

	for i := 1; i < len(points); i++ {
		previous := decimal.NewFromFloat(points[i-1].Value)
		if previous.IsZero() {
			returns = append(returns, 0)

			continue
		}

		current := decimal.NewFromFloat(points[i].Value).Sub(decimal.NewFromFloat(points[i].Flow))
		returns = append(returns, current.Div(previous).Sub(decimal.NewFromInt(1)).InexactFloat64())
	}

	return returns
}

// PeriodsPerYear infers the annualization factor from the median bar spacing.
func PeriodsPerYear(points []Point) float64 {
	if len(points) < 2 {
		return 252
	}

	gaps := make([]time.Duration, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		gaps = append(gaps, points[i].Time.Sub(points[i-1].Time))
	}

	sort.Slice(gaps, func(a, b int) bool { return gaps[a] < gaps[b] })
	median := gaps[len(gaps)/2]

	const day = 24 * time.Hour

	switch {
	case median <= 0:
		return 252
	case median < 20*time.Hour:
		return float64(365*day) / float64(median)
	case median <= 4*day:
		return 252
	case median <= 10*day:
		return 52
	case median <= 45*day:
		return 12
	default:
		return 1
	}
}

// Analyze computes all metrics of a run.
func Analyze(points []Point) Metrics {
	returns := Returns(points)
	metrics := Metrics{PeriodsPerYear: PeriodsPerYear(points)}

	metrics.Rtot, metrics.Rnorm = logReturns(returns, metrics.PeriodsPerYear)
	metrics.Sharpe = Sharpe(returns, metrics.PeriodsPerYear)
	metrics.MaxDrawdown, metrics.MaxDrawdownPeriod = Drawdown(returns)

	return metrics
}

func logReturns(returns []float64, periodsPerYear float64) (float64, float64) {
	if len(returns) == 0 {
		return 0, 0
	}

	total := 0.0

	for _, r := range returns {
		if 1+r <= 0 {
			return math.Inf(-1), -1
		}

		total += math.Log1p(r)
	}

	return total, math.Expm1(total / float64(len(returns)) * periodsPerYear)
}

// Sharpe is the annualized mean over the sample standard deviation of returns.
// It is zero when fewer than two returns exist or the returns never vary.
func Sharpe(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	sum := decimal.Zero
	for _, r := range returns {
		sum = sum.Add(decimal.NewFromFloat(r))
	}

	mean := sum.Div(decimal.NewFromInt(int64(len(returns)))).InexactFloat64()

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}

	std := math.Sqrt(variance / float64(len(returns)-1))
	if std < 1e-12 {
		return 0
	}

	return mean / std * math.Sqrt(periodsPerYear)
}

// Drawdown returns the largest decline of the compounded return index, in
// percent, and the longest run of bars spent below a previous peak.
func Drawdown(returns []float64) (float64, int) {
	index := decimal.NewFromInt(1)
	peak := index
	maxDrawdown := decimal.Zero
	length, longest := 0, 0

	for _, r := range returns {
		index = index.Mul(decimal.NewFromFloat(1 + r))

		if index.GreaterThanOrEqual(peak) {
			peak = index
			length = 0

			continue
		}

		length++
		if length > longest {
			longest = length
		}

		drawdown := peak.Sub(index).Div(peak).Mul(decimal.NewFromInt(100))
		if drawdown.GreaterThan(maxDrawdown) {
			maxDrawdown = drawdown
		}
	}

	return maxDrawdown.InexactFloat64(), longest
}
