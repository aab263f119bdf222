package calculator

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// riskFreeRate is the fixed annual rate assumed by the sharpe ratio.
// Not configurable.
const riskFreeRate = 0.01

const tradingDaysPerYear = 252

// PerformanceMetrics summarizes one value series. Percentage fields are
// already multiplied by 100; everything is rounded to 2 decimal places.
type PerformanceMetrics struct {
	InitialValue float64 `json:"initial_value"`
	FinalValue   float64 `json:"final_value"`
	CAGR         float64 `json:"cagr"`
	Stdev        float64 `json:"stdev"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
}

// CalculateMetrics derives performance metrics from a value series and
// its trading dates. An empty series, or one starting at zero, yields
// the all-zero sentinel instead of dividing by zero. Pure function -
// recomputed fresh for every request.
func CalculateMetrics(values []decimal.Decimal, dates []time.Time) PerformanceMetrics {
	if len(values) == 0 || values[0].IsZero() {
		return PerformanceMetrics{}
	}

	initialValue := values[0].InexactFloat64()
	finalValue := values[len(values)-1].InexactFloat64()

	days := dates[len(dates)-1].Sub(dates[0]).Hours() / 24
	years := days / 365.25
	var cagr float64
	if years > 0 {
		cagr = math.Pow(finalValue/initialValue, 1/years) - 1
	} else {
		cagr = finalValue/initialValue - 1
	}

	annualizedStdev := 0.0
	if returns := dailyReturns(values); len(returns) > 1 {
		stdev, err := stats.StandardDeviationSample(returns)
		if err == nil {
			annualizedStdev = stdev * math.Sqrt(tradingDaysPerYear)
		}
	}

	sharpeRatio := 0.0
	if annualizedStdev > 0 {
		sharpeRatio = (cagr - riskFreeRate) / annualizedStdev
	}

	return PerformanceMetrics{
		InitialValue: Round2(initialValue),
		FinalValue:   Round2(finalValue),
		CAGR:         Round2(cagr * 100),
		Stdev:        Round2(annualizedStdev * 100),
		SharpeRatio:  Round2(sharpeRatio),
		MaxDrawdown:  Round2(maxDrawdown(values) * 100),
	}
}

// dailyReturns is the pairwise percentage change of the series, with the
// undefined first return dropped.
func dailyReturns(values []decimal.Decimal) []float64 {
	returns := []float64{}
	for i := 1; i < len(values); i++ {
		previous := values[i-1].InexactFloat64()
		if previous == 0 {
			continue
		}
		current := values[i].InexactFloat64()
		returns = append(returns, (current-previous)/previous)
	}
	return returns
}

// maxDrawdown is the largest peak-to-trough decline relative to the
// running maximum. Non-positive; 0 for a monotonically non-decreasing
// series.
func maxDrawdown(values []decimal.Decimal) float64 {
	runningMax := values[0].InexactFloat64()
	worst := 0.0
	for _, value := range values {
		v := value.InexactFloat64()
		if v > runningMax {
			runningMax = v
		}
		if drawdown := v/runningMax - 1; drawdown < worst {
			worst = drawdown
		}
	}
	return worst
}

func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
