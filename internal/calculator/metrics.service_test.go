package calculator

import (
	"testing"
	"time"

	"stockbacktest/internal/util"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func values(vs ...float64) []decimal.Decimal {
	out := []decimal.Decimal{}
	for _, v := range vs {
		out = append(out, decimal.NewFromFloat(v))
	}
	return out
}

func tradingDays(start time.Time, n int) []time.Time {
	out := []time.Time{}
	for i := 0; i < n; i++ {
		out = append(out, start.AddDate(0, 0, i))
	}
	return out
}

func Test_CalculateMetrics(t *testing.T) {
	start := util.NewDate(2020, 1, 1)

	t.Run("empty series yields the zero sentinel", func(t *testing.T) {
		require.Equal(
			t,
			"",
			cmp.Diff(PerformanceMetrics{}, CalculateMetrics(nil, nil)),
		)
	})

	t.Run("series starting at zero yields the zero sentinel", func(t *testing.T) {
		out := CalculateMetrics(values(0, 100, 200), tradingDays(start, 3))
		require.Equal(t, "", cmp.Diff(PerformanceMetrics{}, out))
	})

	t.Run("single-day series", func(t *testing.T) {
		out := CalculateMetrics(values(100), tradingDays(start, 1))
		require.Equal(
			t,
			"",
			cmp.Diff(PerformanceMetrics{
				InitialValue: 100,
				FinalValue:   100,
			}, out),
		)
	})

	t.Run("two points 730 days apart", func(t *testing.T) {
		dates := []time.Time{start, start.AddDate(0, 0, 730)}
		out := CalculateMetrics(values(10000, 12000), dates)

		require.Equal(t, 10000.0, out.InitialValue)
		require.Equal(t, 12000.0, out.FinalValue)
		// (1.2)^(365.25/730) - 1, as a rounded percentage
		require.Equal(t, 9.55, out.CAGR)
		// a single daily return has no sample deviation
		require.Equal(t, 0.0, out.Stdev)
		require.Equal(t, 0.0, out.SharpeRatio)
		require.Equal(t, 0.0, out.MaxDrawdown)
	})

	t.Run("max drawdown tracks the running peak", func(t *testing.T) {
		out := CalculateMetrics(values(100, 120, 90, 130), tradingDays(start, 4))
		require.Equal(t, -25.0, out.MaxDrawdown)
	})

	t.Run("monotonic series has zero drawdown", func(t *testing.T) {
		out := CalculateMetrics(values(100, 110, 120, 130), tradingDays(start, 4))
		require.Equal(t, 0.0, out.MaxDrawdown)
	})

	t.Run("flat series has zero stdev and zero sharpe", func(t *testing.T) {
		out := CalculateMetrics(values(100, 100, 100, 100), tradingDays(start, 4))
		require.Equal(t, 0.0, out.Stdev)
		require.Equal(t, 0.0, out.SharpeRatio)
		require.Equal(t, 0.0, out.CAGR)
	})

	t.Run("volatile series has positive stdev", func(t *testing.T) {
		out := CalculateMetrics(values(100, 110, 95, 120, 105), tradingDays(start, 5))
		require.Greater(t, out.Stdev, 0.0)
		require.LessOrEqual(t, out.MaxDrawdown, 0.0)
	})

	t.Run("pure function, identical on repeat calls", func(t *testing.T) {
		vs := values(100, 103, 99, 108)
		ds := tradingDays(start, 4)
		first := CalculateMetrics(vs, ds)
		second := CalculateMetrics(vs, ds)
		require.Equal(t, "", cmp.Diff(first, second))
	})
}

func Test_Round2(t *testing.T) {
	require.Equal(t, 1.23, Round2(1.23456))
	require.Equal(t, -1.24, Round2(-1.235))
	require.Equal(t, 0.0, Round2(0))
}
