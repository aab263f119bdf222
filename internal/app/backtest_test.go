package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"stockbacktest/internal"
	"stockbacktest/internal/domain"
	"stockbacktest/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type mockPriceStoreForTests struct {
	seriesBySymbol map[string][]domain.AssetPrice
	failingSymbols map[string]bool
}

func (m mockPriceStoreForTests) GetPriceHistory(ctx context.Context, symbol string) ([]domain.AssetPrice, error) {
	if m.failingSymbols[symbol] {
		return nil, fmt.Errorf("store unavailable")
	}
	return m.seriesBySymbol[symbol], nil
}

func (m mockPriceStoreForTests) PutPriceHistory(ctx context.Context, symbol string, prices []domain.AssetPrice) error {
	return fmt.Errorf("not supported")
}

func (m mockPriceStoreForTests) GetPreprocessedData(ctx context.Context) ([]byte, error) {
	return nil, nil
}

func (m mockPriceStoreForTests) PutPreprocessedData(ctx context.Context, doc []byte) error {
	return fmt.Errorf("not supported")
}

func mockSeries(symbol string, start time.Time, prices ...float64) []domain.AssetPrice {
	out := []domain.AssetPrice{}
	for i, p := range prices {
		out = append(out, domain.AssetPrice{
			Symbol: symbol,
			Date:   start.AddDate(0, 0, i),
			Price:  decimal.NewFromFloat(p),
		})
	}
	return out
}

func Test_Backtest(t *testing.T) {
	start := util.NewDate(2021, 6, 1)
	end := util.NewDate(2021, 6, 30)
	initialAmount := decimal.NewFromInt(10000)

	newHandler := func(store mockPriceStoreForTests) BacktestHandler {
		return BacktestHandler{PriceStore: store}
	}

	baseStore := mockPriceStoreForTests{
		seriesBySymbol: map[string][]domain.AssetPrice{
			"AAA": mockSeries("AAA", start, 100, 102, 104, 106, 108),
			"BBB": mockSeries("BBB", start, 50, 49, 48, 47, 46),
		},
	}

	t.Run("happy path with benchmark", func(t *testing.T) {
		benchmark := "BBB"
		result, err := newHandler(baseStore).Backtest(context.Background(), BacktestInput{
			Portfolios: []domain.PortfolioConfig{{
				Name: "all in",
				Assets: []domain.AssetAllocation{
					{Symbol: "AAA", Weight: decimal.NewFromInt(100)},
				},
			}},
			InitialAmount:     initialAmount,
			BacktestStart:     start,
			BacktestEnd:       end,
			RebalancingPeriod: internal.RebalancingPeriod_Never,
			BenchmarkSymbol:   &benchmark,
		})
		require.NoError(t, err)

		require.Len(t, result.Dates, 5)
		require.Empty(t, result.Warnings)
		require.Len(t, result.Portfolios, 2)

		require.Equal(t, "all in", result.Portfolios[0].Name)
		require.True(t, result.Portfolios[0].Values[4].Equal(decimal.NewFromInt(10800)))
		require.Equal(t, 10800.0, result.Portfolios[0].Metrics.FinalValue)

		// benchmark appended under its ticker, rescaled from its first price
		require.Equal(t, "BBB", result.Portfolios[1].Name)
		require.True(t, result.Portfolios[1].Values[0].Equal(initialAmount))
		require.True(t, result.Portfolios[1].Values[4].Equal(decimal.NewFromInt(9200)))
	})

	t.Run("unresolved symbol warns and leaves its capital in cash", func(t *testing.T) {
		result, err := newHandler(baseStore).Backtest(context.Background(), BacktestInput{
			Portfolios: []domain.PortfolioConfig{
				{
					Name: "ghost",
					Assets: []domain.AssetAllocation{
						{Symbol: "NOPE", Weight: decimal.NewFromInt(100)},
					},
				},
				{
					Name: "real",
					Assets: []domain.AssetAllocation{
						{Symbol: "AAA", Weight: decimal.NewFromInt(100)},
					},
				},
			},
			InitialAmount:     initialAmount,
			BacktestStart:     start,
			BacktestEnd:       end,
			RebalancingPeriod: internal.RebalancingPeriod_Never,
		})
		require.NoError(t, err)

		require.Len(t, result.Warnings, 1)
		require.Contains(t, result.Warnings[0], "NOPE")

		require.Equal(t, "ghost", result.Portfolios[0].Name)
		for _, v := range result.Portfolios[0].Values {
			require.True(t, v.Equal(initialAmount), v.String())
		}
	})

	t.Run("fetch failure is treated as missing, not fatal", func(t *testing.T) {
		store := mockPriceStoreForTests{
			seriesBySymbol: baseStore.seriesBySymbol,
			failingSymbols: map[string]bool{"BBB": true},
		}
		result, err := newHandler(store).Backtest(context.Background(), BacktestInput{
			Portfolios: []domain.PortfolioConfig{{
				Name: "solo",
				Assets: []domain.AssetAllocation{
					{Symbol: "AAA", Weight: decimal.NewFromInt(100)},
					{Symbol: "BBB", Weight: decimal.NewFromInt(0)},
				},
			}},
			InitialAmount:     initialAmount,
			BacktestStart:     start,
			BacktestEnd:       end,
			RebalancingPeriod: internal.RebalancingPeriod_Never,
		})
		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		require.Contains(t, result.Warnings[0], "BBB")
	})

	t.Run("no symbol resolves", func(t *testing.T) {
		result, err := newHandler(mockPriceStoreForTests{}).Backtest(context.Background(), BacktestInput{
			Portfolios: []domain.PortfolioConfig{{
				Name: "empty",
				Assets: []domain.AssetAllocation{
					{Symbol: "NOPE", Weight: decimal.NewFromInt(100)},
				},
			}},
			InitialAmount:     initialAmount,
			BacktestStart:     start,
			BacktestEnd:       end,
			RebalancingPeriod: internal.RebalancingPeriod_Never,
		})
		require.Nil(t, result)
		require.ErrorContains(t, err, "no valid price data")
	})

	t.Run("window with no common trading days", func(t *testing.T) {
		result, err := newHandler(baseStore).Backtest(context.Background(), BacktestInput{
			Portfolios: []domain.PortfolioConfig{{
				Name: "late",
				Assets: []domain.AssetAllocation{
					{Symbol: "AAA", Weight: decimal.NewFromInt(100)},
				},
			}},
			InitialAmount:     initialAmount,
			BacktestStart:     util.NewDate(2022, 1, 1),
			BacktestEnd:       util.NewDate(2022, 1, 31),
			RebalancingPeriod: internal.RebalancingPeriod_Never,
		})
		require.Nil(t, result)
		require.ErrorContains(t, err, "no common trading days in range")
	})

	t.Run("duplicate portfolio names collapse last-write-wins", func(t *testing.T) {
		result, err := newHandler(baseStore).Backtest(context.Background(), BacktestInput{
			Portfolios: []domain.PortfolioConfig{
				{
					Name: "dup",
					Assets: []domain.AssetAllocation{
						{Symbol: "AAA", Weight: decimal.NewFromInt(100)},
					},
				},
				{
					Name: "dup",
					Assets: []domain.AssetAllocation{
						{Symbol: "BBB", Weight: decimal.NewFromInt(100)},
					},
				},
			},
			InitialAmount:     initialAmount,
			BacktestStart:     start,
			BacktestEnd:       end,
			RebalancingPeriod: internal.RebalancingPeriod_Never,
		})
		require.NoError(t, err)

		require.Len(t, result.Portfolios, 1)
		// the second definition's values survive
		require.True(t, result.Portfolios[0].Values[4].Equal(decimal.NewFromInt(9200)))
	})

	t.Run("benchmark absent from store is silently omitted", func(t *testing.T) {
		benchmark := "NOPE"
		result, err := newHandler(baseStore).Backtest(context.Background(), BacktestInput{
			Portfolios: []domain.PortfolioConfig{{
				Name: "solo",
				Assets: []domain.AssetAllocation{
					{Symbol: "AAA", Weight: decimal.NewFromInt(100)},
				},
			}},
			InitialAmount:     initialAmount,
			BacktestStart:     start,
			BacktestEnd:       end,
			RebalancingPeriod: internal.RebalancingPeriod_Never,
			BenchmarkSymbol:   &benchmark,
		})
		require.NoError(t, err)
		require.Len(t, result.Portfolios, 1)
		require.Len(t, result.Warnings, 1)
	})
}
