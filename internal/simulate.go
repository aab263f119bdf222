package internal

import (
	"time"

	"stockbacktest/internal/domain"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// SimulatePortfolio walks the aligned calendar one trading day at a time,
// marking holdings to market and reallocating to the target weights
// whenever a scheduled rebalance date comes due. It returns the
// portfolio's total value for every date in the table.
//
// Rebalance dates are consumed in order, each at most once, and a date
// fires on the first trading day >= it. On a rebalance the whole
// portfolio is rebuilt from that day's total value; an allocation whose
// symbol is missing from the table, or whose price is not positive that
// day, is skipped and its share of capital stays in cash until the next
// rebalance.
func SimulatePortfolio(
	table *domain.AlignedPriceTable,
	config domain.PortfolioConfig,
	initialAmount decimal.Decimal,
	rebalanceDates []time.Time,
) []decimal.Decimal {
	portfolio := domain.NewPortfolio(initialAmount)
	for _, asset := range config.Assets {
		portfolio.Positions[asset.Symbol] = &domain.Position{Symbol: asset.Symbol}
	}

	values := make([]decimal.Decimal, 0, len(table.Dates))
	nextRebalanceIdx := 0
	for i, today := range table.Dates {
		priceMap := table.PricesAt(i)
		totalValue := portfolio.TotalValue(priceMap)
		values = append(values, totalValue)

		if nextRebalanceIdx < len(rebalanceDates) && !today.Before(rebalanceDates[nextRebalanceIdx]) {
			portfolio = domain.NewPortfolio(totalValue)
			for _, asset := range config.Assets {
				portfolio.Positions[asset.Symbol] = &domain.Position{Symbol: asset.Symbol}
			}
			for _, asset := range config.Assets {
				price, ok := priceMap[asset.Symbol]
				if !ok || !price.IsPositive() {
					continue
				}
				amountToInvest := totalValue.Mul(asset.Weight).Div(oneHundred)
				position := portfolio.Positions[asset.Symbol]
				position.ExactQuantity = position.ExactQuantity.Add(amountToInvest.Div(price))
				portfolio.Cash = portfolio.Cash.Sub(amountToInvest)
			}
			nextRebalanceIdx++
		}
	}

	return values
}

// RescaleBenchmark converts a symbol's price column into the value of
// holding initialAmount of it from the first trading day. Equivalent to
// simulating a single-asset 100% portfolio that never rebalances.
// Returns nil when the symbol is absent or its first price is not
// positive; callers treat that as "no benchmark", not an error.
func RescaleBenchmark(
	table *domain.AlignedPriceTable,
	symbol string,
	initialAmount decimal.Decimal,
) []decimal.Decimal {
	column, ok := table.Columns[symbol]
	if !ok || len(column) == 0 || !column[0].IsPositive() {
		return nil
	}

	values := make([]decimal.Decimal, 0, len(column))
	for _, price := range column {
		values = append(values, initialAmount.Mul(price).Div(column[0]))
	}

	return values
}
