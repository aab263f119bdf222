package domain

import (
	"github.com/shopspring/decimal"
)

// AssetAllocation assigns a target weight, as a percentage of total
// portfolio value, to one symbol.
type AssetAllocation struct {
	Symbol string
	Weight decimal.Decimal
}

// PortfolioConfig is a named target allocation. Weights are not required
// to sum to 100; any unallocated percentage stays in cash through every
// rebalance. Weights are never normalized.
type PortfolioConfig struct {
	Name   string
	Assets []AssetAllocation
}

func (c PortfolioConfig) Symbols() []string {
	symbols := []string{}
	for _, asset := range c.Assets {
		symbols = append(symbols, asset.Symbol)
	}
	return symbols
}

// Portfolio is the holdings state mutated by the simulator: uninvested
// cash plus fractional share positions.
type Portfolio struct {
	Cash      decimal.Decimal
	Positions map[string]*Position
}

func NewPortfolio(cash decimal.Decimal) *Portfolio {
	return &Portfolio{
		Cash:      cash,
		Positions: map[string]*Position{},
	}
}

// TotalValue marks every position to market. A position whose symbol is
// missing from the price map contributes nothing - capital allocated to a
// symbol that never resolved is effectively abandoned.
func (p Portfolio) TotalValue(priceMap map[string]decimal.Decimal) decimal.Decimal {
	totalValue := p.Cash
	for symbol, position := range p.Positions {
		if price, ok := priceMap[symbol]; ok {
			totalValue = totalValue.Add(position.ExactQuantity.Mul(price))
		}
	}
	return totalValue
}

type Position struct {
	Symbol        string
	ExactQuantity decimal.Decimal
}
