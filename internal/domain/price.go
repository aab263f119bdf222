package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetPrice is one closing-price observation for a symbol.
type AssetPrice struct {
	Symbol string
	Date   time.Time
	Price  decimal.Decimal
}

// AlignedPriceTable holds prices for every resolved symbol on a shared
// trading calendar. Rows are the dates in Dates (ascending), columns are
// symbols. Construction guarantees every cell is populated, so consumers
// never deal with missing prices.
type AlignedPriceTable struct {
	Dates   []time.Time
	Columns map[string][]decimal.Decimal
}

// PricesAt returns the symbol -> price map for the i-th trading day.
func (t AlignedPriceTable) PricesAt(i int) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(t.Columns))
	for symbol, column := range t.Columns {
		prices[symbol] = column[i]
	}
	return prices
}

func (t AlignedPriceTable) Start() time.Time {
	return t.Dates[0]
}

func (t AlignedPriceTable) End() time.Time {
	return t.Dates[len(t.Dates)-1]
}
