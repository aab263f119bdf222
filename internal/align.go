package internal

import (
	"fmt"
	"sort"
	"time"

	"stockbacktest/internal/domain"
	"stockbacktest/internal/util"

	"github.com/shopspring/decimal"
)

// AlignPrices merges independently-dated price histories onto the
// calendar intersection of every symbol's trading dates, restricted to
// [start, end] inclusive. Remaining gaps are forward-filled then
// backward-filled; a cell that is still empty afterwards fails the whole
// alignment. Either a fully-populated table comes back or an error does -
// downstream simulation never sees a missing price.
func AlignPrices(seriesBySymbol map[string][]domain.AssetPrice, start, end time.Time) (*domain.AlignedPriceTable, error) {
	if len(seriesBySymbol) == 0 {
		return nil, fmt.Errorf("no valid price data")
	}

	// a date survives if every symbol traded on it
	dateCounts := map[time.Time]int{}
	for _, series := range seriesBySymbol {
		seen := map[time.Time]bool{}
		for _, p := range series {
			if !seen[p.Date] {
				seen[p.Date] = true
				dateCounts[p.Date]++
			}
		}
	}

	calendar := []time.Time{}
	for date, count := range dateCounts {
		if count == len(seriesBySymbol) && util.DateLte(start, date) && util.DateLte(date, end) {
			calendar = append(calendar, date)
		}
	}
	if len(calendar) == 0 {
		return nil, fmt.Errorf("no common trading days in range")
	}
	sort.Slice(calendar, func(i, j int) bool {
		return calendar[i].Before(calendar[j])
	})

	columns := map[string][]decimal.Decimal{}
	for symbol, series := range seriesBySymbol {
		pricesByDate := map[time.Time]decimal.Decimal{}
		for _, p := range series {
			pricesByDate[p.Date] = p.Price
		}

		cells := make([]*decimal.Decimal, len(calendar))
		for i, date := range calendar {
			if price, ok := pricesByDate[date]; ok {
				cells[i] = &price
			}
		}

		column, ok := fillGaps(cells)
		if !ok {
			return nil, fmt.Errorf("missing values after fill")
		}
		columns[symbol] = column
	}

	return &domain.AlignedPriceTable{
		Dates:   calendar,
		Columns: columns,
	}, nil
}

// fillGaps carries the last known price forward, then the first known
// price backward over any leading gap. Reports failure if a cell is
// still empty, which only happens when the column has no prices at all.
func fillGaps(cells []*decimal.Decimal) ([]decimal.Decimal, bool) {
	var lastKnown *decimal.Decimal
	for i := range cells {
		if cells[i] != nil {
			lastKnown = cells[i]
		} else if lastKnown != nil {
			cells[i] = lastKnown
		}
	}

	var firstKnown *decimal.Decimal
	for i := len(cells) - 1; i >= 0; i-- {
		if cells[i] != nil {
			firstKnown = cells[i]
		} else if firstKnown != nil {
			cells[i] = firstKnown
		}
	}

	column := make([]decimal.Decimal, len(cells))
	for i := range cells {
		if cells[i] == nil {
			return nil, false
		}
		column[i] = *cells[i]
	}

	return column, true
}
