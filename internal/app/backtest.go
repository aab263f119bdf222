package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"stockbacktest/internal"
	"stockbacktest/internal/calculator"
	"stockbacktest/internal/domain"
	"stockbacktest/internal/logger"
	"stockbacktest/internal/repository"

	"github.com/shopspring/decimal"
)

type BacktestHandler struct {
	PriceStore repository.PriceStoreRepository
}

type BacktestInput struct {
	Portfolios        []domain.PortfolioConfig
	InitialAmount     decimal.Decimal
	BacktestStart     time.Time
	BacktestEnd       time.Time
	RebalancingPeriod internal.RebalancingPeriod
	BenchmarkSymbol   *string
}

type PortfolioResult struct {
	Name    string
	Values  []decimal.Decimal
	Metrics calculator.PerformanceMetrics
}

type BacktestResult struct {
	Dates      []time.Time
	Portfolios []PortfolioResult
	Warnings   []string
}

// Backtest simulates every requested portfolio, and the benchmark if one
// resolves, over the common trading calendar of all requested symbols.
//
// A symbol whose history cannot be loaded is dropped and surfaced as a
// warning; the run proceeds with what resolved. Alignment failures (no
// data at all, no common trading days, unfillable gaps) abort the whole
// request - no partial results come back once alignment fails.
func (h BacktestHandler) Backtest(ctx context.Context, in BacktestInput) (*BacktestResult, error) {
	log := logger.FromContext(ctx)

	seriesBySymbol := map[string][]domain.AssetPrice{}
	missingSymbols := []string{}
	for _, symbol := range requestedSymbols(in) {
		series, err := h.PriceStore.GetPriceHistory(ctx, symbol)
		if err != nil {
			log.Warnf("failed to load price history for %s: %s", symbol, err.Error())
			series = nil
		}
		if len(series) == 0 {
			missingSymbols = append(missingSymbols, symbol)
			continue
		}
		seriesBySymbol[symbol] = series
	}

	table, err := internal.AlignPrices(seriesBySymbol, in.BacktestStart, in.BacktestEnd)
	if err != nil {
		return nil, err
	}

	rebalanceDates := internal.RebalanceDates(table.Start(), table.End(), in.RebalancingPeriod)

	// results keyed by name, dict-style: duplicates overwrite in place,
	// keeping the first occurrence's position
	order := []string{}
	valuesByName := map[string][]decimal.Decimal{}
	record := func(name string, values []decimal.Decimal) {
		if _, ok := valuesByName[name]; !ok {
			order = append(order, name)
		}
		valuesByName[name] = values
	}

	for _, config := range in.Portfolios {
		record(config.Name, internal.SimulatePortfolio(table, config, in.InitialAmount, rebalanceDates))
	}

	if in.BenchmarkSymbol != nil {
		if _, ok := seriesBySymbol[*in.BenchmarkSymbol]; ok {
			if values := internal.RescaleBenchmark(table, *in.BenchmarkSymbol, in.InitialAmount); values != nil {
				record(*in.BenchmarkSymbol, values)
			}
		}
	}

	portfolios := []PortfolioResult{}
	for _, name := range order {
		values := valuesByName[name]
		portfolios = append(portfolios, PortfolioResult{
			Name:    name,
			Values:  values,
			Metrics: calculator.CalculateMetrics(values, table.Dates),
		})
	}

	warnings := []string{}
	if len(missingSymbols) > 0 {
		warnings = append(warnings, fmt.Sprintf("missing price data for: %s", strings.Join(missingSymbols, ", ")))
	}

	return &BacktestResult{
		Dates:      table.Dates,
		Portfolios: portfolios,
		Warnings:   warnings,
	}, nil
}

// requestedSymbols is the union of every portfolio's symbols plus the
// benchmark, sorted for deterministic fetch order and warnings.
func requestedSymbols(in BacktestInput) []string {
	seen := map[string]bool{}
	for _, config := range in.Portfolios {
		for _, symbol := range config.Symbols() {
			seen[symbol] = true
		}
	}
	if in.BenchmarkSymbol != nil {
		seen[*in.BenchmarkSymbol] = true
	}

	symbols := []string{}
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	return symbols
}
