package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"stockbacktest/internal/domain"
	"stockbacktest/internal/logger"
	"stockbacktest/internal/repository"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
)

// AssetFundamentals is one row of the preprocessed_data.json document
// served by the get_stocks endpoint.
type AssetFundamentals struct {
	Ticker        string  `json:"ticker"`
	MarketCap     int64   `json:"marketCap"`
	TrailingPE    float64 `json:"trailingPE"`
	ForwardPE     float64 `json:"forwardPE"`
	DividendYield float64 `json:"dividendYield"`
}

type IngestInput struct {
	Symbols      []string
	HistoryStart time.Time
	NumWorkers   int
}

// IngestReferenceData downloads fundamentals and daily price history for
// every symbol and uploads them to the price store. Per-symbol failures
// are logged and skipped so one bad symbol never aborts the batch.
func IngestReferenceData(ctx context.Context, store repository.PriceStoreRepository, in IngestInput) error {
	log := logger.FromContext(ctx)

	numWorkers := in.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 10
	}

	inputCh := make(chan string, len(in.Symbols))
	var wg sync.WaitGroup
	for _, symbol := range in.Symbols {
		wg.Add(1)
		inputCh <- symbol
	}
	close(inputCh)

	var mu sync.Mutex
	fundamentals := []AssetFundamentals{}

	for i := 0; i < numWorkers; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case symbol, ok := <-inputCh:
					if !ok {
						return
					}
					if f, err := fetchFundamentals(symbol); err != nil {
						log.Warnf("failed to fetch fundamentals for %s: %s", symbol, err.Error())
					} else {
						mu.Lock()
						fundamentals = append(fundamentals, *f)
						mu.Unlock()
					}

					if err := ingestPriceHistory(ctx, store, symbol, in.HistoryStart); err != nil {
						log.Warnf("failed to ingest prices for %s: %s", symbol, err.Error())
					}
					wg.Done()
				}
			}
		}()
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	sort.Slice(fundamentals, func(i, j int) bool {
		return fundamentals[i].Ticker < fundamentals[j].Ticker
	})
	doc, err := json.MarshalIndent(fundamentals, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode fundamentals: %w", err)
	}
	if err := store.PutPreprocessedData(ctx, doc); err != nil {
		return err
	}
	log.Infof("uploaded fundamentals for %d of %d symbols", len(fundamentals), len(in.Symbols))

	return nil
}

func fetchFundamentals(symbol string) (*AssetFundamentals, error) {
	q, err := equity.Get(symbol)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("no quote returned for %s", symbol)
	}

	return &AssetFundamentals{
		Ticker:        symbol,
		MarketCap:     q.MarketCap,
		TrailingPE:    q.TrailingPE,
		ForwardPE:     q.ForwardPE,
		DividendYield: q.TrailingAnnualDividendYield,
	}, nil
}

func ingestPriceHistory(ctx context.Context, store repository.PriceStoreRepository, symbol string, start time.Time) error {
	now := time.Now().UTC()
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&now),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	prices := []domain.AssetPrice{}
	for iter.Next() {
		bar := iter.Bar()
		ts := time.Unix(int64(bar.Timestamp), 0).UTC()
		prices = append(prices, domain.AssetPrice{
			Symbol: symbol,
			Date:   time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			Price:  bar.AdjClose,
		})
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}
	if len(prices) == 0 {
		return fmt.Errorf("no price history returned for %s", symbol)
	}

	return store.PutPriceHistory(ctx, symbol, prices)
}
