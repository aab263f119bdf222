package repository

import (
	"context"
	"testing"
	"time"

	"stockbacktest/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type countingPriceStore struct {
	priceGets int
	docGets   int
	series    map[string][]domain.AssetPrice
	doc       []byte
}

func (m *countingPriceStore) GetPriceHistory(ctx context.Context, symbol string) ([]domain.AssetPrice, error) {
	m.priceGets++
	return m.series[symbol], nil
}

func (m *countingPriceStore) PutPriceHistory(ctx context.Context, symbol string, prices []domain.AssetPrice) error {
	m.series[symbol] = prices
	return nil
}

func (m *countingPriceStore) GetPreprocessedData(ctx context.Context) ([]byte, error) {
	m.docGets++
	return m.doc, nil
}

func (m *countingPriceStore) PutPreprocessedData(ctx context.Context, doc []byte) error {
	m.doc = doc
	return nil
}

func Test_CachedPriceStore(t *testing.T) {
	ctx := context.Background()
	series := []domain.AssetPrice{{
		Symbol: "AAA",
		Date:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:  decimal.NewFromInt(100),
	}}

	t.Run("second read is served from cache", func(t *testing.T) {
		inner := &countingPriceStore{series: map[string][]domain.AssetPrice{"AAA": series}}
		cached := NewCachedPriceStore(inner, 16, time.Minute)

		first, err := cached.GetPriceHistory(ctx, "AAA")
		require.NoError(t, err)
		second, err := cached.GetPriceHistory(ctx, "AAA")
		require.NoError(t, err)

		require.Equal(t, 1, inner.priceGets)
		require.Len(t, first, 1)
		require.Len(t, second, 1)
	})

	t.Run("absent symbol is not cached", func(t *testing.T) {
		inner := &countingPriceStore{series: map[string][]domain.AssetPrice{}}
		cached := NewCachedPriceStore(inner, 16, time.Minute)

		out, err := cached.GetPriceHistory(ctx, "NOPE")
		require.NoError(t, err)
		require.Nil(t, out)

		_, err = cached.GetPriceHistory(ctx, "NOPE")
		require.NoError(t, err)
		require.Equal(t, 2, inner.priceGets)
	})

	t.Run("write invalidates the cached entry", func(t *testing.T) {
		inner := &countingPriceStore{series: map[string][]domain.AssetPrice{"AAA": series}}
		cached := NewCachedPriceStore(inner, 16, time.Minute)

		_, err := cached.GetPriceHistory(ctx, "AAA")
		require.NoError(t, err)

		updated := append([]domain.AssetPrice{}, series...)
		updated = append(updated, domain.AssetPrice{
			Symbol: "AAA",
			Date:   time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
			Price:  decimal.NewFromInt(101),
		})
		require.NoError(t, cached.PutPriceHistory(ctx, "AAA", updated))

		out, err := cached.GetPriceHistory(ctx, "AAA")
		require.NoError(t, err)
		require.Len(t, out, 2)
		require.Equal(t, 2, inner.priceGets)
	})

	t.Run("preprocessed document is cached", func(t *testing.T) {
		inner := &countingPriceStore{doc: []byte(`[]`)}
		cached := NewCachedPriceStore(inner, 16, time.Minute)

		_, err := cached.GetPreprocessedData(ctx)
		require.NoError(t, err)
		_, err = cached.GetPreprocessedData(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, inner.docGets)
	})
}
