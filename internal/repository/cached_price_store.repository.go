package repository

import (
	"context"
	"time"

	"stockbacktest/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// NewCachedPriceStore wraps a price store with a bounded read-through
// cache. Entries expire after ttl and the least recently used entry is
// evicted once maxEntries is reached. Safe for concurrent use by
// in-flight requests; writes pass through and invalidate.
func NewCachedPriceStore(inner PriceStoreRepository, maxEntries int, ttl time.Duration) PriceStoreRepository {
	return &cachedPriceStoreHandler{
		inner:  inner,
		prices: expirable.NewLRU[string, []domain.AssetPrice](maxEntries, nil, ttl),
		docs:   expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
	}
}

type cachedPriceStoreHandler struct {
	inner  PriceStoreRepository
	prices *expirable.LRU[string, []domain.AssetPrice]
	docs   *expirable.LRU[string, []byte]
}

func (h *cachedPriceStoreHandler) GetPriceHistory(ctx context.Context, symbol string) ([]domain.AssetPrice, error) {
	if prices, ok := h.prices.Get(symbol); ok {
		return prices, nil
	}

	prices, err := h.inner.GetPriceHistory(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if prices != nil {
		h.prices.Add(symbol, prices)
	}

	return prices, nil
}

func (h *cachedPriceStoreHandler) PutPriceHistory(ctx context.Context, symbol string, prices []domain.AssetPrice) error {
	if err := h.inner.PutPriceHistory(ctx, symbol, prices); err != nil {
		return err
	}
	h.prices.Remove(symbol)

	return nil
}

func (h *cachedPriceStoreHandler) GetPreprocessedData(ctx context.Context) ([]byte, error) {
	if doc, ok := h.docs.Get(preprocessedDataKey); ok {
		return doc, nil
	}

	doc, err := h.inner.GetPreprocessedData(ctx)
	if err != nil {
		return nil, err
	}
	if doc != nil {
		h.docs.Add(preprocessedDataKey, doc)
	}

	return doc, nil
}

func (h *cachedPriceStoreHandler) PutPreprocessedData(ctx context.Context, doc []byte) error {
	if err := h.inner.PutPreprocessedData(ctx, doc); err != nil {
		return err
	}
	h.docs.Remove(preprocessedDataKey)

	return nil
}
