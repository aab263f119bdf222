package cmd

import (
	"fmt"

	"stockbacktest/api"
	"stockbacktest/internal"
	"stockbacktest/internal/app"
	"stockbacktest/internal/repository"
)

func InitializeDependencies() (*api.ApiHandler, error) {
	secrets, err := internal.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	priceStore, err := NewPriceStore(secrets)
	if err != nil {
		return nil, err
	}
	cachedPriceStore := repository.NewCachedPriceStore(
		priceStore,
		secrets.Cache.MaxEntriesOrDefault(),
		secrets.Cache.TTLOrDefault(),
	)

	return &api.ApiHandler{
		BacktestHandler: app.BacktestHandler{
			PriceStore: cachedPriceStore,
		},
		PriceStore: cachedPriceStore,
	}, nil
}

// NewPriceStore returns the raw, uncached store client. The updater uses
// this directly since a write-heavy batch gains nothing from the cache.
func NewPriceStore(secrets *internal.Secrets) (repository.PriceStoreRepository, error) {
	priceStore, err := repository.NewPriceStoreRepository(
		secrets.ObjectStore.AccountID,
		secrets.ObjectStore.AccessKeyID,
		secrets.ObjectStore.SecretAccessKey,
		secrets.ObjectStore.Bucket,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create price store: %w", err)
	}

	return priceStore, nil
}
