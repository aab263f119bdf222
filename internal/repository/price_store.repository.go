package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"stockbacktest/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

const (
	preprocessedDataKey = "preprocessed_data.json"
	priceKeyPrefix      = "prices/"
)

// PriceStoreRepository wraps the object store that holds one CSV price
// history per symbol plus the preprocessed fundamentals document. Absence
// of an object is a normal outcome, reported as (nil, nil) rather than
// an error.
type PriceStoreRepository interface {
	GetPriceHistory(ctx context.Context, symbol string) ([]domain.AssetPrice, error)
	PutPriceHistory(ctx context.Context, symbol string, prices []domain.AssetPrice) error
	GetPreprocessedData(ctx context.Context) ([]byte, error)
	PutPreprocessedData(ctx context.Context, doc []byte) error
}

type priceStoreRepositoryHandler struct {
	client *s3.Client
	bucket string
}

// NewPriceStoreRepository connects to an S3-compatible bucket. accountID
// selects the Cloudflare R2 endpoint; R2 expects the region "auto".
func NewPriceStoreRepository(accountID, accessKeyID, secretAccessKey, bucket string) (PriceStoreRepository, error) {
	cfg, err := config.LoadDefaultConfig(
		context.Background(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object store config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})

	return &priceStoreRepositoryHandler{
		client: client,
		bucket: bucket,
	}, nil
}

// priceCsvRow mirrors the uploaded CSV layout: a Date column and a Close
// column. Close is a pointer so rows with an empty close cell decode
// instead of failing; such rows are dropped.
type priceCsvRow struct {
	Date  string           `csv:"Date"`
	Close *decimal.Decimal `csv:"Close"`
}

func priceKey(symbol string) string {
	return priceKeyPrefix + symbol + ".csv"
}

func (h priceStoreRepositoryHandler) GetPriceHistory(ctx context.Context, symbol string) ([]domain.AssetPrice, error) {
	body, err := h.getObject(ctx, priceKey(symbol))
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	rows := []priceCsvRow{}
	if err := gocsv.UnmarshalBytes(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode price csv for %s: %w", symbol, err)
	}

	prices := []domain.AssetPrice{}
	for _, row := range rows {
		if row.Close == nil {
			continue
		}
		date, err := time.Parse(time.DateOnly, row.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date %q in price csv for %s: %w", row.Date, symbol, err)
		}
		prices = append(prices, domain.AssetPrice{
			Symbol: symbol,
			Date:   date,
			Price:  *row.Close,
		})
	}
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Date.Before(prices[j].Date)
	})

	return prices, nil
}

func (h priceStoreRepositoryHandler) PutPriceHistory(ctx context.Context, symbol string, prices []domain.AssetPrice) error {
	rows := make([]priceCsvRow, 0, len(prices))
	for _, p := range prices {
		price := p.Price
		rows = append(rows, priceCsvRow{
			Date:  p.Date.Format(time.DateOnly),
			Close: &price,
		})
	}
	body, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return fmt.Errorf("failed to encode price csv for %s: %w", symbol, err)
	}

	return h.putObject(ctx, priceKey(symbol), body, "text/csv")
}

func (h priceStoreRepositoryHandler) GetPreprocessedData(ctx context.Context) ([]byte, error) {
	return h.getObject(ctx, preprocessedDataKey)
}

func (h priceStoreRepositoryHandler) PutPreprocessedData(ctx context.Context, doc []byte) error {
	return h.putObject(ctx, preprocessedDataKey, doc, "application/json")
}

func (h priceStoreRepositoryHandler) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := h.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.bucket),
		Key:    aws.String(key),
	})
	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from object store: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from object store: %w", key, err)
	}

	return body, nil
}

func (h priceStoreRepositoryHandler) putObject(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := h.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put %s to object store: %w", key, err)
	}

	return nil
}
