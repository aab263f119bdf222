package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type Secrets struct {
	ObjectStore ObjectStoreSecrets `json:"objectStore"`
	Cache       CacheSettings      `json:"cache"`
}

type ObjectStoreSecrets struct {
	AccountID       string `json:"accountId"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	Bucket          string `json:"bucket"`
}

type CacheSettings struct {
	MaxEntries int `json:"maxEntries"`
	TTLMinutes int `json:"ttlMinutes"`
}

func (c CacheSettings) MaxEntriesOrDefault() int {
	if c.MaxEntries <= 0 {
		return 256
	}
	return c.MaxEntries
}

func (c CacheSettings) TTLOrDefault() time.Duration {
	if c.TTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

func LoadSecrets() (*Secrets, error) {
	secretsFile := "secrets.json"
	if os.Getenv("BACKTEST_ENV") == "dev" {
		secretsFile = "secrets-dev.json"
	} else if os.Getenv("BACKTEST_ENV") == "test" {
		secretsFile = "secrets-test.json"
	}
	f, err := os.ReadFile(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", secretsFile, err)
	}

	secrets := Secrets{}
	err = json.Unmarshal(f, &secrets)
	if err != nil {
		return nil, err
	}

	return &secrets, nil
}
