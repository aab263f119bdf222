package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"stockbacktest/cmd"
	"stockbacktest/internal"
	"stockbacktest/internal/logger"

	"github.com/spf13/cobra"
)

var (
	tickersFile  string
	tickers      []string
	historyStart string
	numWorkers   int
)

var rootCmd = &cobra.Command{
	Use:   "updater",
	Short: "Download fundamentals and price history into the object store",
	Long: `Fetches fundamentals and daily adjusted close history for a set of
tickers and uploads them to the price store the backtest service reads
from. Tickers come from --tickers or one-per-line from --tickers-file.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.Flags().StringVar(&tickersFile, "tickers-file", "", "file with one ticker symbol per line")
	rootCmd.Flags().StringSliceVar(&tickers, "tickers", nil, "comma-separated ticker symbols")
	rootCmd.Flags().StringVar(&historyStart, "start", "1990-01-01", "first date of price history to download")
	rootCmd.Flags().IntVar(&numWorkers, "workers", 10, "parallel download workers")
}

func runUpdate(command *cobra.Command, args []string) error {
	symbols, err := resolveSymbols()
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no tickers given - use --tickers or --tickers-file")
	}

	start, err := time.Parse(time.DateOnly, historyStart)
	if err != nil {
		return fmt.Errorf("could not parse start date: %w", err)
	}

	secrets, err := internal.LoadSecrets()
	if err != nil {
		return err
	}
	priceStore, err := cmd.NewPriceStore(secrets)
	if err != nil {
		return err
	}

	log := logger.New()
	ctx := context.WithValue(context.Background(), logger.ContextKey, log)
	log.Infof("ingesting %d symbols with %d workers", len(symbols), numWorkers)

	return internal.IngestReferenceData(ctx, priceStore, internal.IngestInput{
		Symbols:      symbols,
		HistoryStart: start,
		NumWorkers:   numWorkers,
	})
}

func resolveSymbols() ([]string, error) {
	symbols := append([]string{}, tickers...)
	if tickersFile != "" {
		f, err := os.Open(tickersFile)
		if err != nil {
			return nil, fmt.Errorf("could not open tickers file: %w", err)
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			symbol := strings.TrimSpace(scanner.Text())
			if symbol != "" {
				symbols = append(symbols, symbol)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	seen := map[string]bool{}
	unique := []string{}
	for _, symbol := range symbols {
		symbol = strings.ToUpper(symbol)
		if !seen[symbol] {
			seen[symbol] = true
			unique = append(unique, symbol)
		}
	}

	return unique, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
