package api

import (
	"fmt"
	"time"

	"stockbacktest/internal"
	"stockbacktest/internal/app"
	"stockbacktest/internal/calculator"
	"stockbacktest/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const defaultInitialAmount = 10000

type AssetAllocation struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

type PortfolioConfig struct {
	Name   string            `json:"name"`
	Assets []AssetAllocation `json:"assets"`
}

type BacktestRequest struct {
	Portfolios        []PortfolioConfig `json:"portfolios"`
	InitialAmount     *float64          `json:"initialAmount"`
	StartDate         string            `json:"startDate"`
	EndDate           string            `json:"endDate"`
	RebalancingPeriod string            `json:"rebalancingPeriod"`
	Benchmark         *string           `json:"benchmark"`
}

type PortfolioResponse struct {
	Name    string                        `json:"name"`
	Values  []float64                     `json:"values"`
	Metrics calculator.PerformanceMetrics `json:"metrics"`
}

type BacktestResponse struct {
	Dates      []string            `json:"dates"`
	Portfolios []PortfolioResponse `json:"portfolios"`
	Warnings   []string            `json:"warnings"`
}

func (m ApiHandler) runBacktest(c *gin.Context) {
	var requestBody BacktestRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	input, err := parseBacktestRequest(requestBody)
	if err != nil {
		returnErrorJsonCode(err, c, 400)
		return
	}

	result, err := m.BacktestHandler.Backtest(c.Request.Context(), *input)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	c.JSON(200, formatBacktestResponse(result))
}

// parseBacktestRequest validates the request at the boundary so the
// engine only ever sees well-formed input.
func parseBacktestRequest(requestBody BacktestRequest) (*app.BacktestInput, error) {
	if len(requestBody.Portfolios) == 0 {
		return nil, fmt.Errorf("at least one portfolio is required")
	}

	startDate, err := time.Parse(time.DateOnly, requestBody.StartDate)
	if err != nil {
		return nil, fmt.Errorf("could not parse start date: %w", err)
	}
	endDate, err := time.Parse(time.DateOnly, requestBody.EndDate)
	if err != nil {
		return nil, fmt.Errorf("could not parse end date: %w", err)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("end date cannot be before start date")
	}

	rebalancingPeriod, err := internal.NewRebalancingPeriod(requestBody.RebalancingPeriod)
	if err != nil {
		return nil, err
	}

	initialAmount := decimal.NewFromInt(defaultInitialAmount)
	if requestBody.InitialAmount != nil {
		initialAmount = decimal.NewFromFloat(*requestBody.InitialAmount)
		if !initialAmount.IsPositive() {
			return nil, fmt.Errorf("initial amount must be positive")
		}
	}

	portfolios := []domain.PortfolioConfig{}
	for _, p := range requestBody.Portfolios {
		if p.Name == "" {
			return nil, fmt.Errorf("every portfolio needs a name")
		}
		config := domain.PortfolioConfig{Name: p.Name}
		for _, asset := range p.Assets {
			if asset.Ticker == "" {
				return nil, fmt.Errorf("portfolio %s has an asset with no ticker", p.Name)
			}
			config.Assets = append(config.Assets, domain.AssetAllocation{
				Symbol: asset.Ticker,
				Weight: decimal.NewFromFloat(asset.Weight),
			})
		}
		portfolios = append(portfolios, config)
	}

	var benchmark *string
	if requestBody.Benchmark != nil && *requestBody.Benchmark != "" {
		benchmark = requestBody.Benchmark
	}

	return &app.BacktestInput{
		Portfolios:        portfolios,
		InitialAmount:     initialAmount,
		BacktestStart:     startDate,
		BacktestEnd:       endDate,
		RebalancingPeriod: *rebalancingPeriod,
		BenchmarkSymbol:   benchmark,
	}, nil
}

func formatBacktestResponse(result *app.BacktestResult) BacktestResponse {
	dates := make([]string, 0, len(result.Dates))
	for _, date := range result.Dates {
		dates = append(dates, date.Format(time.DateOnly))
	}

	portfolios := make([]PortfolioResponse, 0, len(result.Portfolios))
	for _, p := range result.Portfolios {
		values := make([]float64, 0, len(p.Values))
		for _, v := range p.Values {
			values = append(values, v.Round(2).InexactFloat64())
		}
		portfolios = append(portfolios, PortfolioResponse{
			Name:    p.Name,
			Values:  values,
			Metrics: p.Metrics,
		})
	}

	return BacktestResponse{
		Dates:      dates,
		Portfolios: portfolios,
		Warnings:   result.Warnings,
	}
}
