package marketdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trading-chart-go/internal/config"
)

// RestClientInterface defines the interface for the daily-bar REST client.
type RestClientInterface interface {
	GetServerTime() (int64, error)
	GetDailyBars(symbol string, limit int) ([]Bar, error)
}

// RestClient fetches daily OHLCV bars from a kline-style public REST API.
// It implements the RestClientInterface.
type RestClient struct {
	client   *resty.Client
	interval string
	logger   *zap.Logger
	limiter  *rate.Limiter
}

// ensure RestClient implements the interface
var _ RestClientInterface = (*RestClient)(nil)

// NewRestClient creates a new daily-bar REST client.
func NewRestClient(cfg *config.MarketData, logger *zap.Logger) *RestClient {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	interval := cfg.Interval
	if interval == "" {
		interval = "1d"
	}

	return &RestClient{
		client:   client,
		interval: interval,
		logger:   logger,
		limiter:  limiter,
	}
}

// GetServerTime fetches the current server time.
// This is a good endpoint to test connectivity.
func (c *RestClient) GetServerTime() (int64, error) {
	type ServerTimeResponse struct {
		ServerTime int64 `json:"serverTime"`
	}

	req := c.client.R().
		SetResult(&ServerTimeResponse{})
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "GET", "/time", req)
	if err != nil {
		c.logger.Error("Failed to get server time", zap.Error(err))
		return 0, fmt.Errorf("failed to get server time: %w", err)
	}

	result := resp.Result().(*ServerTimeResponse)
	return result.ServerTime, nil
}

// GetDailyBars fetches up to limit daily bars for a symbol, oldest first.
// The kline wire format is a JSON array per bar:
// [openTimeMs, "open", "high", "low", "close", "volume", closeTimeMs, ...].
func (c *RestClient) GetDailyBars(symbol string, limit int) ([]Bar, error) {
	var raw [][]any

	req := c.client.R().
		SetQueryParam("symbol", symbol).
		SetQueryParam("interval", c.interval).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&raw).
		SetHeader("Content-Type", "application/json")
	ctx := context.Background()

	resp, err := c.doRequest(ctx, "GET", "/klines", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily bars for %s: %w", symbol, err)
	}

	rows := *resp.Result().(*[][]any)
	bars := make([]Bar, 0, len(rows))
	for i, row := range rows {
		bar, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("failed to parse kline %d for %s: %w", i, symbol, err)
		}
		bars = append(bars, bar)
	}

	if err := ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("kline response for %s is malformed: %w", symbol, err)
	}

	return bars, nil
}

// parseKline decodes one kline array into a Bar.
func parseKline(row []any) (Bar, error) {
	if len(row) < 6 {
		return Bar{}, fmt.Errorf("kline has %d fields, want at least 6", len(row))
	}

	openTime, ok := row[0].(float64)
	if !ok {
		return Bar{}, fmt.Errorf("kline open time is not a number: %v", row[0])
	}

	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		s, ok := row[i+1].(string)
		if !ok {
			return Bar{}, fmt.Errorf("kline field %d is not a string: %v", i+1, row[i+1])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Bar{}, fmt.Errorf("kline field %d: %w", i+1, err)
		}
		fields[i] = v
	}

	return Bar{
		Date:   time.UnixMilli(int64(openTime)).UTC(),
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
