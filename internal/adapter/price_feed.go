package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceFeed fetches the fiat price of one whole coin.
type PriceFeed interface {
	FetchRate(ctx context.Context, quoteCurrency string) (decimal.Decimal, error)
}

// CoinGeckoAdapter reads the CoinGecko simple/price endpoint.
type CoinGeckoAdapter struct {
	baseURL    string
	coinID     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCoinGeckoAdapter creates a price feed for coinID (e.g. "solana") with the given request timeout.
func NewCoinGeckoAdapter(baseURL, coinID string, timeout time.Duration, logger *zap.Logger) *CoinGeckoAdapter {
	return &CoinGeckoAdapter{
		baseURL:    strings.TrimRight(baseURL, "/"),
		coinID:     coinID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchRate returns how many quoteCurrency units one coin costs.
func (a *CoinGeckoAdapter) FetchRate(ctx context.Context, quoteCurrency string) (decimal.Decimal, error) {
	quote := strings.ToLower(quoteCurrency)
	q := url.Values{}
	q.Set("ids", a.coinID)
	q.Set("vs_currencies", quote)
	endpoint := a.baseURL + "/simple/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("price feed status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("decode price feed: %w", err)
	}
	rate, ok := payload[a.coinID][quote]
	if !ok {
		return decimal.Zero, fmt.Errorf("price feed has no %s/%s quote", a.coinID, quote)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("price feed returned non-positive rate %s", rate)
	}

	a.logger.Info("fetched exchange rate",
		zap.String("coin", a.coinID),
		zap.String("quote", quote),
		zap.String("rate", rate.String()),
	)
	return rate, nil
}
