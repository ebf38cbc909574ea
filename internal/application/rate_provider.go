package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/TicketsPartners/service-tickets/internal/adapter"
	"github.com/TicketsPartners/service-tickets/internal/metrics"
)

// RateCache is an optional short-lived store for fetched rates.
type RateCache interface {
	Get(ctx context.Context, quote string) (decimal.Decimal, error)
	Set(ctx context.Context, quote string, rate decimal.Decimal) error
}

// ExchangeRateProvider returns fiat units per whole coin. It never fails: any
// feed error yields the configured fallback rate.
type ExchangeRateProvider struct {
	feed     adapter.PriceFeed
	cache    RateCache
	fallback decimal.Decimal
	timeout  time.Duration
	logger   *zap.Logger
}

// NewExchangeRateProvider creates a provider. cache may be nil.
func NewExchangeRateProvider(feed adapter.PriceFeed, cache RateCache, fallback decimal.Decimal, timeout time.Duration, logger *zap.Logger) *ExchangeRateProvider {
	return &ExchangeRateProvider{
		feed:     feed,
		cache:    cache,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
	}
}

// GetRate returns the current rate for quote.
func (p *ExchangeRateProvider) GetRate(ctx context.Context, quote string) decimal.Decimal {
	if p.cache != nil {
		if rate, err := p.cache.Get(ctx, quote); err == nil && rate.IsPositive() {
			metrics.ExchangeRateCacheHits.Inc()
			return rate
		}
	}

	feedCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rate, err := p.feed.FetchRate(feedCtx, quote)
	if err == nil && !rate.IsPositive() {
		err = errNonPositiveRate
	}
	if err != nil {
		metrics.ExchangeRateFallbacks.Inc()
		p.logger.Warn("price feed unavailable, using fallback rate",
			zap.String("quote", quote),
			zap.String("fallback", p.fallback.String()),
			zap.Error(err),
		)
		return p.fallback
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, quote, rate); err != nil {
			p.logger.Debug("failed to cache exchange rate", zap.Error(err))
		}
	}
	return rate
}
