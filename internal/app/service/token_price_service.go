package service

import (
	"context"
	"errors"

	"defai_checker/internal/app/port"
	"defai_checker/internal/pkg/cache"
	"defai_checker/internal/pkg/metrics"
)

// tokenPriceServiceImpl implements port.TokenPriceService over an ordered
// chain of sources. The first source with a positive price wins; a chain that
// exhausts every source settles on the 0 sentinel. Only real prices are
// written back to the cache, so an unpriced mint re-walks the chain on its
// next lookup instead of staying frozen at 0 for the TTL.
type tokenPriceServiceImpl struct {
	sources   []port.PriceSource
	cache     *cache.Store[float64]
	logger    port.Logger
	collector *metrics.Collector
}

// NewTokenPriceService creates a new instance of tokenPriceServiceImpl. The
// sources are tried in the order given.
func NewTokenPriceService(
	sources []port.PriceSource,
	priceCache *cache.Store[float64],
	l port.Logger,
	collector *metrics.Collector,
) port.TokenPriceService {
	return &tokenPriceServiceImpl{
		sources:   sources,
		cache:     priceCache,
		logger:    l,
		collector: collector,
	}
}

// GetTokenPrice implements port.TokenPriceService. Source failures are
// swallowed into the fallback walk; the only error returned is context
// cancellation.
func (s *tokenPriceServiceImpl) GetTokenPrice(ctx context.Context, mint string) (float64, error) {
	if price, ok := s.cache.Get(mint); ok {
		s.collector.PriceCacheHits.Inc()
		return price, nil
	}

	for _, source := range s.sources {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		price, err := source.ResolvePrice(ctx, mint)
		if err != nil {
			if errors.Is(err, port.ErrPriceUnavailable) {
				s.logger.Debug("Price source had no quote", "source", source.Name(), "mint", mint)
			} else {
				s.logger.Warn("Price source failed", "source", source.Name(), "mint", mint, "error", err)
			}
			continue
		}
		if price <= 0 {
			continue
		}

		s.collector.PriceSourceHits.WithLabelValues(source.Name()).Inc()
		s.cache.Set(mint, price)
		return price, nil
	}

	s.logger.Warn("Price resolution exhausted every source", "mint", mint)
	s.collector.UnpricedTokens.Inc()
	return 0, nil
}
