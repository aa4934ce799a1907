package port

import (
	"context"
	"errors"
)

// ErrPriceUnavailable is the typed absence returned by a PriceSource that has
// no usable quote for a mint. It is ordinary control flow for the resolution
// chain, never an outage signal.
var ErrPriceUnavailable = errors.New("price unavailable")

// PriceSource resolves a token's USD price from a single external provider.
// Implementations return ErrPriceUnavailable when the provider answered but
// had no strictly positive price for the mint.
type PriceSource interface {
	Name() string
	ResolvePrice(ctx context.Context, mint string) (float64, error)
}

// TokenPriceService resolves prices through an ordered chain of sources with
// caching. A resolution that exhausts every source yields 0, the "unpriced"
// sentinel; callers must not read it as "free".
type TokenPriceService interface {
	GetTokenPrice(ctx context.Context, mint string) (float64, error)
}

// HistoricalPriceSource is the extension point for real daily-return
// analytics. The shipped implementation returns empty series.
type HistoricalPriceSource interface {
	GetDailySeries(ctx context.Context, mints []string) (map[string][]float64, error)
}
