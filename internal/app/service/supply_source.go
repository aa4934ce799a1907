package service

import (
	"context"

	"defai_checker/internal/app/port"
)

// supplySourceImpl derives a price from on-chain supply metadata, price being
// marketCap / supply. It is the last resort of the resolution chain and only
// answers when the metadata carries a market cap.
type supplySourceImpl struct {
	chain  port.ChainClient
	logger port.Logger
}

// NewSupplySource creates a PriceSource backed by token supply metadata.
func NewSupplySource(chain port.ChainClient, l port.Logger) port.PriceSource {
	return &supplySourceImpl{chain: chain, logger: l}
}

// Name implements port.PriceSource.
func (s *supplySourceImpl) Name() string { return "supply" }

// ResolvePrice implements port.PriceSource.
func (s *supplySourceImpl) ResolvePrice(ctx context.Context, mint string) (float64, error) {
	meta, err := s.chain.GetTokenMetadata(ctx, mint)
	if err != nil {
		return 0, err
	}
	if meta.MarketCap == nil || meta.Supply <= 0 {
		return 0, port.ErrPriceUnavailable
	}

	price := *meta.MarketCap / meta.Supply
	if price <= 0 {
		return 0, port.ErrPriceUnavailable
	}

	s.logger.Debug("Derived price from supply metadata", "mint", mint, "price", price)
	return price, nil
}
