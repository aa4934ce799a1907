package port

import (
	"context"

	"defai_checker/internal/domain/entity"
)

// PortfolioService runs the scoring pipeline for a wallet address.
type PortfolioService interface {
	// GetPortfolioMetrics returns the cached or freshly computed metrics
	// bundle for the wallet. Failures surface as *entity.PortfolioError.
	GetPortfolioMetrics(ctx context.Context, walletAddress string) (*entity.PortfolioMetrics, error)

	// AggregationErrors returns the per-token failure messages recorded during
	// the most recent run for the wallet. Observability only.
	AggregationErrors(walletAddress string) []entity.AnalyzerError
}
