package service

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"defai_checker/internal/analysis"
	"defai_checker/internal/app/port"
	"defai_checker/internal/domain/entity"
	"defai_checker/internal/infrastructure/configloader"
	"defai_checker/internal/pkg/cache"
	"defai_checker/internal/pkg/metrics"
	"defai_checker/internal/pkg/retry"
	"defai_checker/internal/scoring"
)

// signatureFetchLimit caps how much transaction history one run pulls.
const signatureFetchLimit = 100

// Run bundles one pipeline outcome with its per-token error side-channel.
// Both are cached as a unit, so the recorded errors live exactly as long as
// the metrics they annotate.
type Run struct {
	Metrics *entity.PortfolioMetrics
	Errors  []entity.AnalyzerError
}

// portfolioServiceImpl implements port.PortfolioService. It orchestrates the
// full pipeline: fetch token accounts, price and aggregate balances, pull
// transaction history, score, analyze, cache.
type portfolioServiceImpl struct {
	chain     port.ChainClient
	prices    port.TokenPriceService
	history   port.HistoricalPriceSource
	cache     *cache.Store[Run]
	metadata  *gocache.Cache
	logger    port.Logger
	collector *metrics.Collector

	retryAttempts int
	retryDelay    time.Duration

	// Concurrent requests for the same wallet collapse into one run.
	group singleflight.Group
}

// NewPortfolioService creates a new instance of portfolioServiceImpl.
func NewPortfolioService(
	chain port.ChainClient,
	prices port.TokenPriceService,
	history port.HistoricalPriceSource,
	runCache *cache.Store[Run],
	l port.Logger,
	collector *metrics.Collector,
	cfg *configloader.Config,
) port.PortfolioService {
	return &portfolioServiceImpl{
		chain:         chain,
		prices:        prices,
		history:       history,
		cache:         runCache,
		metadata:      gocache.New(time.Duration(cfg.Cache.MetadataTTLMinutes)*time.Minute, 10*time.Minute),
		logger:        l,
		collector:     collector,
		retryAttempts: cfg.Retry.MaxAttempts,
		retryDelay:    time.Duration(cfg.Retry.BaseDelayMs) * time.Millisecond,
	}
}

// GetPortfolioMetrics implements port.PortfolioService.
func (s *portfolioServiceImpl) GetPortfolioMetrics(ctx context.Context, walletAddress string) (*entity.PortfolioMetrics, error) {
	if cached, ok := s.cache.Get(walletAddress); ok {
		s.logger.Debug("Portfolio served from cache", "wallet", walletAddress)
		s.collector.PipelineRuns.WithLabelValues(metrics.ResultCacheHit).Inc()
		return cached.Metrics, nil
	}

	result, err, _ := s.group.Do(walletAddress, func() (interface{}, error) {
		// A run that finished while we were queued already filled the cache.
		if cached, ok := s.cache.Get(walletAddress); ok {
			s.collector.PipelineRuns.WithLabelValues(metrics.ResultCacheHit).Inc()
			return cached.Metrics, nil
		}
		return s.runPipeline(ctx, walletAddress)
	})
	if err != nil {
		return nil, entity.AsPortfolioError(err)
	}
	return result.(*entity.PortfolioMetrics), nil
}

// AggregationErrors implements port.PortfolioService. The side-channel is
// read from the cached run, so it disappears together with the metrics it
// belongs to.
func (s *portfolioServiceImpl) AggregationErrors(walletAddress string) []entity.AnalyzerError {
	if cached, ok := s.cache.Get(walletAddress); ok {
		return cached.Errors
	}
	return nil
}

func (s *portfolioServiceImpl) runPipeline(ctx context.Context, walletAddress string) (*entity.PortfolioMetrics, error) {
	start := time.Now()
	s.logger.Info("Starting portfolio pipeline", "wallet", walletAddress)

	accounts, err := retry.Do(ctx, s.retryAttempts, s.retryDelay, func(ctx context.Context) ([]entity.TokenAccountInfo, error) {
		return s.chain.GetTokenAccounts(ctx, walletAddress)
	})
	if err != nil {
		s.logger.Error("Failed to fetch token accounts", "wallet", walletAddress, "error", err)
		s.collector.PipelineRuns.WithLabelValues(metrics.ResultError).Inc()
		return nil, entity.NewPortfolioError("Failed to fetch portfolio data", entity.ErrCodeDataFetch, err)
	}

	balances, runErrors := s.aggregateBalances(ctx, walletAddress, accounts)

	transactions, err := retry.Do(ctx, s.retryAttempts, s.retryDelay, func(ctx context.Context) ([]entity.TransactionSignature, error) {
		return s.chain.GetSignatures(ctx, walletAddress, signatureFetchLimit)
	})
	if err != nil {
		// Transaction history is enriching, not load-bearing. Score what we
		// have and record the gap.
		s.logger.Warn("Failed to fetch transaction history, scoring without it",
			"wallet", walletAddress, "error", err)
		runErrors = append(runErrors, entity.AnalyzerError{
			WalletAddress: walletAddress,
			Message:       "failed to fetch transaction history: " + err.Error(),
		})
		transactions = nil
	}

	perf := s.computePerformance(ctx, balances, len(transactions))

	portfolioMetrics := scoring.Compose(balances, len(transactions), perf)
	portfolioMetrics.AIAnalysis = analysis.Analyze(&portfolioMetrics)

	s.cache.Set(walletAddress, Run{Metrics: &portfolioMetrics, Errors: runErrors})
	s.collector.PipelineRuns.WithLabelValues(metrics.ResultOK).Inc()
	s.collector.PipelineDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("Portfolio pipeline finished",
		"wallet", walletAddress,
		"tokens", len(balances),
		"transactions", len(transactions),
		"defaiScore", portfolioMetrics.DefaiScore,
		"durationMs", time.Since(start).Milliseconds())
	return &portfolioMetrics, nil
}

// aggregateBalances prices every positive token account. Per-token failures
// never abort the batch; the failing token is recorded and dropped, and the
// aggregate is whatever subset succeeded. An unpriced token is not a failure;
// it stays in at the 0 sentinel.
func (s *portfolioServiceImpl) aggregateBalances(ctx context.Context, walletAddress string, accounts []entity.TokenAccountInfo) ([]entity.TokenBalance, []entity.AnalyzerError) {
	balances := make([]entity.TokenBalance, 0, len(accounts))
	var runErrors []entity.AnalyzerError

	for _, account := range accounts {
		if account.TokenAmount.UIAmount <= 0 {
			continue
		}

		price, err := retry.Do(ctx, s.retryAttempts, s.retryDelay, func(ctx context.Context) (float64, error) {
			return s.prices.GetTokenPrice(ctx, account.Mint)
		})
		if err != nil {
			s.logger.Warn("Price lookup failed for token",
				"wallet", walletAddress, "mint", account.Mint, "error", err)
			runErrors = append(runErrors, entity.AnalyzerError{
				WalletAddress: walletAddress,
				Mint:          account.Mint,
				Message:       "price lookup failed: " + err.Error(),
			})
			continue
		}

		balances = append(balances, entity.TokenBalance{
			Mint:   account.Mint,
			Amount: account.TokenAmount.UIAmount,
			Symbol: s.tokenSymbol(ctx, account.Mint),
			Price:  price,
			Value:  price * account.TokenAmount.UIAmount,
		})
	}

	return balances, runErrors
}

// tokenSymbol resolves a display symbol through the metadata cache, falling
// back to the truncated mint when metadata is missing or carries no symbol.
func (s *portfolioServiceImpl) tokenSymbol(ctx context.Context, mint string) string {
	if cached, ok := s.metadata.Get(mint); ok {
		return cached.(string)
	}

	symbol := entity.ShortAddress(mint)
	if meta, err := s.chain.GetTokenMetadata(ctx, mint); err == nil && meta.Symbol != "" {
		symbol = meta.Symbol
	}

	s.metadata.Set(mint, symbol, gocache.DefaultExpiration)
	return symbol
}

// computePerformance builds the performance record, degrading to the all
// neutral defaults when the historical source fails.
func (s *portfolioServiceImpl) computePerformance(ctx context.Context, balances []entity.TokenBalance, txCount int) scoring.PerformanceResult {
	mints := make([]string, 0, len(balances))
	for _, b := range balances {
		mints = append(mints, b.Mint)
	}

	series, err := s.history.GetDailySeries(ctx, mints)
	if err != nil {
		s.logger.Warn("Historical series unavailable, using neutral performance", "error", err)
		return scoring.DefaultPerformance()
	}
	return scoring.Performance(txCount, series)
}
