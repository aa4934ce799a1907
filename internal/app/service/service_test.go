package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"defai_checker/internal/app/port"
	"defai_checker/internal/domain/entity"
	"defai_checker/internal/infrastructure/configloader"
	"defai_checker/internal/pkg/cache"
	"defai_checker/internal/pkg/metrics"
)

type fakeSource struct {
	name  string
	calls int
	fn    func(mint string) (float64, error)
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) ResolvePrice(ctx context.Context, mint string) (float64, error) {
	f.calls++
	return f.fn(mint)
}

type fakeChain struct {
	accountsFn   func(owner string) ([]entity.TokenAccountInfo, error)
	metadataFn   func(mint string) (*entity.TokenMetadata, error)
	signaturesFn func(address string, limit int) ([]entity.TransactionSignature, error)
}

func (f *fakeChain) GetTokenAccounts(ctx context.Context, owner string) ([]entity.TokenAccountInfo, error) {
	return f.accountsFn(owner)
}

func (f *fakeChain) GetTokenMetadata(ctx context.Context, mint string) (*entity.TokenMetadata, error) {
	if f.metadataFn == nil {
		return nil, errors.New("no metadata")
	}
	return f.metadataFn(mint)
}

func (f *fakeChain) GetSignatures(ctx context.Context, address string, limit int) ([]entity.TransactionSignature, error) {
	return f.signaturesFn(address, limit)
}

func newCollector() *metrics.Collector {
	return metrics.NewCollector(prometheus.NewRegistry())
}

func testConfig() *configloader.Config {
	cfg := configloader.Default()
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.BaseDelayMs = 1
	return cfg
}

func TestTokenPriceService(t *testing.T) {
	ctx := context.Background()

	t.Run("first source with a positive price wins", func(t *testing.T) {
		primary := &fakeSource{name: "primary", fn: func(string) (float64, error) { return 1.5, nil }}
		secondary := &fakeSource{name: "secondary", fn: func(string) (float64, error) { return 2.0, nil }}

		svc := NewTokenPriceService(
			[]port.PriceSource{primary, secondary},
			cache.New[float64](time.Minute), port.NopLogger{}, newCollector())

		price, err := svc.GetTokenPrice(ctx, "mint1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if price != 1.5 {
			t.Errorf("expected 1.5, got %v", price)
		}
		if secondary.calls != 0 {
			t.Errorf("secondary should not be consulted, got %d calls", secondary.calls)
		}
	})

	t.Run("falls through unavailable and failing sources", func(t *testing.T) {
		down := &fakeSource{name: "down", fn: func(string) (float64, error) { return 0, errors.New("boom") }}
		empty := &fakeSource{name: "empty", fn: func(string) (float64, error) { return 0, port.ErrPriceUnavailable }}
		last := &fakeSource{name: "last", fn: func(string) (float64, error) { return 0.25, nil }}

		svc := NewTokenPriceService(
			[]port.PriceSource{down, empty, last},
			cache.New[float64](time.Minute), port.NopLogger{}, newCollector())

		price, err := svc.GetTokenPrice(ctx, "mint1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if price != 0.25 {
			t.Errorf("expected 0.25, got %v", price)
		}
	})

	t.Run("exhausted chain settles on the zero sentinel without caching it", func(t *testing.T) {
		empty := &fakeSource{name: "empty", fn: func(string) (float64, error) { return 0, port.ErrPriceUnavailable }}
		collector := newCollector()

		svc := NewTokenPriceService(
			[]port.PriceSource{empty},
			cache.New[float64](time.Minute), port.NopLogger{}, collector)

		for i := 0; i < 2; i++ {
			price, err := svc.GetTokenPrice(ctx, "mint1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if price != 0 {
				t.Errorf("expected 0 sentinel, got %v", price)
			}
		}
		if empty.calls != 2 {
			t.Errorf("expected the chain to be re-walked per lookup, got %d calls", empty.calls)
		}
		if got := testutil.ToFloat64(collector.UnpricedTokens); got != 2 {
			t.Errorf("expected 2 unpriced resolutions, got %v", got)
		}
		if got := testutil.ToFloat64(collector.PriceCacheHits); got != 0 {
			t.Errorf("expected no cache hits, got %v", got)
		}
	})

	t.Run("a source recovering after an exhausted walk is picked up", func(t *testing.T) {
		available := false
		flappy := &fakeSource{name: "flappy", fn: func(string) (float64, error) {
			if !available {
				return 0, port.ErrPriceUnavailable
			}
			return 4.2, nil
		}}

		svc := NewTokenPriceService(
			[]port.PriceSource{flappy},
			cache.New[float64](time.Minute), port.NopLogger{}, newCollector())

		if price, _ := svc.GetTokenPrice(ctx, "mint1"); price != 0 {
			t.Fatalf("expected 0 while the source is down, got %v", price)
		}

		available = true
		price, err := svc.GetTokenPrice(ctx, "mint1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if price != 4.2 {
			t.Errorf("expected the recovered price, got %v", price)
		}
	})

	t.Run("cache short-circuits the chain", func(t *testing.T) {
		source := &fakeSource{name: "src", fn: func(string) (float64, error) { return 3.0, nil }}
		collector := newCollector()

		svc := NewTokenPriceService(
			[]port.PriceSource{source},
			cache.New[float64](time.Minute), port.NopLogger{}, collector)

		for i := 0; i < 3; i++ {
			if _, err := svc.GetTokenPrice(ctx, "mint1"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if source.calls != 1 {
			t.Errorf("expected 1 source call, got %d", source.calls)
		}
		if got := testutil.ToFloat64(collector.PriceCacheHits); got != 2 {
			t.Errorf("expected 2 cache hits, got %v", got)
		}
	})
}

func TestSupplySource(t *testing.T) {
	ctx := context.Background()
	marketCap := 1_000_000.0

	t.Run("derives price from market cap over supply", func(t *testing.T) {
		chain := &fakeChain{metadataFn: func(string) (*entity.TokenMetadata, error) {
			return &entity.TokenMetadata{Supply: 500_000, MarketCap: &marketCap}, nil
		}}
		price, err := NewSupplySource(chain, port.NopLogger{}).ResolvePrice(ctx, "mint1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if price != 2.0 {
			t.Errorf("expected 2.0, got %v", price)
		}
	})

	t.Run("missing market cap is a typed absence", func(t *testing.T) {
		chain := &fakeChain{metadataFn: func(string) (*entity.TokenMetadata, error) {
			return &entity.TokenMetadata{Supply: 500_000}, nil
		}}
		_, err := NewSupplySource(chain, port.NopLogger{}).ResolvePrice(ctx, "mint1")
		if !errors.Is(err, port.ErrPriceUnavailable) {
			t.Fatalf("expected ErrPriceUnavailable, got %v", err)
		}
	})

	t.Run("zero supply is a typed absence", func(t *testing.T) {
		chain := &fakeChain{metadataFn: func(string) (*entity.TokenMetadata, error) {
			return &entity.TokenMetadata{Supply: 0, MarketCap: &marketCap}, nil
		}}
		_, err := NewSupplySource(chain, port.NopLogger{}).ResolvePrice(ctx, "mint1")
		if !errors.Is(err, port.ErrPriceUnavailable) {
			t.Fatalf("expected ErrPriceUnavailable, got %v", err)
		}
	})
}

func newPortfolioService(chain port.ChainClient, prices port.TokenPriceService) port.PortfolioService {
	return NewPortfolioService(
		chain, prices, NewStaticHistorySource(),
		cache.New[Run](time.Minute),
		port.NopLogger{}, newCollector(), testConfig())
}

type fakePrices struct {
	fn func(mint string) (float64, error)
}

func (f *fakePrices) GetTokenPrice(ctx context.Context, mint string) (float64, error) {
	return f.fn(mint)
}

func staticPrices(quotes map[string]float64) port.TokenPriceService {
	return NewTokenPriceService(
		[]port.PriceSource{&fakeSource{name: "static", fn: func(mint string) (float64, error) {
			if price, ok := quotes[mint]; ok {
				return price, nil
			}
			return 0, port.ErrPriceUnavailable
		}}},
		cache.New[float64](time.Minute), port.NopLogger{}, newCollector())
}

func TestPortfolioService(t *testing.T) {
	ctx := context.Background()
	wallet := "9qVPMhnXVbr7TD1EoeKbutpm8AoNm7yBzB8JJZ7PYEPS"

	t.Run("runs the full pipeline", func(t *testing.T) {
		chain := &fakeChain{
			accountsFn: func(string) ([]entity.TokenAccountInfo, error) {
				return []entity.TokenAccountInfo{
					{Mint: "mintA", TokenAmount: entity.TokenAmount{UIAmount: 100}},
					{Mint: "mintB", TokenAmount: entity.TokenAmount{UIAmount: 40}},
					{Mint: "mintEmpty", TokenAmount: entity.TokenAmount{UIAmount: 0}},
				}, nil
			},
			metadataFn: func(mint string) (*entity.TokenMetadata, error) {
				if mint == "mintA" {
					return &entity.TokenMetadata{Symbol: "AAA"}, nil
				}
				return nil, errors.New("no metadata")
			},
			signaturesFn: func(string, int) ([]entity.TransactionSignature, error) {
				return []entity.TransactionSignature{{Signature: "sig1"}, {Signature: "sig2"}}, nil
			},
		}

		svc := newPortfolioService(chain, staticPrices(map[string]float64{"mintA": 6, "mintB": 10}))

		got, err := svc.GetPortfolioMetrics(ctx, wallet)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// 100*6 = 600 and 40*10 = 400 gives the 96 diversification split.
		if got.Diversification != 96 {
			t.Errorf("diversification: expected 96, got %v", got.Diversification)
		}
		if len(got.TopHoldings) != 2 {
			t.Fatalf("expected 2 holdings, got %v", got.TopHoldings)
		}
		if got.TopHoldings[0] != "AAA" {
			t.Errorf("expected metadata symbol first, got %v", got.TopHoldings)
		}
		if got.TopHoldings[1] != "mintB" {
			t.Errorf("expected short mint fallback, got %v", got.TopHoldings)
		}
		if got.AIAnalysis == "" {
			t.Error("expected populated analysis")
		}
		if got.Performance.VsCMC100 != 3.2 || got.AlphaScore != 75 {
			t.Errorf("unexpected performance fields: %+v", got.Performance)
		}
		if errs := svc.AggregationErrors(wallet); len(errs) != 0 {
			t.Errorf("expected no aggregation errors, got %v", errs)
		}
	})

	t.Run("account fetch failure surfaces as a data fetch error", func(t *testing.T) {
		calls := 0
		chain := &fakeChain{
			accountsFn: func(string) ([]entity.TokenAccountInfo, error) {
				calls++
				return nil, errors.New("rpc down")
			},
			signaturesFn: func(string, int) ([]entity.TransactionSignature, error) { return nil, nil },
		}

		svc := newPortfolioService(chain, staticPrices(nil))

		_, err := svc.GetPortfolioMetrics(ctx, wallet)
		if err == nil {
			t.Fatal("expected error")
		}
		var pe *entity.PortfolioError
		if !errors.As(err, &pe) || pe.Code != entity.ErrCodeDataFetch {
			t.Fatalf("expected DATA_FETCH_ERROR, got %v", err)
		}
		if calls != 2 {
			t.Errorf("expected 2 attempts, got %d", calls)
		}
	})

	t.Run("transaction failure degrades to an empty history", func(t *testing.T) {
		chain := &fakeChain{
			accountsFn: func(string) ([]entity.TokenAccountInfo, error) {
				return []entity.TokenAccountInfo{
					{Mint: "mintA", TokenAmount: entity.TokenAmount{UIAmount: 10}},
				}, nil
			},
			signaturesFn: func(string, int) ([]entity.TransactionSignature, error) {
				return nil, errors.New("history down")
			},
		}

		svc := newPortfolioService(chain, staticPrices(map[string]float64{"mintA": 1}))

		got, err := svc.GetPortfolioMetrics(ctx, wallet)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.GasScore != 0 || got.EntryScore != 50 {
			t.Errorf("expected zero-activity scores, got gas=%v entry=%v", got.GasScore, got.EntryScore)
		}
		if errs := svc.AggregationErrors(wallet); len(errs) != 1 {
			t.Errorf("expected the gap to be recorded, got %v", errs)
		}
	})

	t.Run("failed price lookups drop the token from the aggregate", func(t *testing.T) {
		chain := &fakeChain{
			accountsFn: func(string) ([]entity.TokenAccountInfo, error) {
				return []entity.TokenAccountInfo{
					{Mint: "mintA", TokenAmount: entity.TokenAmount{UIAmount: 10}},
					{Mint: "mintB", TokenAmount: entity.TokenAmount{UIAmount: 20}},
				}, nil
			},
			signaturesFn: func(string, int) ([]entity.TransactionSignature, error) { return nil, nil },
		}
		prices := &fakePrices{fn: func(mint string) (float64, error) {
			if mint == "mintB" {
				return 0, context.Canceled
			}
			return 5, nil
		}}

		svc := newPortfolioService(chain, prices)

		got, err := svc.GetPortfolioMetrics(ctx, wallet)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.TopHoldings) != 1 || got.TopHoldings[0] != "mintA" {
			t.Errorf("expected only the priced token, got %v", got.TopHoldings)
		}
		// A single surviving asset is fully concentrated.
		if got.Diversification != 0 {
			t.Errorf("diversification: expected 0, got %v", got.Diversification)
		}

		errs := svc.AggregationErrors(wallet)
		if len(errs) != 1 || errs[0].Mint != "mintB" {
			t.Errorf("expected the dropped token to be recorded, got %v", errs)
		}
	})

	t.Run("aggregation errors expire with the cached run", func(t *testing.T) {
		chain := &fakeChain{
			accountsFn: func(string) ([]entity.TokenAccountInfo, error) { return nil, nil },
			signaturesFn: func(string, int) ([]entity.TransactionSignature, error) {
				return nil, errors.New("history down")
			},
		}

		svc := NewPortfolioService(
			chain, staticPrices(nil), NewStaticHistorySource(),
			cache.New[Run](time.Nanosecond),
			port.NopLogger{}, newCollector(), testConfig())

		if _, err := svc.GetPortfolioMetrics(ctx, wallet); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		time.Sleep(time.Millisecond)
		if errs := svc.AggregationErrors(wallet); errs != nil {
			t.Errorf("expected the side-channel to expire with the run, got %v", errs)
		}
	})

	t.Run("second call is served from cache", func(t *testing.T) {
		accountCalls := 0
		chain := &fakeChain{
			accountsFn: func(string) ([]entity.TokenAccountInfo, error) {
				accountCalls++
				return nil, nil
			},
			signaturesFn: func(string, int) ([]entity.TransactionSignature, error) { return nil, nil },
		}

		svc := newPortfolioService(chain, staticPrices(nil))

		first, err := svc.GetPortfolioMetrics(ctx, wallet)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := svc.GetPortfolioMetrics(ctx, wallet)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if accountCalls != 1 {
			t.Errorf("expected 1 pipeline run, got %d", accountCalls)
		}
		if first != second {
			t.Error("expected the cached instance to be returned")
		}
	})
}
