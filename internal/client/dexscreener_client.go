package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"defai_checker/internal/app/port"
)

// dexPair is the slice element of DEX Screener's pairs array. Only the fields
// the resolver consumes are mapped.
type dexPair struct {
	ChainID   string  `json:"chainId"`
	DexID     string  `json:"dexId"`
	PriceUsd  string  `json:"priceUsd"`
	MarketCap float64 `json:"marketCap"`
	BaseToken struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
}

// dexTokenResponse wraps the /latest/dex/tokens response.
type dexTokenResponse struct {
	SchemaVersion string    `json:"schemaVersion"`
	Pairs         []dexPair `json:"pairs"`
}

// DexScreenerClient resolves prices from the DEX Screener token-pairs API.
// It is the primary source of the resolution chain.
type DexScreenerClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewDexScreenerClient creates a new instance of DexScreenerClient.
func NewDexScreenerClient(baseURL string, timeout time.Duration, logger *zap.Logger) *DexScreenerClient {
	return &DexScreenerClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("DexScreenerClient"),
	}
}

// Name implements port.PriceSource.
func (c *DexScreenerClient) Name() string { return "dexscreener" }

// ResolvePrice implements port.PriceSource. The first pair's priceUsd is
// taken; anything non-positive or unparseable is a typed absence.
func (c *DexScreenerClient) ResolvePrice(ctx context.Context, mint string) (float64, error) {
	requestURL := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, mint)
	c.logger.Debug("Requesting token pairs from DEX Screener", zap.String("url", requestURL))

	body, err := doGet(ctx, c.client, requestURL, c.timeout, nil)
	if err != nil {
		return 0, err
	}

	price, err := parseDexScreenerPrice(body)
	if err != nil {
		c.logger.Debug("DEX Screener had no usable price",
			zap.String("mint", mint),
			zap.Error(err))
		return 0, err
	}
	return price, nil
}

func parseDexScreenerPrice(body []byte) (float64, error) {
	var wrapper dexTokenResponse
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return 0, fmt.Errorf("failed to unmarshal DEX Screener response: %w", err)
	}
	if len(wrapper.Pairs) == 0 {
		return 0, port.ErrPriceUnavailable
	}

	price, err := strconv.ParseFloat(wrapper.Pairs[0].PriceUsd, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse priceUsd %q: %w", wrapper.Pairs[0].PriceUsd, err)
	}
	if price <= 0 {
		return 0, port.ErrPriceUnavailable
	}
	return price, nil
}
