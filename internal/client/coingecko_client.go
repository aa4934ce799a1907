package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"defai_checker/internal/app/port"
)

// coinGeckoQuote is the per-contract value of the token_price response map.
type coinGeckoQuote struct {
	USD float64 `json:"usd"`
}

// CoinGeckoClient resolves prices from CoinGecko's price-by-contract map for
// the solana asset platform.
type CoinGeckoClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCoinGeckoClient creates a new instance of CoinGeckoClient.
func NewCoinGeckoClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("CoinGeckoClient"),
	}
}

// Name implements port.PriceSource.
func (c *CoinGeckoClient) Name() string { return "coingecko" }

// ResolvePrice implements port.PriceSource.
func (c *CoinGeckoClient) ResolvePrice(ctx context.Context, mint string) (float64, error) {
	requestURL := fmt.Sprintf("%s/simple/token_price/solana?contract_addresses=%s&vs_currencies=usd", c.baseURL, mint)
	c.logger.Debug("Requesting token price from CoinGecko", zap.String("url", requestURL))

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"x-cg-pro-api-key": c.apiKey}
	}

	body, err := doGet(ctx, c.client, requestURL, c.timeout, headers)
	if err != nil {
		return 0, err
	}

	price, err := parseCoinGeckoPrice(body, mint)
	if err != nil {
		c.logger.Debug("CoinGecko had no usable price",
			zap.String("mint", mint),
			zap.Error(err))
		return 0, err
	}
	return price, nil
}

func parseCoinGeckoPrice(body []byte, mint string) (float64, error) {
	var quotes map[string]coinGeckoQuote
	if err := json.Unmarshal(body, &quotes); err != nil {
		return 0, fmt.Errorf("failed to unmarshal CoinGecko response: %w", err)
	}

	quote, ok := quotes[mint]
	if !ok {
		// CoinGecko may lowercase contract address keys.
		for addr, q := range quotes {
			if strings.EqualFold(addr, mint) {
				quote, ok = q, true
				break
			}
		}
	}
	if !ok || quote.USD <= 0 {
		return 0, port.ErrPriceUnavailable
	}
	return quote.USD, nil
}
