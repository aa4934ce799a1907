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

// solscanTokenMeta is the subset of Solscan's token meta response the
// resolver consumes.
type solscanTokenMeta struct {
	Symbol    string  `json:"symbol"`
	PriceUsdt float64 `json:"priceUsdt"`
	MarketCap float64 `json:"marketCapFD"`
}

// SolscanClient resolves prices from Solscan's public token meta endpoint.
type SolscanClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewSolscanClient creates a new instance of SolscanClient.
func NewSolscanClient(baseURL string, timeout time.Duration, logger *zap.Logger) *SolscanClient {
	return &SolscanClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("SolscanClient"),
	}
}

// Name implements port.PriceSource.
func (c *SolscanClient) Name() string { return "solscan" }

// ResolvePrice implements port.PriceSource.
func (c *SolscanClient) ResolvePrice(ctx context.Context, mint string) (float64, error) {
	requestURL := fmt.Sprintf("%s/token/meta?tokenAddress=%s", c.baseURL, mint)
	c.logger.Debug("Requesting token meta from Solscan", zap.String("url", requestURL))

	body, err := doGet(ctx, c.client, requestURL, c.timeout, nil)
	if err != nil {
		return 0, err
	}

	price, err := parseSolscanPrice(body)
	if err != nil {
		c.logger.Debug("Solscan had no usable price",
			zap.String("mint", mint),
			zap.Error(err))
		return 0, err
	}
	return price, nil
}

func parseSolscanPrice(body []byte) (float64, error) {
	var meta solscanTokenMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return 0, fmt.Errorf("failed to unmarshal Solscan response: %w", err)
	}
	if meta.PriceUsdt <= 0 {
		return 0, port.ErrPriceUnavailable
	}
	return meta.PriceUsdt, nil
}
