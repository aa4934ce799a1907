// Package solana implements the read-only chain RPC surface on top of the
// solana-go SDK.
package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"defai_checker/internal/domain/entity"
)

// DefaultMainnetEndpoint is the public RPC endpoint for Solana mainnet-beta.
const DefaultMainnetEndpoint = "https://api.mainnet-beta.solana.com"

// Client implements port.ChainClient over JSON-RPC. All calls go through a
// shared rate limiter so bursts of per-token metadata lookups do not trip the
// public endpoint's throttling.
type Client struct {
	rpcClient      *rpc.Client
	limiter        *rate.Limiter
	rpcCallTimeout time.Duration
	logger         *zap.Logger
}

// NewClient creates a new RPC client pointing to the specified endpoint.
// If endpoint is an empty string DefaultMainnetEndpoint is used.
func NewClient(endpoint string, rateLimit, burstLimit int, rpcCallTimeout time.Duration, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultMainnetEndpoint
	}
	if rateLimit <= 0 {
		rateLimit = 10
	}
	if burstLimit <= 0 {
		burstLimit = rateLimit
	}
	if rpcCallTimeout <= 0 {
		rpcCallTimeout = 10 * time.Second
	}

	return &Client{
		rpcClient:      rpc.New(endpoint),
		limiter:        rate.NewLimiter(rate.Limit(rateLimit), burstLimit),
		rpcCallTimeout: rpcCallTimeout,
		logger:         logger.Named("SolanaClient"),
	}
}

// GetTokenAccounts returns the parsed SPL token accounts owned by the wallet,
// fetched with jsonParsed encoding. Accounts whose parsed payload cannot be
// decoded are skipped.
func (c *Client) GetTokenAccounts(ctx context.Context, owner string) ([]entity.TokenAccountInfo, error) {
	ownerPk, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner address %q: %w", owner, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	tokenProgramID := solana.TokenProgramID
	out, err := c.rpcClient.GetTokenAccountsByOwner(
		callCtx,
		ownerPk,
		&rpc.GetTokenAccountsConfig{ProgramId: &tokenProgramID},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed},
	)
	if err != nil {
		return nil, fmt.Errorf("getTokenAccountsByOwner failed for %s: %w", owner, err)
	}

	accounts := make([]entity.TokenAccountInfo, 0, len(out.Value))
	for _, raw := range out.Value {
		if raw == nil || raw.Account.Data == nil {
			continue
		}
		info, err := ParseTokenAccount(raw.Account.Data.GetRawJSON())
		if err != nil {
			c.logger.Warn("Skipping token account with undecodable parsed data",
				zap.String("account", raw.Pubkey.String()),
				zap.Error(err))
			continue
		}
		accounts = append(accounts, *info)
	}

	c.logger.Debug("Fetched token accounts",
		zap.String("owner", owner),
		zap.Int("count", len(accounts)))
	return accounts, nil
}

// ParseTokenAccount decodes the jsonParsed data blob of a token account into
// its info block.
func ParseTokenAccount(raw json.RawMessage) (*entity.TokenAccountInfo, error) {
	if raw == nil {
		return nil, fmt.Errorf("token account data is not jsonParsed")
	}
	var parsed entity.ParsedTokenAccount
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parsed token account: %w", err)
	}
	if parsed.Parsed.Info.Mint == "" {
		return nil, fmt.Errorf("parsed token account has no mint")
	}
	return &parsed.Parsed.Info, nil
}

// GetTokenMetadata returns supply-level metadata for a mint via getTokenSupply.
// The market cap field stays unset; the RPC endpoint does not carry it.
func (c *Client) GetTokenMetadata(ctx context.Context, mint string) (*entity.TokenMetadata, error) {
	mintPk, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("invalid mint %q: %w", mint, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	out, err := c.rpcClient.GetTokenSupply(callCtx, mintPk, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("getTokenSupply failed for %s: %w", mint, err)
	}
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("getTokenSupply returned no value for %s", mint)
	}

	md := &entity.TokenMetadata{Decimals: out.Value.Decimals}
	if out.Value.UiAmount != nil {
		md.Supply = *out.Value.UiAmount
	}
	return md, nil
}

// GetSignatures returns up to limit most recent transaction signatures
// involving the address.
func (c *Client) GetSignatures(ctx context.Context, address string, limit int) ([]entity.TransactionSignature, error) {
	addrPk, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	if limit <= 0 {
		limit = 100
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	out, err := c.rpcClient.GetSignaturesForAddressWithOpts(callCtx, addrPk, &rpc.GetSignaturesForAddressOpts{
		Limit: &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("getSignaturesForAddress failed for %s: %w", address, err)
	}

	signatures := make([]entity.TransactionSignature, 0, len(out))
	for _, sig := range out {
		if sig == nil {
			continue
		}
		entry := entity.TransactionSignature{
			Signature: sig.Signature.String(),
			Slot:      sig.Slot,
			Failed:    sig.Err != nil,
		}
		if sig.BlockTime != nil {
			entry.BlockTime = int64(*sig.BlockTime)
		}
		signatures = append(signatures, entry)
	}

	c.logger.Debug("Fetched signature history",
		zap.String("address", address),
		zap.Int("count", len(signatures)))
	return signatures, nil
}
