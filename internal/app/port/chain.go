package port

import (
	"context"

	"defai_checker/internal/domain/entity"
)

// ChainClient defines the read-only blockchain RPC surface the pipeline
// consumes.
type ChainClient interface {
	// GetTokenAccounts returns the parsed token accounts owned by the wallet.
	GetTokenAccounts(ctx context.Context, owner string) ([]entity.TokenAccountInfo, error)

	// GetTokenMetadata returns supply-level metadata for a mint.
	GetTokenMetadata(ctx context.Context, mint string) (*entity.TokenMetadata, error)

	// GetSignatures returns up to limit most recent transaction signatures
	// involving the address.
	GetSignatures(ctx context.Context, address string, limit int) ([]entity.TransactionSignature, error)
}
