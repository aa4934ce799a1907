package entity

// TokenBalance represents a priced holding of a single token type in a wallet.
// Value is always Price * Amount; a zero Price marks the token as unpriced,
// not free.
type TokenBalance struct {
	Mint   string  `json:"mint"`
	Amount float64 `json:"amount"`
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Value  float64 `json:"value"`
}

// TokenMetadata holds supply-level information about a token mint.
// It is consulted as a last-resort price source (marketCap / supply) and for
// display symbols when a richer source is unavailable.
type TokenMetadata struct {
	Supply    float64  `json:"supply"`
	Decimals  uint8    `json:"decimals"`
	MarketCap *float64 `json:"marketCap,omitempty"`
	Symbol    string   `json:"symbol,omitempty"`
}

// ShortAddress truncates a mint or wallet address to the first4...last4 display
// form. Addresses too short to truncate are returned unchanged.
func ShortAddress(address string) string {
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}
