package entity

// TokenAmount is the jsonParsed representation of an SPL token balance.
type TokenAmount struct {
	Amount   string  `json:"amount"`
	Decimals uint8   `json:"decimals"`
	UIAmount float64 `json:"uiAmount"`
}

// TokenAccountInfo is the jsonParsed info block of a token account returned by
// getTokenAccountsByOwner.
type TokenAccountInfo struct {
	Mint        string      `json:"mint"`
	Owner       string      `json:"owner"`
	TokenAmount TokenAmount `json:"tokenAmount"`
}

// ParsedTokenAccount mirrors the data field of a jsonParsed token account.
type ParsedTokenAccount struct {
	Program string `json:"program"`
	Parsed  struct {
		Type string           `json:"type"`
		Info TokenAccountInfo `json:"info"`
	} `json:"parsed"`
}

// TransactionSignature is one entry of a wallet's recent signature history.
type TransactionSignature struct {
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
	BlockTime int64  `json:"blockTime,omitempty"`
	Failed    bool   `json:"failed,omitempty"`
}

// AnalyzerError carries a non-fatal failure recorded while aggregating a
// single token during balance processing. These never abort the batch; they
// exist for observability only.
type AnalyzerError struct {
	WalletAddress string `json:"-"`
	Mint          string `json:"mint,omitempty"`
	Message       string `json:"message"`
}
