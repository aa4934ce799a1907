package entity

// SubMetrics groups the derived secondary scores of a portfolio.
type SubMetrics struct {
	CapitalManagement float64 `json:"capitalManagement"`
	DegenIndex        float64 `json:"degenIndex"`
	DefiSavviness     float64 `json:"defiSavviness"`
}

// Performance holds benchmark-relative return percentages. Unlike every other
// metric these are signed and unclamped.
type Performance struct {
	Daily    float64 `json:"daily"`
	VsCMC100 float64 `json:"vsCMC100"`
}

// PortfolioMetrics is the full scored profile of a wallet. Every score field
// is a finite number in [0,100] except the Performance percentages.
// An instance is built once per pipeline run, cached keyed by wallet address,
// and treated as immutable after AIAnalysis is populated.
type PortfolioMetrics struct {
	Risk                 float64     `json:"risk"`
	EntryScore           float64     `json:"entryScore"`
	ExitScore            float64     `json:"exitScore"`
	GasScore             float64     `json:"gasScore"`
	TrendScore           float64     `json:"trendScore"`
	VolatilityScore      float64     `json:"volatilityScore"`
	AlphaScore           float64     `json:"alphaScore"`
	ProtocolScore        float64     `json:"protocolScore"`
	YieldScore           float64     `json:"yieldScore"`
	ContractScore        float64     `json:"contractScore"`
	Liquidity            float64     `json:"liquidity"`
	Diversification      float64     `json:"diversification"`
	DefaiScore           float64     `json:"defaiScore"`
	Metrics              SubMetrics  `json:"metrics"`
	Performance          Performance `json:"performance"`
	TopHoldings          []string    `json:"topHoldings"`
	AIAnalysis           string      `json:"aiAnalysis"`
	ComparisonPercentile float64     `json:"comparisonPercentile"`
}
