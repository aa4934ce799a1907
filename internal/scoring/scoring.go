// Package scoring holds the pure metric calculators of the pipeline. Every
// function is deterministic over its inputs and returns finite values; all
// scores land in [0,100] except the signed performance percentages.
package scoring

import (
	"math"
	"sort"

	"defai_checker/internal/domain/entity"
)

// ComparisonPercentile is the fixed percentile reported until a real cohort
// comparison exists.
const ComparisonPercentile = 75

func clamp(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

func totalValue(balances []entity.TokenBalance) float64 {
	var total float64
	for _, b := range balances {
		total += b.Value
	}
	return total
}

// Diversification scores how evenly the portfolio value is spread, via the
// Herfindahl-Hirschman Index normalized to [0,100]. Empty or worthless
// portfolios score 0, as does a single-asset portfolio (fully concentrated).
func Diversification(balances []entity.TokenBalance) float64 {
	n := len(balances)
	if n <= 1 {
		return 0
	}
	total := totalValue(balances)
	if total == 0 {
		return 0
	}

	var hhi float64
	for _, b := range balances {
		w := b.Value / total
		hhi += w * w
	}

	minHHI := 1 / float64(n)
	return clamp((1 - hhi) / (1 - minHHI) * 100)
}

// Risk blends concentration, portfolio size and asset count. Higher is safer.
func Risk(balances []entity.TokenBalance) float64 {
	if len(balances) == 0 {
		return 0
	}
	total := totalValue(balances)
	if total == 0 {
		return 0
	}

	var maxPosition float64
	for _, b := range balances {
		if b.Value > maxPosition {
			maxPosition = b.Value
		}
	}

	concentrationRisk := maxPosition / total * 100
	sizeRisk := math.Min(100, total/10000*100)
	assetCountRisk := math.Min(100, float64(len(balances))/10*100)

	return clamp((100-concentrationRisk)*0.4 + sizeRisk*0.3 + assetCountRisk*0.3)
}

// Liquidity scores total portfolio value linearly, one point per $1k,
// saturating at $100k.
func Liquidity(balances []entity.TokenBalance) float64 {
	if len(balances) == 0 {
		return 0
	}
	return clamp(totalValue(balances) / 1000)
}

// GasScore is 0 without history and floors at 85 once any history exists.
func GasScore(txCount int) float64 {
	if txCount == 0 {
		return 0
	}
	return math.Min(100, 85+float64(txCount)/100*15)
}

// ProtocolScore grows with transaction count from a base of 50.
func ProtocolScore(txCount int) float64 {
	return math.Min(100, 50+float64(txCount)/50*25)
}

// EntryScore is a binary-threshold placeholder for entry-timing analysis.
func EntryScore(txCount int) float64 {
	if txCount > 0 {
		return 70
	}
	return 50
}

// ExitScore is a binary-threshold placeholder for exit-execution analysis.
func ExitScore(txCount int) float64 {
	if txCount > 0 {
		return 75
	}
	return 50
}

// YieldScore is a binary-threshold placeholder for yield-position analysis.
func YieldScore(balanceCount int) float64 {
	if balanceCount > 0 {
		return 70
	}
	return 50
}

// ContractScore is a binary-threshold placeholder for contract-risk analysis.
func ContractScore(balanceCount int) float64 {
	if balanceCount > 0 {
		return 80
	}
	return 50
}

// PerformanceResult carries the benchmark-relative placeholders alongside the
// trend scores derived from them.
type PerformanceResult struct {
	Daily           float64
	VsCMC100        float64
	TrendScore      float64
	VolatilityScore float64
	AlphaScore      float64
}

// DefaultPerformance is the documented all-default record used when the
// performance computation fails internally.
func DefaultPerformance() PerformanceResult {
	return PerformanceResult{
		Daily:           0,
		VsCMC100:        0,
		TrendScore:      50,
		VolatilityScore: 50,
		AlphaScore:      50,
	}
}

// Performance returns the placeholder performance record. Daily return is
// computed from the historical series, which is empty until a real
// historical-price source is wired in; the remaining fields are fixed
// placeholders pending that integration.
func Performance(txCount int, history map[string][]float64) PerformanceResult {
	alpha := 50.0
	if txCount > 0 {
		alpha = 75
	}
	return PerformanceResult{
		Daily:           DailyReturn(history),
		VsCMC100:        3.2,
		TrendScore:      80,
		VolatilityScore: 60,
		AlphaScore:      alpha,
	}
}

// DailyReturn is the extension point for real daily-return analytics. With no
// historical data it reports 0.
func DailyReturn(history map[string][]float64) float64 {
	return 0
}

// DefaiScore averages the given components, dropping any non-finite value
// first. No finite components yields 0.
func DefaiScore(components ...float64) float64 {
	var sum float64
	var count int
	for _, c := range components {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			continue
		}
		sum += c
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Round(sum / float64(count))
}

// TopHoldings returns up to five symbols sorted by descending value. The sort
// is stable so equal values keep their original order. Tokens without a
// symbol fall back to the truncated mint.
func TopHoldings(balances []entity.TokenBalance) []string {
	sorted := make([]entity.TokenBalance, len(balances))
	copy(sorted, balances)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	limit := 5
	if len(sorted) < limit {
		limit = len(sorted)
	}

	holdings := make([]string, 0, limit)
	for _, b := range sorted[:limit] {
		symbol := b.Symbol
		if symbol == "" {
			symbol = entity.ShortAddress(b.Mint)
		}
		holdings = append(holdings, symbol)
	}
	return holdings
}

// Compose assembles the full metrics bundle from balances, transaction count
// and the performance record. AIAnalysis is left empty for the analyzer.
func Compose(balances []entity.TokenBalance, txCount int, perf PerformanceResult) entity.PortfolioMetrics {
	diversification := Diversification(balances)
	risk := Risk(balances)
	gas := GasScore(txCount)
	liquidity := Liquidity(balances)
	protocol := ProtocolScore(txCount)
	yield := YieldScore(len(balances))

	return entity.PortfolioMetrics{
		DefaiScore:      DefaiScore(diversification, risk, perf.Daily, liquidity),
		Risk:            risk,
		EntryScore:      EntryScore(txCount),
		ExitScore:       ExitScore(txCount),
		GasScore:        gas,
		TrendScore:      perf.TrendScore,
		VolatilityScore: perf.VolatilityScore,
		AlphaScore:      perf.AlphaScore,
		ProtocolScore:   protocol,
		YieldScore:      yield,
		ContractScore:   ContractScore(len(balances)),
		Liquidity:       liquidity,
		Diversification: diversification,
		Metrics: entity.SubMetrics{
			CapitalManagement: math.Round((diversification + gas) / 2),
			DegenIndex:        clamp(100 - risk),
			DefiSavviness:     math.Round((protocol + yield) / 2),
		},
		Performance: entity.Performance{
			Daily:    perf.Daily,
			VsCMC100: perf.VsCMC100,
		},
		TopHoldings:          TopHoldings(balances),
		ComparisonPercentile: ComparisonPercentile,
	}
}
