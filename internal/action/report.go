package action

import (
	"fmt"
	"math"
	"strings"

	"defai_checker/internal/domain/entity"
)

// FormatReport renders the scored portfolio as the chat report. Scores are
// rounded to integers for display; performance percentages carry an explicit
// sign when positive.
func FormatReport(walletAddress string, metrics *entity.PortfolioMetrics) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 Portfolio Analysis Results for %s\n\n", entity.ShortAddress(walletAddress))
	fmt.Fprintf(&b, "🏆 DEFAI Score: %d/100\n\n", rounded(metrics.DefaiScore))

	b.WriteString("📈 Key Metrics:\n")
	fmt.Fprintf(&b, "• Capital Management: %d/100\n", rounded(metrics.Metrics.CapitalManagement))
	fmt.Fprintf(&b, "• Risk Index: %d/100\n", rounded(metrics.Risk))
	fmt.Fprintf(&b, "• DeFi Savviness: %d/100\n", rounded(metrics.Metrics.DefiSavviness))
	fmt.Fprintf(&b, "• Degen Index: %d/100\n\n", rounded(metrics.Metrics.DegenIndex))

	b.WriteString("🎯 Trading Style:\n")
	fmt.Fprintf(&b, "• Entry Score: %d/100\n", rounded(metrics.EntryScore))
	fmt.Fprintf(&b, "• Exit Score: %d/100\n", rounded(metrics.ExitScore))
	fmt.Fprintf(&b, "• Gas Optimization: %d/100\n\n", rounded(metrics.GasScore))

	b.WriteString("📊 Performance:\n")
	fmt.Fprintf(&b, "• 24h Change: %s%%\n", signedPercent(metrics.Performance.Daily))
	fmt.Fprintf(&b, "• vs CMC100: %s%%\n\n", signedPercent(metrics.Performance.VsCMC100))

	b.WriteString("💪 Portfolio Health:\n")
	fmt.Fprintf(&b, "• Diversification: %d/100\n", rounded(metrics.Diversification))
	fmt.Fprintf(&b, "• Liquidity: %d/100\n", rounded(metrics.Liquidity))
	fmt.Fprintf(&b, "• Risk Exposure: %d/100\n\n", rounded(metrics.Risk))

	b.WriteString("🌊 Market Adaptation:\n")
	fmt.Fprintf(&b, "• Trend Following: %d/100\n", rounded(metrics.TrendScore))
	fmt.Fprintf(&b, "• Volatility Management: %d/100\n", rounded(metrics.VolatilityScore))
	fmt.Fprintf(&b, "• Alpha Generation: %d/100\n\n", rounded(metrics.AlphaScore))

	b.WriteString("🏦 DeFi Engagement:\n")
	fmt.Fprintf(&b, "• Protocol Diversity: %d/100\n", rounded(metrics.ProtocolScore))
	fmt.Fprintf(&b, "• Yield Optimization: %d/100\n", rounded(metrics.YieldScore))
	fmt.Fprintf(&b, "• Smart Contract Risk: %d/100\n\n", rounded(metrics.ContractScore))

	b.WriteString("🔝 Top Holdings:\n")
	for i, token := range metrics.TopHoldings {
		fmt.Fprintf(&b, "%d. %s\n", i+1, token)
	}

	b.WriteString("\n💡 Analysis:\n")
	b.WriteString(metrics.AIAnalysis)

	return b.String()
}

func rounded(v float64) int {
	return int(math.Round(v))
}

// signedPercent renders a rounded percentage with a leading + for positive
// values, matching the report's 24h and benchmark lines.
func signedPercent(v float64) string {
	r := rounded(v)
	if r > 0 || (r == 0 && v > 0) {
		return fmt.Sprintf("+%d", r)
	}
	return fmt.Sprintf("%d", r)
}
