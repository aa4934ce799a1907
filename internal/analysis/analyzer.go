// Package analysis turns a scored portfolio into a short narrative summary.
// The output is deterministic text built from threshold bands, joined as four
// paragraphs: overall health, risk profile, performance and recommendations.
package analysis

import (
	"fmt"
	"math"
	"strings"

	"defai_checker/internal/domain/entity"
)

// Analyze builds the narrative for the given metrics. It never fails and never
// mutates its input.
func Analyze(metrics *entity.PortfolioMetrics) string {
	paragraphs := []string{
		overallHealth(metrics),
		riskProfile(metrics),
		performance(metrics),
		recommendations(metrics),
	}
	return strings.Join(paragraphs, "\n\n")
}

func overallHealth(metrics *entity.PortfolioMetrics) string {
	var healthLevel string
	switch {
	case metrics.DefaiScore >= 80:
		healthLevel = "excellent"
	case metrics.DefaiScore >= 70:
		healthLevel = "good"
	case metrics.DefaiScore >= 60:
		healthLevel = "fair"
	default:
		healthLevel = "needs attention"
	}

	return fmt.Sprintf("Your portfolio shows %s overall health with a DEFAI score of %.0f. "+
		"Diversification is %s and liquidity is %s.",
		healthLevel, metrics.DefaiScore,
		qualitativeRating(metrics.Diversification),
		qualitativeRating(metrics.Liquidity))
}

func riskProfile(metrics *entity.PortfolioMetrics) string {
	var riskLevel string
	switch {
	case metrics.Risk >= 80:
		riskLevel = "high"
	case metrics.Risk >= 60:
		riskLevel = "moderate"
	case metrics.Risk >= 40:
		riskLevel = "balanced"
	default:
		riskLevel = "conservative"
	}

	return fmt.Sprintf("Your risk profile appears %s. Entry timing is %s and exit execution is %s. "+
		"Gas optimization is %s.",
		riskLevel,
		qualitativeRating(metrics.EntryScore),
		qualitativeRating(metrics.ExitScore),
		qualitativeRating(metrics.GasScore))
}

func performance(metrics *entity.PortfolioMetrics) string {
	direction := "underperforming"
	if metrics.Performance.VsCMC100 > 0 {
		direction = "outperforming"
	}

	return fmt.Sprintf("Your portfolio is %s the CMC100 by %v%%. "+
		"Alpha generation is %s and trend following is %s.",
		direction, math.Abs(metrics.Performance.VsCMC100),
		qualitativeRating(metrics.AlphaScore),
		qualitativeRating(metrics.TrendScore))
}

func recommendations(metrics *entity.PortfolioMetrics) string {
	var recs []string
	if metrics.Diversification < 70 {
		recs = append(recs, "Consider diversifying your holdings across more assets")
	}
	if metrics.Risk > 80 {
		recs = append(recs, "Consider reducing exposure to high-risk assets")
	}
	if metrics.GasScore < 70 {
		recs = append(recs, "Look for opportunities to optimize transaction timing for better gas efficiency")
	}
	if metrics.YieldScore < 70 {
		recs = append(recs, "Explore yield farming opportunities in stable protocols")
	}

	if len(recs) == 0 {
		return "Your portfolio is well-balanced. Continue monitoring market conditions and maintain your current strategy."
	}
	return "Recommendations:\n" + strings.Join(recs, "\n")
}

func qualitativeRating(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 80:
		return "very good"
	case score >= 70:
		return "good"
	case score >= 60:
		return "fair"
	case score >= 50:
		return "moderate"
	default:
		return "needs improvement"
	}
}
