// Package action is the conversational entry point of the pipeline. It
// decides whether free-form text is a portfolio request, extracts the wallet
// address and renders the scored result as a chat-ready report.
package action

import (
	"context"
	"fmt"
	"regexp"

	"defai_checker/internal/app/port"
	"defai_checker/internal/domain/entity"
)

// Action identity, kept stable for clients that dispatch on it.
const (
	Name        = "CALCULATE_PORTFOLIO_METRICS"
	Description = "Calculate and analyze portfolio metrics for a given wallet"
)

// Similes are alternative action names accepted by dispatchers.
var Similes = []string{"GET_PORTFOLIO_METRICS", "ANALYZE_PORTFOLIO", "CHECK_PORTFOLIO"}

var (
	// Base58 runs of plausible Solana address length. Extraction takes the
	// first candidate; validation requires the candidate to be the full run.
	addressPattern   = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]{32,44}`)
	fullAddressMatch = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	keywordPattern   = regexp.MustCompile(`(?i)\b(portfolio|analyze|check|metrics|address)\b`)
)

// Response is the rendered outcome of a handled request.
type Response struct {
	Text    string                   `json:"text"`
	Content *entity.PortfolioMetrics `json:"content,omitempty"`
	Action  string                   `json:"action"`
}

// Handler wires the portfolio pipeline behind text-based trigger matching.
type Handler struct {
	portfolio port.PortfolioService
	logger    port.Logger
}

// NewHandler creates a new instance of Handler.
func NewHandler(portfolio port.PortfolioService, l port.Logger) *Handler {
	return &Handler{portfolio: portfolio, logger: l}
}

// ExtractWalletAddress returns the first plausible address in the text, or ""
// when none is present.
func ExtractWalletAddress(text string) string {
	return addressPattern.FindString(text)
}

// IsValidAddress reports whether address is exactly one plausible base58 run.
func IsValidAddress(address string) bool {
	return fullAddressMatch.MatchString(address)
}

// Validate reports whether the text should trigger the action: it must carry
// a portfolio keyword and a valid wallet address.
func (h *Handler) Validate(text string) bool {
	hasKeywords := keywordPattern.MatchString(text)
	walletAddress := ExtractWalletAddress(text)
	hasValidAddress := walletAddress != "" && IsValidAddress(walletAddress)

	h.logger.Debug("Portfolio trigger validation",
		"hasKeywords", hasKeywords,
		"walletAddress", walletAddress,
		"hasValidAddress", hasValidAddress)
	return hasKeywords && hasValidAddress
}

// Handle runs the pipeline for the address found in the text. The boolean
// mirrors success; failures still produce a Response with a user-facing error
// line. Panics in the pipeline are contained here.
func (h *Handler) Handle(ctx context.Context, text string) (resp Response, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Portfolio handler panicked", "panic", r)
			perr := entity.NewPortfolioError(fmt.Sprint(r), entity.ErrCodeHandler, nil)
			resp, ok = h.errorResponse(perr), false
		}
	}()

	walletAddress := ExtractWalletAddress(text)
	if walletAddress == "" {
		perr := entity.NewPortfolioError("No wallet address found", entity.ErrCodeHandler, nil)
		return h.errorResponse(perr), false
	}

	h.logger.Info("Portfolio handler started", "wallet", walletAddress)

	metrics, err := h.portfolio.GetPortfolioMetrics(ctx, walletAddress)
	if err != nil {
		h.logger.Error("Portfolio handler failed", "wallet", walletAddress, "error", err)
		return h.errorResponse(entity.AsPortfolioError(err)), false
	}

	return Response{
		Text:    FormatReport(walletAddress, metrics),
		Content: metrics,
		Action:  Name,
	}, true
}

func (h *Handler) errorResponse(perr *entity.PortfolioError) Response {
	return Response{
		Text:   fmt.Sprintf("Error analyzing portfolio: %s", perr.Message),
		Action: Name,
	}
}
