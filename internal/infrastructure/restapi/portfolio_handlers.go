package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"defai_checker/internal/action"
	"defai_checker/internal/app/port"
	"defai_checker/internal/domain/entity"
)

// AnalyzeRequest is the body of the analyze endpoint: free-form text that
// should contain a wallet address and a portfolio keyword.
type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// APIPortfolioResponse is the envelope of the portfolio endpoints.
type APIPortfolioResponse struct {
	Data struct {
		Portfolio *entity.PortfolioMetrics `json:"portfolio"`
	} `json:"data"`
	ServiceErrors []entity.AnalyzerError `json:"service_errors,omitempty"`
	StatusMessage string                 `json:"status_message"`
}

// APIErrorResponse is the envelope of failed requests.
type APIErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// PortfolioHandler serves the portfolio HTTP surface.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	actionHandler    *action.Handler
}

// NewPortfolioHandler creates a new instance of PortfolioHandler.
func NewPortfolioHandler(ps port.PortfolioService, ah *action.Handler) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: ps,
		actionHandler:    ah,
	}
}

// AnalyzeHandler runs the conversational action over the posted text and
// returns the rendered report alongside the raw metrics.
func (h *PortfolioHandler) AnalyzeHandler(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "text is required"})
		return
	}

	if !h.actionHandler.Validate(req.Text) {
		c.JSON(http.StatusUnprocessableEntity, APIErrorResponse{
			Error: "message does not look like a portfolio request",
		})
		return
	}

	resp, ok := h.actionHandler.Handle(c.Request.Context(), req.Text)
	if !ok {
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPortfolioHandler returns the metrics bundle for one wallet address.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	walletAddress := c.Param("walletAddress")
	if !action.IsValidAddress(walletAddress) {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "invalid wallet address"})
		return
	}

	metrics, err := h.portfolioService.GetPortfolioMetrics(c.Request.Context(), walletAddress)
	if err != nil {
		perr := entity.AsPortfolioError(err)
		c.JSON(errorStatus(perr), APIErrorResponse{Error: perr.Message, Code: perr.Code})
		return
	}

	response := APIPortfolioResponse{
		ServiceErrors: h.portfolioService.AggregationErrors(walletAddress),
	}
	response.Data.Portfolio = metrics

	if len(response.ServiceErrors) > 0 {
		response.StatusMessage = "Portfolio retrieved. Some tokens may have encountered errors."
	} else {
		response.StatusMessage = "Portfolio retrieved successfully."
	}
	c.JSON(http.StatusOK, response)
}

// errorStatus maps pipeline errors to HTTP statuses: upstream data failures
// read as bad gateway, everything else as internal.
func errorStatus(err error) int {
	var perr *entity.PortfolioError
	if errors.As(err, &perr) && perr.Code == entity.ErrCodeDataFetch {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
