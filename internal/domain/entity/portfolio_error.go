package entity

import "errors"

// Error codes carried by PortfolioError.
const (
	// ErrCodeDataFetch marks account or transaction data that stayed
	// unreachable after retries.
	ErrCodeDataFetch = "DATA_FETCH_ERROR"
	// ErrCodeHandler is the catch-all for any other internal failure wrapped
	// at the handler boundary.
	ErrCodeHandler = "HANDLER_ERROR"
)

// PortfolioError is the single error type surfaced to callers of the
// pipeline. All internal fetch and parse failures are wrapped into it at the
// boundary; Details keeps the original cause for logs.
type PortfolioError struct {
	Message string
	Code    string
	Details error
}

// NewPortfolioError wraps cause into a PortfolioError with the given code.
func NewPortfolioError(message, code string, cause error) *PortfolioError {
	return &PortfolioError{Message: message, Code: code, Details: cause}
}

// AsPortfolioError returns err as a *PortfolioError, wrapping it with the
// HANDLER_ERROR code when it is anything else.
func AsPortfolioError(err error) *PortfolioError {
	var pe *PortfolioError
	if errors.As(err, &pe) {
		return pe
	}
	return NewPortfolioError(err.Error(), ErrCodeHandler, err)
}

func (e *PortfolioError) Error() string {
	return e.Message
}

func (e *PortfolioError) Unwrap() error {
	return e.Details
}
