package service

import (
	"context"

	"defai_checker/internal/app/port"
)

// staticHistorySource is the shipped HistoricalPriceSource. It answers every
// request with empty series, so daily returns stay at zero until a real
// historical provider is plugged in.
type staticHistorySource struct{}

// NewStaticHistorySource creates the empty-series historical source.
func NewStaticHistorySource() port.HistoricalPriceSource {
	return staticHistorySource{}
}

// GetDailySeries implements port.HistoricalPriceSource.
func (staticHistorySource) GetDailySeries(ctx context.Context, mints []string) (map[string][]float64, error) {
	series := make(map[string][]float64, len(mints))
	for _, mint := range mints {
		series[mint] = nil
	}
	return series, nil
}
