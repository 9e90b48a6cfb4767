package collector

import (
	"context"
	"net/http"
	"time"

	"github.com/newthinker/deepvalue/internal/core"
)

// Config holds provider client configuration
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// Client overrides the HTTP client, e.g. an instrumented one.
	Client *http.Client
}

// HTTPClient returns the configured client or a new one honouring Timeout.
func (c Config) HTTPClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: c.Timeout}
}

// StatementProvider serves the latest statements, quote and dividend history.
type StatementProvider interface {
	Name() string

	FetchBalanceSheet(ctx context.Context, symbol string) (*core.BalanceSheet, error)
	FetchKeyMetrics(ctx context.Context, symbol string) ([]float64, error)
	FetchQuote(ctx context.Context, symbol string) (*core.Quote, error)
	FetchDividends(ctx context.Context, symbol string) ([]core.DividendPayment, error)
}

// HistoryProvider serves multi-year annual series.
type HistoryProvider interface {
	Name() string

	FetchAnnualEPS(ctx context.Context, symbol string) ([]float64, error)
	FetchSharesHistory(ctx context.Context, symbol string) ([]float64, error)
}
