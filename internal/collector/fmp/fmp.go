package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/newthinker/deepvalue/internal/collector"
	"github.com/newthinker/deepvalue/internal/core"
)

const (
	// DefaultBaseURL is the Financial Modeling Prep v3 API root.
	DefaultBaseURL = "https://financialmodelingprep.com/api/v3"
	name           = "fmp"
	dateLayout     = "2006-01-02"
)

// FMP implements collector.StatementProvider for Financial Modeling Prep
type FMP struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new FMP collector
func New(cfg collector.Config) (*FMP, error) {
	if cfg.APIKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("fmp: api_key is required"))
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &FMP{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(base, "/"),
		client:  cfg.HTTPClient(),
	}, nil
}

func (f *FMP) Name() string { return name }

func (f *FMP) endpointURL(path, symbol string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", f.apiKey)
	return fmt.Sprintf("%s/%s/%s?%s", f.baseURL, path, url.PathEscape(symbol), query.Encode())
}

func (f *FMP) get(ctx context.Context, endpoint, path, symbol string, query url.Values, out any) error {
	body, err := collector.Get(ctx, f.client, name, endpoint, f.endpointURL(path, symbol, query))
	if err != nil {
		return err
	}

	// Exhausted limits and bad keys can arrive as {"Error Message": "..."} with a 2xx.
	var apiErr errorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		return core.WrapError(core.ErrFetchFailed, fmt.Errorf("fmp %s: API error: %s", endpoint, apiErr.Message))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return collector.ParseError(name, endpoint, "decoding response: %v", err)
	}
	return nil
}

func annual() url.Values {
	return url.Values{"period": []string{"annual"}}
}

// FetchBalanceSheet returns the most recent annual balance sheet.
func (f *FMP) FetchBalanceSheet(ctx context.Context, symbol string) (*core.BalanceSheet, error) {
	const endpoint = "balance-sheet-statement"

	var rows []balanceSheetRow
	if err := f.get(ctx, endpoint, endpoint, symbol, annual(), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, collector.ParseError(name, endpoint, "no balance sheet for %s", symbol)
	}

	r := rows[0]
	p := fieldParser{endpoint: endpoint}
	b := &core.BalanceSheet{
		Date:                        r.Date,
		CashAndShortTermInvestments: p.require("cashAndShortTermInvestments", r.CashAndShortTermInvestments),
		NetReceivables:              p.require("netReceivables", r.NetReceivables),
		Inventory:                   p.require("inventory", r.Inventory),
		TotalLiabilities:            p.require("totalLiabilities", r.TotalLiabilities),
		TotalCurrentAssets:          p.require("totalCurrentAssets", r.TotalCurrentAssets),
		TotalCurrentLiabilities:     p.require("totalCurrentLiabilities", r.TotalCurrentLiabilities),
		TotalAssets:                 p.require("totalAssets", r.TotalAssets),
		IntangibleAssets:            p.require("intangibleAssets", r.IntangibleAssets),
		TotalDebt:                   p.require("totalDebt", r.TotalDebt),
		LongTermDebt:                p.require("longTermDebt", r.LongTermDebt),
		TotalStockholdersEquity:     p.require("totalStockholdersEquity", r.TotalStockholdersEquity),
		PreferredStock:              p.require("preferredStock", r.PreferredStock),
	}
	if p.err != nil {
		return nil, p.err
	}
	return b, nil
}

// FetchKeyMetrics returns net income per share for every reported year.
func (f *FMP) FetchKeyMetrics(ctx context.Context, symbol string) ([]float64, error) {
	const endpoint = "key-metrics"

	var rows []keyMetricsRow
	if err := f.get(ctx, endpoint, endpoint, symbol, annual(), &rows); err != nil {
		return nil, err
	}

	p := fieldParser{endpoint: endpoint}
	values := make([]float64, 0, len(rows))
	for i, r := range rows {
		values = append(values, p.require(fmt.Sprintf("[%d].netIncomePerShare", i), r.NetIncomePerShare))
	}
	if p.err != nil {
		return nil, p.err
	}
	return values, nil
}

// FetchQuote fetches the current quote
func (f *FMP) FetchQuote(ctx context.Context, symbol string) (*core.Quote, error) {
	const endpoint = "quote"

	var rows []quoteRow
	if err := f.get(ctx, endpoint, endpoint, symbol, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, collector.ParseError(name, endpoint, "no quote for %s", symbol)
	}

	r := rows[0]
	p := fieldParser{endpoint: endpoint}
	q := &core.Quote{
		Symbol:            symbol,
		MarketCap:         p.require("marketCap", r.MarketCap),
		ChangePercent:     p.require("changesPercentage", r.ChangesPercentage),
		PE:                p.require("pe", r.PE),
		Price:             p.require("price", r.Price),
		SharesOutstanding: p.require("sharesOutstanding", r.SharesOutstanding),
		Source:            name,
	}
	if p.err != nil {
		return nil, p.err
	}
	return q, nil
}

// FetchDividends returns the dividend history, most recent first. Tickers
// that never paid come back as an empty object, which maps to no payments.
func (f *FMP) FetchDividends(ctx context.Context, symbol string) ([]core.DividendPayment, error) {
	const endpoint = "stock_dividend"

	var resp dividendResponse
	if err := f.get(ctx, endpoint, "historical-price-full/stock_dividend", symbol, nil, &resp); err != nil {
		return nil, err
	}

	p := fieldParser{endpoint: endpoint}
	payments := make([]core.DividendPayment, 0, len(resp.Historical))
	for i, h := range resp.Historical {
		amount := p.require(fmt.Sprintf("historical[%d].dividend", i), h.Dividend)
		date, err := time.Parse(dateLayout, h.Date)
		if err != nil && p.err == nil {
			p.err = collector.ParseError(name, endpoint, "historical[%d].date: %q is not a date", i, h.Date)
		}
		payments = append(payments, core.DividendPayment{Date: date, Amount: amount})
	}
	if p.err != nil {
		return nil, p.err
	}
	return payments, nil
}

// fieldParser keeps the first missing field so a row can be read in one pass.
type fieldParser struct {
	endpoint string
	err      error
}

func (p *fieldParser) require(field string, v *float64) float64 {
	if v == nil {
		if p.err == nil {
			p.err = collector.ParseError(name, p.endpoint, "field %s missing or null", field)
		}
		return 0
	}
	return *v
}

// FMP API response types
type errorResponse struct {
	Message string `json:"Error Message"`
}

type balanceSheetRow struct {
	Date                        string   `json:"date"`
	CashAndShortTermInvestments *float64 `json:"cashAndShortTermInvestments"`
	NetReceivables              *float64 `json:"netReceivables"`
	Inventory                   *float64 `json:"inventory"`
	TotalLiabilities            *float64 `json:"totalLiabilities"`
	TotalCurrentAssets          *float64 `json:"totalCurrentAssets"`
	TotalCurrentLiabilities     *float64 `json:"totalCurrentLiabilities"`
	TotalAssets                 *float64 `json:"totalAssets"`
	IntangibleAssets            *float64 `json:"intangibleAssets"`
	TotalDebt                   *float64 `json:"totalDebt"`
	LongTermDebt                *float64 `json:"longTermDebt"`
	TotalStockholdersEquity     *float64 `json:"totalStockholdersEquity"`
	PreferredStock              *float64 `json:"preferredStock"`
}

type keyMetricsRow struct {
	Date              string   `json:"date"`
	NetIncomePerShare *float64 `json:"netIncomePerShare"`
}

type quoteRow struct {
	Symbol            string   `json:"symbol"`
	Price             *float64 `json:"price"`
	ChangesPercentage *float64 `json:"changesPercentage"`
	MarketCap         *float64 `json:"marketCap"`
	PE                *float64 `json:"pe"`
	SharesOutstanding *float64 `json:"sharesOutstanding"`
}

type dividendResponse struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date     string   `json:"date"`
		Dividend *float64 `json:"dividend"`
	} `json:"historical"`
}
