package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/newthinker/deepvalue/internal/collector"
	"github.com/newthinker/deepvalue/internal/core"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is the Alpha Vantage query endpoint.
	DefaultBaseURL = "https://www.alphavantage.co/query"
	name           = "alphavantage"

	// epsWindow is how many annual EPS values are parsed; older ones are ignored.
	epsWindow = 10
)

// In-band error keys Alpha Vantage returns with a 200 status.
var errorKeys = []string{"Error Message", "Note", "Information"}

// AlphaVantage implements collector.HistoryProvider
type AlphaVantage struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a new Alpha Vantage collector
func New(cfg collector.Config) (*AlphaVantage, error) {
	if cfg.APIKey == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("alphavantage: api_key is required"))
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &AlphaVantage{
		apiKey:  cfg.APIKey,
		baseURL: base,
		client:  cfg.HTTPClient(),
	}, nil
}

func (a *AlphaVantage) Name() string { return name }

func (a *AlphaVantage) query(ctx context.Context, function, symbol string) (gjson.Result, error) {
	q := url.Values{}
	q.Set("function", function)
	q.Set("symbol", symbol)
	q.Set("apikey", a.apiKey)

	body, err := collector.Get(ctx, a.client, name, function, a.baseURL+"?"+q.Encode())
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, collector.ParseError(name, function, "response is not valid JSON")
	}

	doc := gjson.ParseBytes(body)
	for _, key := range errorKeys {
		if msg := doc.Get(gjson.Escape(key)); msg.Exists() {
			return gjson.Result{}, core.WrapError(core.ErrFetchFailed,
				fmt.Errorf("%s %s: API error: %s", name, function, msg.String()))
		}
	}
	return doc, nil
}

// FetchAnnualEPS returns up to ten annual reported EPS figures, most recent first.
func (a *AlphaVantage) FetchAnnualEPS(ctx context.Context, symbol string) ([]float64, error) {
	const function = "EARNINGS"

	doc, err := a.query(ctx, function, symbol)
	if err != nil {
		return nil, err
	}
	reports, err := annualReports(doc, function, "annualEarnings")
	if err != nil {
		return nil, err
	}
	if len(reports) > epsWindow {
		reports = reports[:epsWindow]
	}

	values := make([]float64, 0, len(reports))
	for i, r := range reports {
		v, err := number(r.Get("reportedEPS"), function, fmt.Sprintf("annualEarnings[%d].reportedEPS", i))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// FetchSharesHistory returns common shares outstanding per annual report.
func (a *AlphaVantage) FetchSharesHistory(ctx context.Context, symbol string) ([]float64, error) {
	const function = "BALANCE_SHEET"

	doc, err := a.query(ctx, function, symbol)
	if err != nil {
		return nil, err
	}
	reports, err := annualReports(doc, function, "annualReports")
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(reports))
	for i, r := range reports {
		v, err := number(r.Get("commonStockSharesOutstanding"), function,
			fmt.Sprintf("annualReports[%d].commonStockSharesOutstanding", i))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func annualReports(doc gjson.Result, function, path string) ([]gjson.Result, error) {
	reports := doc.Get(path)
	if !reports.IsArray() {
		return nil, collector.ParseError(name, function, "field %s missing", path)
	}
	return reports.Array(), nil
}

// number reads a figure Alpha Vantage encodes as a string ("6.11", "None").
func number(r gjson.Result, function, field string) (float64, error) {
	switch r.Type {
	case gjson.Number:
		return r.Num, nil
	case gjson.String:
		v, err := strconv.ParseFloat(r.Str, 64)
		if err != nil {
			return 0, collector.ParseError(name, function, "field %s: %q is not a number", field, r.Str)
		}
		return v, nil
	default:
		return 0, collector.ParseError(name, function, "field %s missing or null", field)
	}
}
