package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/deepvalue/internal/collector"
	"github.com/newthinker/deepvalue/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const earningsJSON = `{"symbol":"IBM","annualEarnings":[
	{"fiscalDateEnding":"2023-12-31","reportedEPS":"9.62"},
	{"fiscalDateEnding":"2022-12-31","reportedEPS":"9.12"},
	{"fiscalDateEnding":"2021-12-31","reportedEPS":"7.93"},
	{"fiscalDateEnding":"2020-12-31","reportedEPS":"8.67"},
	{"fiscalDateEnding":"2019-12-31","reportedEPS":"12.81"},
	{"fiscalDateEnding":"2018-12-31","reportedEPS":"13.81"},
	{"fiscalDateEnding":"2017-12-31","reportedEPS":"13.8"},
	{"fiscalDateEnding":"2016-12-31","reportedEPS":"13.59"},
	{"fiscalDateEnding":"2015-12-31","reportedEPS":"14.92"},
	{"fiscalDateEnding":"2014-12-31","reportedEPS":"-1.5"},
	{"fiscalDateEnding":"2013-12-31","reportedEPS":"None"}],
	"quarterlyEarnings":[]}`

const balanceSheetJSON = `{"symbol":"IBM","annualReports":[
	{"fiscalDateEnding":"2023-12-31","commonStockSharesOutstanding":"915013000"},
	{"fiscalDateEnding":"2022-12-31","commonStockSharesOutstanding":"906091977"}]}`

func newServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apikey") != "test-key" || q.Get("symbol") != "IBM" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, ok := responses[q.Get("function")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newAlphaVantage(t *testing.T, srv *httptest.Server) *AlphaVantage {
	t.Helper()
	a, err := New(collector.Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return a
}

func TestAlphaVantage_ImplementsHistoryProvider(t *testing.T) {
	var _ collector.HistoryProvider = (*AlphaVantage)(nil)
}

func TestAlphaVantage_New_RequiresAPIKey(t *testing.T) {
	_, err := New(collector.Config{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrConfigMissing))
}

func TestAlphaVantage_FetchAnnualEPS(t *testing.T) {
	a := newAlphaVantage(t, newServer(t, map[string]string{"EARNINGS": earningsJSON}))

	eps, err := a.FetchAnnualEPS(context.Background(), "IBM")
	require.NoError(t, err)
	// The eleventh entry is "None" but lies outside the window.
	require.Len(t, eps, 10)
	assert.Equal(t, 9.62, eps[0])
	assert.Equal(t, -1.5, eps[9])
}

func TestAlphaVantage_FetchAnnualEPS_NonNumeric(t *testing.T) {
	a := newAlphaVantage(t, newServer(t, map[string]string{
		"EARNINGS": `{"annualEarnings":[{"reportedEPS":"9.62"},{"reportedEPS":"None"}]}`,
	}))

	_, err := a.FetchAnnualEPS(context.Background(), "IBM")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrParseFailed))
	assert.Contains(t, err.Error(), "annualEarnings[1].reportedEPS")
}

func TestAlphaVantage_FetchAnnualEPS_MissingSeries(t *testing.T) {
	a := newAlphaVantage(t, newServer(t, map[string]string{"EARNINGS": `{"symbol":"IBM"}`}))

	_, err := a.FetchAnnualEPS(context.Background(), "IBM")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrParseFailed))
}

func TestAlphaVantage_FetchSharesHistory(t *testing.T) {
	a := newAlphaVantage(t, newServer(t, map[string]string{"BALANCE_SHEET": balanceSheetJSON}))

	shares, err := a.FetchSharesHistory(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, []float64{915013000, 906091977}, shares)
}

func TestAlphaVantage_FetchSharesHistory_NullValue(t *testing.T) {
	a := newAlphaVantage(t, newServer(t, map[string]string{
		"BALANCE_SHEET": `{"annualReports":[{"commonStockSharesOutstanding":null}]}`,
	}))

	_, err := a.FetchSharesHistory(context.Background(), "IBM")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrParseFailed))
}

func TestAlphaVantage_InBandErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"error message", `{"Error Message":"Invalid API call."}`},
		{"rate limit note", `{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`},
		{"information", `{"Information":"The **demo** API key is for demo purposes only."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAlphaVantage(t, newServer(t, map[string]string{"EARNINGS": tt.body}))

			_, err := a.FetchAnnualEPS(context.Background(), "IBM")
			require.Error(t, err)
			assert.True(t, errors.Is(err, core.ErrFetchFailed))
		})
	}
}

func TestAlphaVantage_InvalidJSON(t *testing.T) {
	a := newAlphaVantage(t, newServer(t, map[string]string{"EARNINGS": `{"annualEarnings":[`}))

	_, err := a.FetchAnnualEPS(context.Background(), "IBM")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrParseFailed))
}

func TestAlphaVantage_HTTPError(t *testing.T) {
	a := newAlphaVantage(t, newServer(t, map[string]string{}))

	_, err := a.FetchSharesHistory(context.Background(), "IBM")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrFetchFailed))
	assert.Contains(t, err.Error(), "500")
}
