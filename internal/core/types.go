package core

import "time"

// Quote is the current market quote reported by the statement provider.
type Quote struct {
	Symbol            string
	Price             float64
	ChangePercent     float64
	MarketCap         float64
	PE                float64
	SharesOutstanding float64
	Source            string
}

// IsValid checks if the quote has required fields
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}

// BalanceSheet holds the most recent annual balance-sheet statement.
type BalanceSheet struct {
	Date                        string
	CashAndShortTermInvestments float64
	NetReceivables              float64
	Inventory                   float64
	TotalLiabilities            float64
	TotalCurrentAssets          float64
	TotalCurrentLiabilities     float64
	TotalAssets                 float64
	IntangibleAssets            float64
	TotalDebt                   float64
	LongTermDebt                float64
	TotalStockholdersEquity     float64
	PreferredStock              float64
}

// WorkingCapital is current assets minus current liabilities.
func (b BalanceSheet) WorkingCapital() float64 {
	return b.TotalCurrentAssets - b.TotalCurrentLiabilities
}

// DividendPayment is one historical dividend record.
type DividendPayment struct {
	Date   time.Time
	Amount float64
}

// FinancialSnapshot is every raw figure one analysis run needs.
// All series are ordered most recent first.
type FinancialSnapshot struct {
	Symbol            string
	Quote             Quote
	BalanceSheet      BalanceSheet
	NetIncomePerShare []float64
	SharesHistory     []float64
	EPSHistory        []float64
	Dividends         []DividendPayment
	FetchedAt         time.Time
}

// Verdict records whether a fixed screening rule holds.
type Verdict struct {
	Rule  string `json:"rule"`
	Holds bool   `json:"holds"`
}

// Metric is one labelled figure of a report.
type Metric struct {
	Label   string   `json:"label"`
	Value   float64  `json:"value"`
	Display string   `json:"display"`
	Verdict *Verdict `json:"verdict,omitempty"`
}

// Section groups the metrics of one screening step.
type Section struct {
	Name    string   `json:"name"`
	Metrics []Metric `json:"metrics"`
	Notes   []string `json:"notes,omitempty"`
}

// Report is the ordered output of the metric pipeline.
type Report struct {
	Symbol   string    `json:"symbol"`
	Sections []Section `json:"sections"`
}

// Section returns the section with the given name.
func (r *Report) Section(name string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Metric returns the metric with the given label.
func (s Section) Metric(label string) (Metric, bool) {
	for _, m := range s.Metrics {
		if m.Label == label {
			return m, true
		}
	}
	return Metric{}, false
}
