// Package analysis computes the deep-value screening report for one ticker.
package analysis

import (
	"fmt"
	"math"

	"github.com/newthinker/deepvalue/internal/core"
	"github.com/newthinker/deepvalue/internal/format"
)

// Section names, in report order.
const (
	SectionNNWC               = "Net-Net Working Capital"
	SectionMarketCap          = "Market Cap"
	SectionFinancialCondition = "Financial Condition"
	SectionEarningsStability  = "Earnings Stability"
	SectionDividendRecord     = "Dividend Record"
	SectionEPSGrowth          = "EPS Average Growth"
	SectionPE                 = "P/E Ratio"
	SectionPB                 = "P/B Ratio"
	SectionPBxPE              = "P/B x P/E"
	SectionSharesOutstanding  = "Shares Outstanding"
	SectionDebtToEquity       = "Debt to Equity"
)

// Screening thresholds.
const (
	MinCurrentRatio    = 2.0
	MaxAveragedPE      = 15.0
	MaxPriceToBook     = 1.5
	MaxPBxPE           = 22.5
	MaxDebtToEquity    = 2.0
	NNWCRiskFactor     = 2.0 / 3.0
	ReceivablesHaircut = 0.75
	InventoryHaircut   = 0.5
	DividendYears      = 20
)

const noDividendRecord = "No dividend record."

type state struct {
	snap *core.FinancialSnapshot
	eps  EPSHistory

	// averaged EPS of the three most recent years, set by the growth step
	epsRecent float64
}

type step struct {
	name string
	run  func(*state) (core.Section, error)
}

var steps = []step{
	{SectionNNWC, netNetWorkingCapital},
	{SectionMarketCap, marketCap},
	{SectionFinancialCondition, financialCondition},
	{SectionEarningsStability, earningsStability},
	{SectionDividendRecord, dividendRecord},
	{SectionEPSGrowth, epsGrowth},
	{SectionPE, averagedPE},
	{SectionPB, priceToBook},
	{SectionPBxPE, pbTimesPE},
	{SectionSharesOutstanding, sharesOutstanding},
	{SectionDebtToEquity, debtToEquity},
}

// Compute runs every screening step in order. It stops at the first failing
// step and returns the sections completed so far together with the error.
func Compute(snap *core.FinancialSnapshot) (*core.Report, error) {
	if snap == nil {
		return nil, core.WrapError(core.ErrInsufficientData, fmt.Errorf("nil snapshot"))
	}

	st := &state{snap: snap, eps: ClassifyEPS(snap.EPSHistory)}
	report := &core.Report{Symbol: snap.Symbol, Sections: make([]core.Section, 0, len(steps))}

	for _, s := range steps {
		section, err := s.run(st)
		if err != nil {
			return report, err
		}
		section.Name = s.name
		report.Sections = append(report.Sections, section)
	}
	return report, nil
}

// divide checks the denominator before dividing so a zero never turns into
// an Inf or NaN in the report.
func divide(metric, numName string, num float64, denName string, den float64) (float64, error) {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0, core.WrapError(core.ErrComputation,
			fmt.Errorf("%s: %s is %v (%s=%v)", metric, denName, den, numName, num))
	}
	return num / den, nil
}

func verdict(rule string, holds bool) *core.Verdict {
	return &core.Verdict{Rule: rule, Holds: holds}
}

func fixed(label string, v float64) core.Metric {
	return core.Metric{Label: label, Value: v, Display: format.Fixed(v)}
}

func netNetWorkingCapital(st *state) (core.Section, error) {
	q, b := st.snap.Quote, st.snap.BalanceSheet

	liquidation := b.CashAndShortTermInvestments +
		ReceivablesHaircut*b.NetReceivables +
		InventoryHaircut*b.Inventory -
		b.TotalLiabilities
	nnwc, err := divide("NNWC", "net-net working capital", liquidation, "shares outstanding", q.SharesOutstanding)
	if err != nil {
		return core.Section{}, err
	}

	return core.Section{Metrics: []core.Metric{
		{Label: "Current Price", Value: q.Price, Display: format.Plain(q.Price)},
		{Label: "Change", Value: q.ChangePercent, Display: fmt.Sprintf("%+.2f%%", q.ChangePercent)},
		fixed("NNWC", nnwc),
		fixed("NNWC Risk Factor", nnwc*NNWCRiskFactor),
	}}, nil
}

func marketCap(st *state) (core.Section, error) {
	mc := st.snap.Quote.MarketCap
	return core.Section{Metrics: []core.Metric{
		{Label: "Market Cap", Value: mc, Display: format.Number(mc)},
	}}, nil
}

func financialCondition(st *state) (core.Section, error) {
	b := st.snap.BalanceSheet

	ratio, err := divide("current ratio", "current assets", b.TotalCurrentAssets, "current liabilities", b.TotalCurrentLiabilities)
	if err != nil {
		return core.Section{}, err
	}
	wc := b.WorkingCapital()

	current := fixed("Current Ratio", ratio)
	current.Verdict = verdict("Current ratio > 2", ratio > MinCurrentRatio)

	debt := core.Metric{Label: "Long-term Debt", Value: b.LongTermDebt, Display: format.Number(b.LongTermDebt)}
	debt.Verdict = verdict("Long-term debt < working capital", b.LongTermDebt < wc)

	return core.Section{Metrics: []core.Metric{
		current,
		{Label: "Working Capital", Value: wc, Display: format.Number(wc)},
		debt,
	}}, nil
}

func earningsStability(st *state) (core.Section, error) {
	eps := core.Metric{
		Label:   "EPS last 10 years",
		Value:   float64(len(st.eps.Values)),
		Display: format.List(st.eps.Values, format.Plain),
		Verdict: verdict("Negative EPS last 10 years", st.eps.HasNegative()),
	}
	section := core.Section{Metrics: []core.Metric{eps}}

	if nips := st.snap.NetIncomePerShare; len(nips) > 0 {
		section.Metrics = append(section.Metrics, core.Metric{
			Label:   "Net income per share",
			Value:   nips[0],
			Display: format.List(nips, format.Fixed),
		})
	}
	section.Notes = []string{"EPS[0] = Current year"}
	return section, nil
}

func dividendRecord(st *state) (core.Section, error) {
	all := st.snap.Dividends
	if len(all) == 0 {
		return core.Section{Notes: []string{noDividendRecord}}, nil
	}

	window := all
	if len(window) > DividendYears {
		window = window[:DividendYears]
	}
	amounts := make([]float64, len(window))
	negative := false
	for i, d := range window {
		amounts[i] = d.Amount
		if d.Amount < 0 {
			negative = true
		}
	}

	// The oldest date comes from the full history, not the 20-entry window.
	oldest := all[len(all)-1].Date

	return core.Section{
		Metrics: []core.Metric{
			{
				Label:   "Dividends last 20 years",
				Value:   float64(len(amounts)),
				Display: format.List(amounts, format.Plain),
				Verdict: verdict("Negative dividends last 20 years", negative),
			},
			{Label: "Dividends since", Value: float64(oldest.Year()), Display: oldest.Format("2006-01-02")},
		},
		Notes: []string{"List[0] = Current year"},
	}, nil
}

func epsGrowth(st *state) (core.Section, error) {
	recent, err := st.eps.RecentAverage()
	if err != nil {
		return core.Section{}, err
	}
	st.epsRecent = recent

	switch st.eps.Kind {
	case EPSFull:
		old, _ := st.eps.OldAverage()
		growth, err := divide("EPS growth", "EPS average change", recent-old, "average EPS years 7-10", old)
		if err != nil {
			return core.Section{}, err
		}
		return core.Section{Metrics: []core.Metric{
			fixed("Average EPS current 1-3", recent),
			fixed("Average EPS 7-10", old),
			fixed("EPS Growth", growth),
		}}, nil
	default:
		return core.Section{
			Metrics: []core.Metric{fixed("Average EPS last 3 years", recent)},
			Notes:   []string{"Limited amount of EPS data."},
		}, nil
	}
}

func averagedPE(st *state) (core.Section, error) {
	pe, err := divide("P/E (price / average EPS last 3 years)", "price", st.snap.Quote.Price, "average EPS last 3 years", st.epsRecent)
	if err != nil {
		return core.Section{}, err
	}
	m := fixed("P/E (price / average EPS last 3 years)", pe)
	m.Verdict = verdict("P/E < 15", pe < MaxAveragedPE)
	return core.Section{Metrics: []core.Metric{m}}, nil
}

func bookValuePerShare(snap *core.FinancialSnapshot) (float64, error) {
	b := snap.BalanceSheet
	return divide("book value per share", "common equity", b.TotalStockholdersEquity-b.PreferredStock,
		"shares outstanding", snap.Quote.SharesOutstanding)
}

func priceToBookRatio(snap *core.FinancialSnapshot) (bvps, pb float64, err error) {
	bvps, err = bookValuePerShare(snap)
	if err != nil {
		return 0, 0, err
	}
	pb, err = divide("P/B ratio", "price", snap.Quote.Price, "book value per share", bvps)
	return bvps, pb, err
}

func priceToBook(st *state) (core.Section, error) {
	bvps, pb, err := priceToBookRatio(st.snap)
	if err != nil {
		return core.Section{}, err
	}
	m := fixed("P/B Ratio", pb)
	m.Verdict = verdict("P/B < 1.5", pb < MaxPriceToBook)
	return core.Section{Metrics: []core.Metric{fixed("Book Value per Share", bvps), m}}, nil
}

// pbTimesPE uses the provider's P/E, not the averaged one.
func pbTimesPE(st *state) (core.Section, error) {
	_, pb, err := priceToBookRatio(st.snap)
	if err != nil {
		return core.Section{}, err
	}
	product := pb * st.snap.Quote.PE
	m := fixed("P/B * P/E", product)
	m.Verdict = verdict("P/B * P/E < 22.5", product < MaxPBxPE)
	return core.Section{Metrics: []core.Metric{m}}, nil
}

func sharesOutstanding(st *state) (core.Section, error) {
	history := st.snap.SharesHistory
	var latest float64
	if len(history) > 0 {
		latest = history[0]
	}
	return core.Section{Metrics: []core.Metric{
		{Label: "Shares Outstanding", Value: latest, Display: format.List(history, format.Number)},
	}}, nil
}

func debtToEquity(st *state) (core.Section, error) {
	b := st.snap.BalanceSheet
	de, err := divide("debt to equity", "total liabilities", b.TotalLiabilities, "stockholders equity", b.TotalStockholdersEquity)
	if err != nil {
		return core.Section{}, err
	}
	m := fixed("Debt to Equity", de)
	m.Verdict = verdict("Debt to equity < 2", de < MaxDebtToEquity)
	return core.Section{Metrics: []core.Metric{m}}, nil
}
