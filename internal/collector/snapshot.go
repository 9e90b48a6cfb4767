package collector

import (
	"context"
	"time"

	"github.com/newthinker/deepvalue/internal/core"
	"go.uber.org/zap"
)

// Assembler builds a FinancialSnapshot from the two providers.
type Assembler struct {
	statements StatementProvider
	history    HistoryProvider
	logger     *zap.Logger
	now        func() time.Time
}

// NewAssembler creates a new snapshot assembler
func NewAssembler(statements StatementProvider, history HistoryProvider, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		statements: statements,
		history:    history,
		logger:     logger,
		now:        time.Now,
	}
}

// Assemble fetches every input sequentially and stops at the first failure.
func (a *Assembler) Assemble(ctx context.Context, symbol string) (*core.FinancialSnapshot, error) {
	snap := &core.FinancialSnapshot{Symbol: symbol}

	fetches := []struct {
		provider string
		what     string
		run      func() error
	}{
		{a.statements.Name(), "balance sheet", func() error {
			b, err := a.statements.FetchBalanceSheet(ctx, symbol)
			if err == nil {
				snap.BalanceSheet = *b
			}
			return err
		}},
		{a.statements.Name(), "key metrics", func() (err error) {
			snap.NetIncomePerShare, err = a.statements.FetchKeyMetrics(ctx, symbol)
			return err
		}},
		{a.statements.Name(), "quote", func() error {
			q, err := a.statements.FetchQuote(ctx, symbol)
			if err == nil {
				snap.Quote = *q
			}
			return err
		}},
		{a.statements.Name(), "dividends", func() (err error) {
			snap.Dividends, err = a.statements.FetchDividends(ctx, symbol)
			return err
		}},
		{a.history.Name(), "earnings", func() (err error) {
			snap.EPSHistory, err = a.history.FetchAnnualEPS(ctx, symbol)
			return err
		}},
		{a.history.Name(), "shares outstanding", func() (err error) {
			snap.SharesHistory, err = a.history.FetchSharesHistory(ctx, symbol)
			return err
		}},
	}

	for _, f := range fetches {
		start := a.now()
		if err := f.run(); err != nil {
			a.logger.Debug("fetch failed",
				zap.String("symbol", symbol),
				zap.String("provider", f.provider),
				zap.String("data", f.what),
				zap.Error(err),
			)
			return nil, err
		}
		a.logger.Debug("fetched",
			zap.String("symbol", symbol),
			zap.String("provider", f.provider),
			zap.String("data", f.what),
			zap.Duration("took", a.now().Sub(start)),
		)
	}

	snap.FetchedAt = a.now()
	return snap, nil
}
