package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/deepvalue/internal/analysis"
	"github.com/newthinker/deepvalue/internal/collector"
	"github.com/newthinker/deepvalue/internal/collector/alphavantage"
	"github.com/newthinker/deepvalue/internal/collector/fmp"
	"github.com/newthinker/deepvalue/internal/config"
	"github.com/newthinker/deepvalue/internal/core"
	"github.com/newthinker/deepvalue/internal/metrics"
	"github.com/newthinker/deepvalue/internal/report"
	"github.com/newthinker/deepvalue/internal/storage/archive"
	"go.uber.org/zap"
)

// App wires the providers, the metric pipeline and the run archive together.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *metrics.Registry
	assembler *collector.Assembler
	archive   archive.Storage

	now   func() time.Time
	newID func() string
}

// New builds an App from a validated configuration.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry()
	base := collector.Config{Timeout: cfg.Providers.Timeout}

	fmpCfg := base
	fmpCfg.APIKey = cfg.Providers.FMP.APIKey
	fmpCfg.BaseURL = cfg.Providers.FMP.BaseURL
	fmpCfg.Client = reg.InstrumentClient("fmp", fmpCfg.HTTPClient())
	statements, err := fmp.New(fmpCfg)
	if err != nil {
		return nil, err
	}

	avCfg := base
	avCfg.APIKey = cfg.Providers.AlphaVantage.APIKey
	avCfg.BaseURL = cfg.Providers.AlphaVantage.BaseURL
	avCfg.Client = reg.InstrumentClient("alphavantage", avCfg.HTTPClient())
	history, err := alphavantage.New(avCfg)
	if err != nil {
		return nil, err
	}

	var store archive.Storage
	if cfg.Archive.Enabled {
		s3cfg := cfg.Archive.S3
		store, err = archive.New(cfg.Archive.Type, cfg.Archive.Path, archive.S3Config{
			Bucket:    s3cfg.Bucket,
			Endpoint:  s3cfg.Endpoint,
			Region:    s3cfg.Region,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			Prefix:    s3cfg.Prefix,
		})
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("archive: %w", err))
		}
	}

	return newApp(cfg, logger, reg, statements, history, store), nil
}

func newApp(cfg *config.Config, logger *zap.Logger, reg *metrics.Registry,
	statements collector.StatementProvider, history collector.HistoryProvider, store archive.Storage) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		metrics:   reg,
		assembler: collector.NewAssembler(statements, history, logger),
		archive:   store,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Metrics exposes the run metrics registry.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Run fetches, computes and prints the report for symbol. Sections finished
// before a failing step are still written to out; the error is returned.
func (a *App) Run(ctx context.Context, symbol string, out io.Writer) error {
	runID := a.newID()
	started := a.now()
	log := a.logger.With(zap.String("run_id", runID), zap.String("symbol", symbol))
	log.Info("starting analysis")

	snap, rep, err := a.analyze(ctx, symbol)
	if rep != nil {
		if werr := a.write(out, rep); werr != nil && err == nil {
			err = fmt.Errorf("writing report: %w", werr)
		}
	}

	if a.archive != nil {
		run := &archive.Run{ID: runID, Symbol: symbol, StartedAt: started, Snapshot: snap, Report: rep}
		run.SetError(err)
		if path, aerr := archive.SaveRun(ctx, a.archive, run); aerr != nil {
			log.Warn("archiving run failed", zap.Error(aerr))
		} else {
			log.Info("run archived", zap.String("path", path))
		}
	}

	a.record(log, rep, err, a.now().Sub(started))

	if err != nil {
		log.Debug("analysis failed", zap.Error(err))
		return err
	}
	log.Info("analysis complete", zap.Int("sections", len(rep.Sections)))
	return nil
}

func (a *App) write(out io.Writer, rep *core.Report) error {
	if a.cfg.Report.Format != "json" {
		return report.Render(out, rep, a.cfg.Report.Divider)
	}
	data, err := report.Marshal(rep)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

func (a *App) analyze(ctx context.Context, symbol string) (*core.FinancialSnapshot, *core.Report, error) {
	snap, err := a.assembler.Assemble(ctx, symbol)
	if err != nil {
		return nil, nil, err
	}
	rep, err := analysis.Compute(snap)
	return snap, rep, err
}

func (a *App) record(log *zap.Logger, rep *core.Report, err error, took time.Duration) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = "UNKNOWN"
		var coded *core.Error
		if errors.As(err, &coded) {
			outcome = coded.Code
		}
	}
	sections := 0
	if rep != nil {
		sections = len(rep.Sections)
	}
	a.metrics.RecordRun(outcome, sections, took.Seconds())

	if path := a.cfg.Metrics.Textfile; path != "" {
		if werr := a.metrics.WriteTextfile(path); werr != nil {
			log.Warn("writing metrics textfile failed", zap.String("path", path), zap.Error(werr))
		}
	}
}
