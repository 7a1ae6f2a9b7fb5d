package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"FxPull/internal/domain/models"
	drepo "FxPull/internal/domain/repository"
	applogger "FxPull/pkg/logger"
)

// Backfiller runs one backfill: resolve symbols, fetch or synthesize each
// currency's series, hand the series to every sink and tally the outcome.
type Backfiller struct {
	resolver  *SymbolResolver
	paginator *Paginator
	sinks     []drepo.RateSink
	store     *ReportStore
	workers   int
	metrics   drepo.Metrics
	l         *applogger.Logger

	now   func() time.Time
	newID func() string
}

// NewBackfiller creates a Backfiller. workers below 1 runs currencies sequentially.
func NewBackfiller(
	resolver *SymbolResolver,
	paginator *Paginator,
	sinks []drepo.RateSink,
	store *ReportStore,
	workers int,
	metrics drepo.Metrics,
	l *applogger.Logger,
) *Backfiller {
	if workers < 1 {
		workers = 1
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Backfiller{
		resolver:  resolver,
		paginator: paginator,
		sinks:     sinks,
		store:     store,
		workers:   workers,
		metrics:   metrics,
		l:         l,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Run backfills every currency of in. Only an invalid input is an error;
// per-currency failures are recorded in the report.
func (b *Backfiller) Run(ctx context.Context, in models.BackfillInput) (*models.BackfillReport, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("backfill input: %w", err)
	}

	report := &models.BackfillReport{
		RunID:     b.newID(),
		Start:     in.Start,
		End:       in.End,
		Quote:     in.Quote,
		StartedAt: b.now().UTC(),
	}
	log := b.l.With(applogger.String("run_id", report.RunID))
	log.Info("backfill started",
		applogger.Time("start", in.Start),
		applogger.Time("end", in.End),
		applogger.Int("currencies", len(in.Currencies)),
		applogger.Int("workers", b.workers),
	)

	res := b.resolver.Resolve(ctx, in.Currencies, in.Quote)
	report.Supported = res.Supported
	report.Unsupported = res.Unsupported

	results := make([]models.CurrencyResult, len(res.Supported))
	series := make([]*models.Series, len(res.Supported))

	var (
		g    errgroup.Group
		done atomic.Int32
	)
	g.SetLimit(b.workers)
	for i, cur := range res.Supported {
		symbol, _ := res.Mapping.Lookup(cur)
		g.Go(func() error {
			series[i], results[i] = b.backfillCurrency(ctx, log, cur, symbol, in)
			log.Info("currency done",
				applogger.String("currency", cur),
				applogger.String("status", string(results[i].Status)),
				applogger.Int("candles", results[i].Candles),
				applogger.Bool("ok", results[i].Succeeded),
				applogger.String("progress", fmt.Sprintf("%d/%d", done.Add(1), len(res.Supported))),
			)
			return nil
		})
	}
	_ = g.Wait()

	// partial output is still written after a cancel
	flushCtx := context.WithoutCancel(ctx)
	for _, s := range b.sinks {
		if err := s.Flush(flushCtx); err != nil {
			log.Error("sink flush failed", applogger.String("sink", s.Name()), applogger.Error(err))
			b.recordError("sink_flush")
		}
	}

	report.Results = results
	for _, r := range results {
		if r.Succeeded {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	report.FinishedAt = b.now().UTC()

	if b.store != nil {
		b.store.Save(report, series)
	}

	log.Info("backfill finished",
		applogger.Int("succeeded", report.Succeeded),
		applogger.Int("failed", report.Failed),
		applogger.Int("unsupported", len(report.Unsupported)),
		applogger.Duration("took_ms", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}

func (b *Backfiller) backfillCurrency(ctx context.Context, log *applogger.Logger, currency, symbol string, in models.BackfillInput) (*models.Series, models.CurrencyResult) {
	s := &models.Series{
		Base:   currency,
		Quote:  in.Quote,
		Symbol: symbol,
		Start:  in.Start,
		End:    in.End,
	}

	if currency == in.Quote {
		s.Synthetic = true
		s.Candles = GenerateIdentitySeries(in.Start, in.End)
		s.Status = models.StatusComplete
	} else {
		fr := b.paginator.Paginate(ctx, symbol, in.Start, in.End)
		s.Candles = fr.Candles
		s.Status = fr.Status
		s.Pages = fr.Pages
	}

	result := models.CurrencyResult{
		Currency:  currency,
		Symbol:    symbol,
		Candles:   s.Len(),
		Pages:     s.Pages,
		Synthetic: s.Synthetic,
		Status:    s.Status,
	}
	if b.metrics != nil {
		b.metrics.RecordSeries(currency, s.Status, s.Len())
	}

	if s.Empty() {
		result.Error = "no candles fetched"
		b.recordError("empty_series")
		return s, result
	}

	var failed []string
	for _, sink := range b.sinks {
		if err := sink.WriteSeries(ctx, s); err != nil {
			log.Error("sink write failed",
				applogger.String("currency", currency),
				applogger.String("sink", sink.Name()),
				applogger.Error(err),
			)
			b.recordError("sink_write")
			failed = append(failed, fmt.Sprintf("%s: %v", sink.Name(), err))
		}
	}
	if len(failed) > 0 {
		result.Error = fmt.Sprintf("sink write failed (%d): %s", len(failed), failed[0])
		return s, result
	}

	result.Succeeded = true
	return s, result
}

func (b *Backfiller) recordError(kind string) {
	if b.metrics != nil {
		b.metrics.RecordError(kind)
	}
}
