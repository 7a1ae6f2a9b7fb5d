package server

import (
	"context"
	"fmt"

	"FxPull/internal/domain/models"
	drepo "FxPull/internal/domain/repository"
	"FxPull/internal/usecase"
	"FxPull/pkg/config"
	xhttp "FxPull/pkg/http"
	applogger "FxPull/pkg/logger"
)

// App runs one backfill and, in ops mode, keeps the HTTP server up afterwards.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	ledger     drepo.LedgerReader
	backfiller *usecase.Backfiller
	httpServer *xhttp.Server
}

// New creates an App. httpServer may be nil when ops mode is off.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	ledger drepo.LedgerReader,
	backfiller *usecase.Backfiller,
	httpServer *xhttp.Server,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		ledger:     ledger,
		backfiller: backfiller,
		httpServer: httpServer,
	}
}

// Run reads the ledger, backfills it and returns the report. With the server
// enabled it serves from before the backfill starts until ctx is cancelled.
// Ledger and input errors are returned; per-currency failures are not.
func (a *App) Run(ctx context.Context) (*models.BackfillReport, error) {
	txs, err := a.ledger.ReadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	in, err := usecase.BuildInput(txs, a.cfg.Backfill.Quote)
	if err != nil {
		return nil, fmt.Errorf("build input: %w", err)
	}
	a.l.Info("ledger loaded",
		applogger.Int("transactions", len(txs)),
		applogger.Strings("currencies", in.Currencies),
		applogger.Time("start", in.Start),
		applogger.Time("end", in.End),
	)

	var serveErr <-chan error
	if a.httpServer != nil {
		serveErr = a.httpServer.Start()
	}

	report, err := a.backfiller.Run(ctx, in)
	if err != nil {
		a.stopServer()
		return nil, err
	}
	if len(report.Unsupported) > 0 {
		a.l.Warn("currencies without a trading pair", applogger.Strings("currencies", report.Unsupported))
	}

	if a.httpServer == nil {
		return report, nil
	}

	a.l.Info("backfill done, serving ops api until shutdown", applogger.Int("port", a.cfg.Server.Port))
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case err, ok := <-serveErr:
		if ok && err != nil {
			return report, fmt.Errorf("http server: %w", err)
		}
	}
	a.stopServer()
	return report, nil
}

func (a *App) stopServer() {
	if a.httpServer == nil {
		return
	}
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
}
