package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FxPull/internal/domain/models"
	pkgch "FxPull/pkg/clickhouse"
	applogger "FxPull/pkg/logger"
)

const insertChunk = 2000

var rateColumnList = strings.Join(models.RateColumns, ", ")

// ClickHouseRateStore writes series into the hourly rates table and reads
// them back for the ops API.
type ClickHouseRateStore struct {
	db           *sql.DB
	table        string
	writeTimeout time.Duration
	l            *applogger.Logger
}

// NewClickHouseRateStore binds the store to database.table on ch.
func NewClickHouseRateStore(ch *pkgch.Client, table string, l *applogger.Logger) *ClickHouseRateStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &ClickHouseRateStore{
		db:           ch.DB(),
		table:        ch.Database() + "." + table,
		writeTimeout: ch.WriteTimeout(),
		l:            l,
	}
}

func (s *ClickHouseRateStore) Name() string { return "clickhouse" }

// WriteSeries inserts the series in chunks, one transaction per chunk.
func (s *ClickHouseRateStore) WriteSeries(ctx context.Context, series *models.Series) error {
	rows := series.Rows()
	start := time.Now()

	for lo := 0; lo < len(rows); lo += insertChunk {
		hi := lo + insertChunk
		if hi > len(rows) {
			hi = len(rows)
		}
		if err := s.insertChunk(ctx, rows[lo:hi]); err != nil {
			s.l.Error("clickhouse insert error",
				applogger.String("table", s.table),
				applogger.String("currency", series.Base),
				applogger.Int("offset", lo),
				applogger.Error(err),
			)
			return fmt.Errorf("insert %s rows [%d,%d): %w", series.Base, lo, hi, err)
		}
	}

	s.l.Debug("clickhouse insert ok",
		applogger.String("table", s.table),
		applogger.String("currency", series.Base),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *ClickHouseRateStore) insertChunk(ctx context.Context, rows []models.RateRow) error {
	if s.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertRatesQuery(s.table))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, rowArgs(r)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Flush is a no-op; every WriteSeries commits.
func (s *ClickHouseRateStore) Flush(context.Context) error { return nil }

// QueryRates reads up to limit rows of currency with open time in [from, to), oldest first.
func (s *ClickHouseRateStore) QueryRates(ctx context.Context, currency string, from, to time.Time, limit int) ([]models.RateRow, error) {
	rows, err := s.db.QueryContext(ctx, selectRatesQuery(s.table), currency, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query rates: %w", err)
	}
	defer rows.Close()

	out := make([]models.RateRow, 0, limit)
	for rows.Next() {
		var (
			r               models.RateRow
			open, closeTime time.Time
		)
		if err := rows.Scan(
			&open, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume,
			&closeTime, &r.QuoteAssetVolume, &r.NumberOfTrades,
			&r.TakerBuyBaseAssetVolume, &r.TakerBuyQuoteAssetVolume, &r.Ignore,
			&r.Symbol, &r.BaseCurrency, &r.QuoteCurrency,
		); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		r.OpenTime = open.UnixMilli()
		r.CloseTime = closeTime.UnixMilli()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func insertRatesQuery(table string) string {
	return fmt.Sprintf("INSERT INTO %s (%s)", table, rateColumnList)
}

func selectRatesQuery(table string) string {
	// FINAL collapses rows replaced by re-runs of the same window
	return fmt.Sprintf(`SELECT %s
        FROM %s FINAL
        WHERE base_currency = ? AND open_time >= ? AND open_time < ?
        ORDER BY open_time ASC
        LIMIT ?`, rateColumnList, table)
}

// rowArgs returns the insert arguments in RateColumns order.
func rowArgs(r models.RateRow) []any {
	return []any{
		models.UnixMilli(r.OpenTime),
		r.Open, r.High, r.Low, r.Close,
		r.Volume,
		models.UnixMilli(r.CloseTime),
		r.QuoteAssetVolume,
		r.NumberOfTrades,
		r.TakerBuyBaseAssetVolume,
		r.TakerBuyQuoteAssetVolume,
		r.Ignore,
		r.Symbol, r.BaseCurrency, r.QuoteCurrency,
	}
}
