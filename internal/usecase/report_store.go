package usecase

import (
	"context"
	"sync"
	"time"

	"FxPull/internal/domain/models"
)

// ReportStore keeps the last run's report and series in memory. It doubles
// as the rate reader when no database sink is configured.
type ReportStore struct {
	mu     sync.RWMutex
	report *models.BackfillReport
	series map[string]*models.Series
}

func NewReportStore() *ReportStore {
	return &ReportStore{series: map[string]*models.Series{}}
}

// Save replaces the stored run. Nil series are skipped.
func (s *ReportStore) Save(report *models.BackfillReport, series []*models.Series) {
	byCurrency := make(map[string]*models.Series, len(series))
	for _, ser := range series {
		if ser != nil {
			byCurrency[ser.Base] = ser
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
	s.series = byCurrency
}

// Latest returns the last saved report.
func (s *ReportStore) Latest() (*models.BackfillReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report, s.report != nil
}

// QueryRates returns up to limit rows of currency with open time in [from, to).
func (s *ReportStore) QueryRates(_ context.Context, currency string, from, to time.Time, limit int) ([]models.RateRow, error) {
	s.mu.RLock()
	ser, ok := s.series[currency]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var out []models.RateRow
	for _, row := range ser.Rows() {
		open := models.UnixMilli(row.OpenTime)
		if open.Before(from) || !open.Before(to) {
			continue
		}
		out = append(out, row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
