package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"FxPull/internal/domain/models"
	applogger "FxPull/pkg/logger"
)

const (
	rawRatesDir = "raw_rates"
	// csvTimeLayout renders candle boundaries in the combined table.
	csvTimeLayout = "2006-01-02 15:04:05.000"
)

// FileSink writes one JSONL file per currency and, on Flush, a combined CSV
// of every series written during the run.
type FileSink struct {
	dir      string
	combined string
	l        *applogger.Logger

	mu      sync.Mutex
	written map[string]string // currency -> JSONL path
}

func NewFileSink(dir, combinedFile string, l *applogger.Logger) *FileSink {
	if l == nil {
		l = applogger.Nop()
	}
	return &FileSink{
		dir:      dir,
		combined: filepath.Join(dir, combinedFile),
		l:        l,
		written:  map[string]string{},
	}
}

func (s *FileSink) Name() string { return "file" }

// SeriesPath is where the JSONL rows of currency land.
func (s *FileSink) SeriesPath(currency string) string {
	return filepath.Join(s.dir, rawRatesDir, currency+"_rates.json")
}

// CombinedPath is the combined CSV location.
func (s *FileSink) CombinedPath() string { return s.combined }

func (s *FileSink) WriteSeries(_ context.Context, series *models.Series) error {
	path := s.SeriesPath(series.Base)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	err := writeAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for _, row := range series.Rows() {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	s.mu.Lock()
	s.written[series.Base] = path
	s.mu.Unlock()

	s.l.Info("series saved",
		applogger.String("currency", series.Base),
		applogger.Int("rows", series.Len()),
		applogger.String("path", path),
	)
	return nil
}

// Flush rebuilds the combined CSV from this run's JSONL files, ordered by currency.
func (s *FileSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	currencies := make([]string, 0, len(s.written))
	for c := range s.written {
		currencies = append(currencies, c)
	}
	paths := make(map[string]string, len(s.written))
	for c, p := range s.written {
		paths[c] = p
	}
	s.mu.Unlock()

	if len(currencies) == 0 {
		s.l.Warn("no rate files to combine")
		return nil
	}
	sort.Strings(currencies)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	total := 0
	err := writeAtomic(s.combined, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(models.RateColumns); err != nil {
			return err
		}
		for _, c := range currencies {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := appendJSONL(cw, paths[c])
			if err != nil {
				return fmt.Errorf("combine %s: %w", c, err)
			}
			total += n
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", s.combined, err)
	}

	s.l.Info("combined rates saved",
		applogger.Int("rows", total),
		applogger.Int("currencies", len(currencies)),
		applogger.String("path", s.combined),
	)
	return nil
}

func appendJSONL(cw *csv.Writer, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	dec := json.NewDecoder(bufio.NewReader(f))
	for {
		var row models.RateRow
		if err := dec.Decode(&row); errors.Is(err, io.EOF) {
			return n, nil
		} else if err != nil {
			return n, err
		}
		if err := cw.Write(csvRecord(row)); err != nil {
			return n, err
		}
		n++
	}
}

// csvRecord renders row in RateColumns order.
func csvRecord(r models.RateRow) []string {
	return []string{
		formatMillis(r.OpenTime),
		formatFloat(r.Open),
		formatFloat(r.High),
		formatFloat(r.Low),
		formatFloat(r.Close),
		r.Volume,
		formatMillis(r.CloseTime),
		r.QuoteAssetVolume,
		strconv.FormatInt(r.NumberOfTrades, 10),
		r.TakerBuyBaseAssetVolume,
		r.TakerBuyQuoteAssetVolume,
		r.Ignore,
		r.Symbol,
		r.BaseCurrency,
		r.QuoteCurrency,
	}
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(csvTimeLayout)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// writeAtomic writes through a temp file in the same directory and renames it into place.
func writeAtomic(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := fill(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
