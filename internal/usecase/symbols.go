package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"FxPull/internal/domain/models"
	drepo "FxPull/internal/domain/repository"
	"FxPull/pkg/cache"
	applogger "FxPull/pkg/logger"
)

// Resolution splits ledger currencies by whether the exchange can price them.
type Resolution struct {
	Mapping     models.SymbolMapping
	Supported   []string
	Unsupported []string
}

// SymbolResolver turns exchange metadata into a currency → symbol mapping.
type SymbolResolver struct {
	source  drepo.SymbolSource
	cache   cache.Service
	ttl     time.Duration
	metrics drepo.Metrics
	l       *applogger.Logger
}

// NewSymbolResolver creates a resolver. c may be nil to always hit the exchange.
func NewSymbolResolver(source drepo.SymbolSource, c cache.Service, ttl time.Duration, metrics drepo.Metrics, l *applogger.Logger) *SymbolResolver {
	if l == nil {
		l = applogger.Nop()
	}
	return &SymbolResolver{source: source, cache: c, ttl: ttl, metrics: metrics, l: l}
}

// BuildMapping keeps pairs that are trading against quote, keyed by base asset.
// The quote itself always maps to its self symbol.
func BuildMapping(pairs []models.TradingPair, quote string) models.SymbolMapping {
	m := make(models.SymbolMapping, len(pairs)+1)
	for _, p := range pairs {
		if p.Status == models.StatusTrading && p.QuoteAsset == quote {
			m[p.BaseAsset] = p.Symbol
		}
	}
	m[quote] = models.SelfSymbol(quote)
	return m
}

// Mapping returns the symbol mapping for quote. A metadata failure is logged
// and yields a mapping that only knows the quote currency.
func (r *SymbolResolver) Mapping(ctx context.Context, quote string) models.SymbolMapping {
	key := cache.GenerateKeyWithParams("exchange_info", quote)

	if r.cache != nil {
		var cached models.SymbolMapping
		err := r.cache.Get(ctx, key, &cached)
		switch {
		case err == nil && len(cached) > 0:
			r.l.Debug("symbol mapping from cache", applogger.Int("symbols", len(cached)))
			return cached
		case err != nil && !errors.Is(err, cache.ErrCacheMiss):
			r.l.Warn("symbol cache read failed", applogger.Error(err))
		}
	}

	pairs, err := r.source.TradingPairs(ctx)
	if err != nil {
		r.l.Error("exchange metadata unavailable, no pairs supported", applogger.Error(err))
		if r.metrics != nil {
			r.metrics.RecordError("metadata")
		}
		return BuildMapping(nil, quote)
	}

	m := BuildMapping(pairs, quote)
	r.l.Info("exchange metadata loaded",
		applogger.Int("pairs", len(pairs)),
		applogger.Int("tradable", len(m)-1),
		applogger.String("quote", quote),
	)

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, m, r.ttl); err != nil {
			r.l.Warn("symbol cache write failed", applogger.Error(err))
		}
	}
	return m
}

// Resolve maps every currency and reports which ones can be backfilled.
func (r *SymbolResolver) Resolve(ctx context.Context, currencies []string, quote string) Resolution {
	m := r.Mapping(ctx, quote)

	res := Resolution{Mapping: m}
	for _, c := range currencies {
		if _, ok := m.Lookup(c); ok {
			res.Supported = append(res.Supported, c)
		} else {
			res.Unsupported = append(res.Unsupported, c)
		}
	}
	sort.Strings(res.Supported)
	sort.Strings(res.Unsupported)

	r.l.Info("currencies resolved",
		applogger.Int("supported", len(res.Supported)),
		applogger.Int("unsupported", len(res.Unsupported)),
		applogger.Strings("skipped", res.Unsupported),
	)
	return res
}
