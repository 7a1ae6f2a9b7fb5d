package di

import (
	"context"
	"fmt"
	"time"

	"FxPull/internal/domain/repository"
	"FxPull/internal/handler/api"
	internalrepo "FxPull/internal/repository"
	"FxPull/internal/service/binance"
	"FxPull/internal/service/ratelimit"
	"FxPull/internal/usecase"
	"FxPull/pkg/cache"
	pkgch "FxPull/pkg/clickhouse"
	"FxPull/pkg/config"
	xhttp "FxPull/pkg/http"
	pkgkafka "FxPull/pkg/kafka"
	applogger "FxPull/pkg/logger"
	"FxPull/pkg/metrics"
	"FxPull/pkg/server"
)

// ProvideLogger builds the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default
// registry, which also carries the Kafka producer collectors.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideLimiter creates the token bucket shared by every exchange request.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Binance.RequestInterval, cfg.Binance.Burst)
}

// ProvideBinanceClient creates the exchange REST client.
func ProvideBinanceClient(cfg *config.Config, limiter *ratelimit.Limiter, m repository.Metrics, l *applogger.Logger) *binance.Client {
	return binance.New(cfg.Binance.BaseURL, limiter,
		binance.WithPageTimeout(cfg.Binance.PageTimeout),
		binance.WithMetadataTimeout(cfg.Binance.MetadataTimeout),
		binance.WithMetadataRetries(cfg.Binance.MetadataRetries),
		binance.WithMetrics(m),
		binance.WithLogger(l),
	)
}

// ProvideCache uses Redis for exchange metadata when enabled, else an in-process cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	var (
		c   cache.Service
		err error
	)
	if cfg.Redis.Enabled {
		c, err = cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Redis.Addr),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
			cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdle, cfg.Redis.PoolTimeout),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		l.Info("redis cache connected", applogger.String("addr", cfg.Redis.Addr))
	} else {
		c = cache.NewMemoryCache(
			cache.WithMemoryMaxSize(64),
			cache.WithMemoryCleanup(cfg.Redis.MetadataTTL),
		)
	}

	cleanup := func() {
		if err := c.Close(); err != nil {
			l.Warn("cache close error", applogger.Error(err))
		}
	}
	return c, cleanup, nil
}

// ProvideSymbolResolver creates the symbol resolver over the exchange metadata.
func ProvideSymbolResolver(cfg *config.Config, client *binance.Client, c cache.Service, m repository.Metrics, l *applogger.Logger) *usecase.SymbolResolver {
	return usecase.NewSymbolResolver(client, c, cfg.Redis.MetadataTTL, m, l)
}

// ProvidePaginator creates the kline paginator.
func ProvidePaginator(cfg *config.Config, client *binance.Client, m repository.Metrics, l *applogger.Logger) *usecase.Paginator {
	return usecase.NewPaginator(client, usecase.PaginatorConfig{
		PageSize: cfg.Binance.PageSize,
		PageSpan: cfg.Binance.PageSpan,
		MaxPages: cfg.Binance.MaxPages,
	}, m, l)
}

// ProvideClickHouseClient connects and creates the rates table. Nil when disabled.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns, cfg.ClickHouse.ConnMaxLifetime),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, pkgch.HourlyRatesSchema(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse ready",
		applogger.String("database", cfg.ClickHouse.Database),
		applogger.String("table", cfg.ClickHouse.Table),
	)

	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideKafkaProducer creates a Kafka producer. Nil when disabled.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.BatchSize, cfg.Kafka.BatchBytes, cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	l.Info("kafka producer ready",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("topic", cfg.Kafka.Topic),
	)

	cleanup := func() {
		if err := producer.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	return producer, cleanup, nil
}

// ProvideClickHouseRateStore returns nil without a ClickHouse client.
func ProvideClickHouseRateStore(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) *internalrepo.ClickHouseRateStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewClickHouseRateStore(ch, cfg.ClickHouse.Table, l)
}

// ProvideSinks always writes files and adds ClickHouse and Kafka when enabled.
func ProvideSinks(
	cfg *config.Config,
	chStore *internalrepo.ClickHouseRateStore,
	producer *pkgkafka.Producer,
	l *applogger.Logger,
) []repository.RateSink {
	sinks := []repository.RateSink{
		internalrepo.NewFileSink(cfg.Output.Dir, cfg.Output.CombinedFile, l),
	}
	if chStore != nil {
		sinks = append(sinks, chStore)
	}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaRateSink(producer, cfg.Kafka.Topic, cfg.Kafka.BatchSize))
	}
	return sinks
}

// ProvideRateReader reads from ClickHouse when it is a sink, else from the last run.
func ProvideRateReader(chStore *internalrepo.ClickHouseRateStore, reports *usecase.ReportStore) repository.RateReader {
	if chStore != nil {
		return chStore
	}
	return reports
}

// ProvideLedger creates the CSV ledger reader.
func ProvideLedger(cfg *config.Config) repository.LedgerReader {
	return internalrepo.NewCSVLedger(cfg.Ledger.Path, cfg.Ledger.CurrencyColumn, cfg.Ledger.TimestampColumn)
}

// ProvideBackfiller creates the per-currency orchestrator.
func ProvideBackfiller(
	cfg *config.Config,
	resolver *usecase.SymbolResolver,
	paginator *usecase.Paginator,
	sinks []repository.RateSink,
	reports *usecase.ReportStore,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Backfiller {
	return usecase.NewBackfiller(resolver, paginator, sinks, reports, cfg.Backfill.Workers, m, l)
}

// ProvideHTTPServer creates the ops server. Nil unless server.enabled.
// /healthz also pings ClickHouse when it is in use.
func ProvideHTTPServer(cfg *config.Config, h *api.RatesHandler, ch *pkgch.Client, l *applogger.Logger) *xhttp.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if ch != nil {
		opts = append(opts, xhttp.WithHealthCheck("clickhouse", ch.Health))
	}
	return xhttp.NewServer(h, l, opts...)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	ledger repository.LedgerReader,
	backfiller *usecase.Backfiller,
	srv *xhttp.Server,
) *server.App {
	return server.New(cfg, l, ledger, backfiller, srv)
}
