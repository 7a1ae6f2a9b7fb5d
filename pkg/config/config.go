package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string           `yaml:"environment" default:"development" validate:"required"`
	Log         LogConfig        `yaml:"log"`
	Ledger      LedgerConfig     `yaml:"ledger"`
	Binance     BinanceConfig    `yaml:"binance"`
	Backfill    BackfillConfig   `yaml:"backfill"`
	Output      OutputConfig     `yaml:"output"`
	Server      ServerConfig     `yaml:"server"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	Redis       RedisConfig      `yaml:"redis"`
}

type LogConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format     string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output     string `yaml:"output" default:"stdout" validate:"required"`
	MaxSizeMB  int    `yaml:"max_size_mb" default:"100" validate:"gte=1"`
	MaxBackups int    `yaml:"max_backups" default:"3" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" default:"28" validate:"gte=0"`
}

type LedgerConfig struct {
	Path            string `yaml:"path" default:"./transactions.csv" validate:"required"`
	CurrencyColumn  string `yaml:"currency_column" default:"destination_currency" validate:"required"`
	TimestampColumn string `yaml:"timestamp_column" default:"created_at" validate:"required"`
}

type BinanceConfig struct {
	BaseURL         string        `yaml:"base_url" default:"https://api.binance.com" validate:"required,url"`
	PageSize        int           `yaml:"page_size" default:"1000" validate:"gte=1,lte=1000"`
	PageSpan        time.Duration `yaml:"page_span" default:"720h" validate:"gt=0"`
	MaxPages        int           `yaml:"max_pages" default:"50" validate:"gte=1"`
	RequestInterval time.Duration `yaml:"request_interval" default:"100ms" validate:"gt=0"`
	Burst           int           `yaml:"burst" default:"1" validate:"eq=1"`
	PageTimeout     time.Duration `yaml:"page_timeout" default:"30s" validate:"gt=0"`
	MetadataTimeout time.Duration `yaml:"metadata_timeout" default:"10s" validate:"gt=0"`
	MetadataRetries int           `yaml:"metadata_retries" default:"3" validate:"gte=0"`
}

type BackfillConfig struct {
	Quote   string `yaml:"quote" default:"USDT" validate:"required,uppercase"`
	Workers int    `yaml:"workers" default:"1" validate:"gte=1,lte=32"`
}

type OutputConfig struct {
	Dir          string `yaml:"dir" default:"output" validate:"required"`
	CombinedFile string `yaml:"combined_file" default:"rates.csv" validate:"required"`
}

type ServerConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

type ClickHouseConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host" default:"localhost" validate:"required_if=Enabled true"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"fxpull" validate:"required_if=Enabled true"`
	Table            string        `yaml:"table" default:"hourly_rates" validate:"required_if=Enabled true"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	MaxOpenConns     int           `yaml:"max_open_conns" default:"10" validate:"gte=1"`
	MaxIdleConns     int           `yaml:"max_idle_conns" default:"5" validate:"gte=0"`
	ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime" default:"5m"`
}

type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers" validate:"required_if=Enabled true"`
	Topic        string        `yaml:"topic" default:"fxpull.hourly_rates" validate:"required_if=Enabled true"`
	RequiredAcks int           `yaml:"required_acks" default:"-1"`
	Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	BatchSize    int           `yaml:"batch_size" default:"500"`
	BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
	Linger       time.Duration `yaml:"linger" default:"1s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
}

type RedisConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Addr        string        `yaml:"addr" default:"localhost:6379" validate:"required_if=Enabled true"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	Prefix      string        `yaml:"prefix" default:"fxpull"`
	MetadataTTL time.Duration `yaml:"metadata_ttl" default:"1h"`
	PoolSize    int           `yaml:"pool_size" default:"4" validate:"gte=1"`
	MinIdle     int           `yaml:"min_idle_conns" default:"1" validate:"gte=0"`
	PoolTimeout time.Duration `yaml:"pool_timeout" default:"5s"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse applies defaults, decodes YAML over them and validates the result.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LEDGER_PATH"); v != "" {
		c.Ledger.Path = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		c.Binance.BaseURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("BACKFILL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse BACKFILL_WORKERS %q: %w", v, err)
		}
		c.Backfill.Workers = n
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers must list at least one broker when kafka is enabled")
	}
	if c.Binance.PageSpan < time.Hour {
		return fmt.Errorf("binance.page_span must cover at least one 1h candle, got %s", c.Binance.PageSpan)
	}
	return nil
}
