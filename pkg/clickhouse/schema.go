package clickhouse

import "fmt"

// HourlyRatesSchema returns the DDL for the hourly rates table. Rows are
// deduplicated on (base_currency, open_time), so re-running a window replaces
// instead of duplicating.
func HourlyRatesSchema(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
    open_time                     DateTime64(3, 'UTC'),
    open                          Float64,
    high                          Float64,
    low                           Float64,
    close                         Float64,
    volume                        String,
    close_time                    DateTime64(3, 'UTC'),
    quote_asset_volume            String,
    number_of_trades              Int64,
    taker_buy_base_asset_volume   String,
    taker_buy_quote_asset_volume  String,
    ignore                        String,
    symbol                        LowCardinality(String),
    base_currency                 LowCardinality(String),
    quote_currency                LowCardinality(String),
    inserted_at                   DateTime DEFAULT now()
)
ENGINE = ReplacingMergeTree(inserted_at)
PARTITION BY toYYYYMM(open_time)
ORDER BY (base_currency, open_time)`, database, table),
	}
}
