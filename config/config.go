package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel         string `env:"LOG_LEVEL"`
	Postgres         Postgres
	Redis            Redis
	HTTP             HTTP
	API              API
	Cache            Cache
	Jobs             Jobs
	Telegram         Telegram
	GoogleDrive      GoogleDrive
	StocksPerPage    int `env:"STOCKS_PER_PAGE"`
	DividendsPerPage int `env:"DIVIDENDS_PER_PAGE"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type HTTP struct {
	Port            int           `env:"HTTP_PORT"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"`
}

type API struct {
	Debug   bool          `env:"API_DEBUG"`
	Timeout time.Duration `env:"API_TIMEOUT"`
	Fmp     FmpApi
}

type FmpApi struct {
	Url          string  `env:"FMP_API_URL"`
	ApiKey       string  `env:"FMP_API_KEY"`
	RateLimitRPS float64 `env:"FMP_API_RATE_LIMIT_RPS"`
}

type Cache struct {
	StockDetailExpiration time.Duration `env:"CACHE_STOCK_DETAIL_EXPIRATION"`
	ListingExpiration     time.Duration `env:"CACHE_LISTING_EXPIRATION"`
}

type Jobs struct {
	UpdateStocksCrontab    string `env:"UPDATE_STOCKS_CRONTAB"`
	UpdateDividendsCrontab string `env:"UPDATE_DIVIDENDS_CRONTAB"`
	DividendReportCrontab  string `env:"DIVIDEND_REPORT_CRONTAB"`
}

type Telegram struct {
	Enabled   bool   `env:"TELEGRAM_NOTIFIER_ENABLED"`
	Token     string `env:"TELEGRAM_TOKEN" envDefault:""`
	OpsChatID int64  `env:"TELEGRAM_OPS_CHAT_ID" envDefault:"0"`
}

type GoogleDrive struct {
	Enabled         bool          `env:"GOOGLE_DRIVE_ENABLED"`
	CredentialsFile string        `env:"GOOGLE_DRIVE_CREDENTIALS_FILE" envDefault:""`
	FileTTL         time.Duration `env:"GOOGLE_DRIVE_FILE_TTL" envDefault:"720h"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
