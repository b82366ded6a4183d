package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Redis          RedisConfig          `toml:"redis"`
	RabbitMQ       RabbitMQConfig       `toml:"rabbitmq"`
	PaymentGateway PaymentGatewayConfig `toml:"payment_gateway"`
	Booking        BookingConfig        `toml:"booking"`
	Scheduler      SchedulerConfig      `toml:"scheduler"`
	Discounts      DiscountsConfig      `toml:"discounts"`
}

// ServerConfig параметры HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig параметры подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig параметры логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig параметры Prometheus метрик
type MetricsConfig struct {
	Enabled           bool   `toml:"enabled"`
	ServiceName       string `toml:"service_name"`
	Path              string `toml:"path"`
	PoolStatsInterval int    `toml:"pool_stats_interval"` // секунды
}

// RedisConfig параметры блокировок ваучеров
// При Enabled = false используются блокировки внутри процесса
type RedisConfig struct {
	Enabled          bool   `toml:"enabled"`
	Addr             string `toml:"addr"`
	Password         string `toml:"password"`
	DB               int    `toml:"db"`
	LockPrefix       string `toml:"lock_prefix"`
	LockTTL          int    `toml:"lock_ttl"`           // секунды
	LockRetryDelayMs int    `toml:"lock_retry_delay_ms"` // миллисекунды
}

// RabbitMQConfig параметры публикации событий бронирований
type RabbitMQConfig struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	Queue          string `toml:"queue"`
	PublishTimeout int    `toml:"publish_timeout"` // секунды
}

// PaymentGatewayConfig параметры платёжной системы
type PaymentGatewayConfig struct {
	BaseURL   string `toml:"base_url"`
	ShopID    string `toml:"shop_id"`
	SecretKey string `toml:"secret_key"`
	Currency  string `toml:"currency"`
	ReturnURL string `toml:"return_url"`
	Timeout   int    `toml:"timeout"` // секунды
}

// BookingConfig параметры бронирования
type BookingConfig struct {
	LifetimeMinutes    int `toml:"lifetime_minutes"`
	CapacityMaxRetries int `toml:"capacity_max_retries"`
	VoucherLockWait    int `toml:"voucher_lock_wait"` // секунды ожидания блокировки ваучера
}

// SchedulerConfig интервалы фоновых задач в секундах
type SchedulerConfig struct {
	ExpiryEnabled       bool `toml:"expiry_enabled"`
	ExpiryInterval      int  `toml:"expiry_interval"`
	PaymentPollEnabled  bool `toml:"payment_poll_enabled"`
	PaymentPollInterval int  `toml:"payment_poll_interval"`
	CompletionEnabled   bool `toml:"completion_enabled"`
	CompletionInterval  int  `toml:"completion_interval"`
}

// DiscountsConfig параметры групповой скидки и скидки постоянного клиента
type DiscountsConfig struct {
	GroupEnabled   bool            `toml:"group_enabled"`
	GroupMinPlaces int             `toml:"group_min_places"`
	GroupPercent   decimal.Decimal `toml:"group_percent"`
	GroupAbsolute  decimal.Decimal `toml:"group_absolute"`

	RepeatedEnabled  bool            `toml:"repeated_enabled"`
	RepeatedPercent  decimal.Decimal `toml:"repeated_percent"`
	RepeatedAbsolute decimal.Decimal `toml:"repeated_absolute"`
}

// Переменные окружения, перекрывающие секреты из файла
const (
	EnvDatabasePassword      = "DB_PASSWORD"
	EnvRedisPassword         = "REDIS_PASSWORD"
	EnvRabbitMQURL           = "RABBITMQ_URL"
	EnvPaymentGatewayShopID  = "PAYMENT_GATEWAY_SHOP_ID"
	EnvPaymentGatewaySecret  = "PAYMENT_GATEWAY_SECRET_KEY"
	EnvPaymentGatewayBaseURL = "PAYMENT_GATEWAY_BASE_URL"
)

// Load загружает конфигурацию из TOML файла
// Порядок: значения по умолчанию, файл, переменные окружения (.env подхватывается, если есть)
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			ServiceName:       "walk_booking_service",
			Path:              "/metrics",
			PoolStatsInterval: 15,
		},
		Redis: RedisConfig{
			Addr:             "localhost:6379",
			LockPrefix:       "walk-booking:",
			LockTTL:          10,
			LockRetryDelayMs: 50,
		},
		RabbitMQ: RabbitMQConfig{
			Queue:          "booking_events",
			PublishTimeout: 5,
		},
		PaymentGateway: PaymentGatewayConfig{
			Currency: "RUB",
			Timeout:  10,
		},
		Booking: BookingConfig{
			LifetimeMinutes:    15,
			CapacityMaxRetries: 10,
			VoucherLockWait:    5,
		},
		Scheduler: SchedulerConfig{
			ExpiryEnabled:       true,
			ExpiryInterval:      5,
			PaymentPollEnabled:  true,
			PaymentPollInterval: 10,
			CompletionEnabled:   true,
			CompletionInterval:  60,
		},
	}
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		EnvDatabasePassword:      &c.Database.Password,
		EnvRedisPassword:         &c.Redis.Password,
		EnvRabbitMQURL:           &c.RabbitMQ.URL,
		EnvPaymentGatewayShopID:  &c.PaymentGateway.ShopID,
		EnvPaymentGatewaySecret:  &c.PaymentGateway.SecretKey,
		EnvPaymentGatewayBaseURL: &c.PaymentGateway.BaseURL,
	}
	for key, field := range overrides {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			*field = value
		}
	}
}

// Validate проверяет согласованность конфигурации
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in 1..65535, got %d", c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return errors.New("database.host, database.dbname and database.user are required")
	}
	if c.PaymentGateway.BaseURL == "" {
		return errors.New("payment_gateway.base_url is required")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis is enabled")
	}
	if c.RabbitMQ.Enabled && (c.RabbitMQ.URL == "" || c.RabbitMQ.Queue == "") {
		return errors.New("rabbitmq.url and rabbitmq.queue are required when rabbitmq is enabled")
	}
	if c.Booking.LifetimeMinutes <= 0 {
		return fmt.Errorf("booking.lifetime_minutes must be positive, got %d", c.Booking.LifetimeMinutes)
	}

	d := c.Discounts
	if d.GroupEnabled && d.GroupMinPlaces <= 0 {
		return fmt.Errorf("discounts.group_min_places must be positive, got %d", d.GroupMinPlaces)
	}
	for name, pct := range map[string]decimal.Decimal{
		"discounts.group_percent":    d.GroupPercent,
		"discounts.repeated_percent": d.RepeatedPercent,
	} {
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("%s must be in 0..100, got %s", name, pct)
		}
	}
	for name, abs := range map[string]decimal.Decimal{
		"discounts.group_absolute":    d.GroupAbsolute,
		"discounts.repeated_absolute": d.RepeatedAbsolute,
	} {
		if abs.IsNegative() {
			return fmt.Errorf("%s must not be negative, got %s", name, abs)
		}
	}

	return nil
}

// Seconds переводит значение в секундах из конфигурации в time.Duration
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
