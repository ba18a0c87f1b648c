package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Cart storage backends.
const (
	CartStorageMemory   = "memory"
	CartStorageRedis    = "redis"
	CartStorageDynamoDB = "dynamodb"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	RunLocal          bool   `mapstructure:"RUN_LOCAL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Cart persistence.
	CartStorage   string        `mapstructure:"CART_STORAGE"`
	CartTable     string        `mapstructure:"CART_TABLE"`
	CartTTL       time.Duration `mapstructure:"CART_TTL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`

	// SessionIdleTimeout drops untouched sessions (cached carts and open
	// checkouts) from process memory.
	SessionIdleTimeout time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`

	// Booking service.
	BookingsTable    string        `mapstructure:"BOOKINGS_TABLE"`
	IdempotencyTable string        `mapstructure:"IDEMPOTENCY_TABLE"`
	QueueURL         string        `mapstructure:"BOOKINGS_QUEUE_URL"`
	IdempotencyTTL   time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	BookingAPIURL    string        `mapstructure:"BOOKING_API_URL"`
	BookingTimeout   time.Duration `mapstructure:"BOOKING_API_TIMEOUT"`
	MetricsNamespace string        `mapstructure:"METRICS_NAMESPACE"`

	// LocalSQSBody is the record body the worker replays when RunLocal is set.
	LocalSQSBody string `mapstructure:"LOCAL_SQS_BODY"`
}

var errUnknownCartStorage = errors.New("unknown cart storage backend")

// Load reads config.yaml (if present) from . or ./config and overlays
// environment variables on top of the defaults below.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("RUN_LOCAL", false)
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("CART_STORAGE", CartStorageMemory)
	v.SetDefault("CART_TABLE", "carts")
	v.SetDefault("CART_TTL", "720h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_IDLE_TIMEOUT", "30m")
	v.SetDefault("BOOKINGS_TABLE", "bookings")
	v.SetDefault("IDEMPOTENCY_TABLE", "idempotency")
	v.SetDefault("BOOKINGS_QUEUE_URL", "")
	v.SetDefault("IDEMPOTENCY_TTL", "48h")
	v.SetDefault("BOOKING_API_URL", "http://localhost:8080")
	v.SetDefault("BOOKING_API_TIMEOUT", "10s")
	v.SetDefault("METRICS_NAMESPACE", "SalonBookings")
	v.SetDefault("LOCAL_SQS_BODY", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	switch cfg.CartStorage {
	case CartStorageMemory, CartStorageRedis, CartStorageDynamoDB:
	default:
		return Config{}, fmt.Errorf("%w: %q", errUnknownCartStorage, cfg.CartStorage)
	}
	return cfg, nil
}

// IsProduction checks if the environment is production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
