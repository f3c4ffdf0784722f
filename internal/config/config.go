package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

var ErrMissingSetting = errors.New("missing required setting")

type Config struct {
	AppEnv   string
	AppPort  string
	LogLevel string

	BackendURL  string
	HTTPTimeout time.Duration
	SecretKey   string

	// InternalKey lifts trusted callers into the internal rate tier.
	InternalKey    string
	AllowedOrigins []string

	StorageDriver string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	KafkaBrokers []string
	KafkaTopic   string

	// CurrencyRates overrides entries of the static conversion table,
	// keyed by ISO currency code.
	CurrencyRates map[string]string
	DeliveryFee   string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         os.Getenv("APP_ENV"),
		AppPort:        getEnv("APP_PORT", "8080"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		BackendURL:     strings.TrimRight(getEnv("BACKEND_URL", "http://127.0.0.1:3000"), "/"),
		HTTPTimeout:    getDuration("HTTP_TIMEOUT", 15*time.Second),
		SecretKey:      os.Getenv("SECRET_KEY"),
		InternalKey:    os.Getenv("INTERNAL_SECRET_KEY"),
		AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getInt("REDIS_DB", 0),
		DBHost:         os.Getenv("DB_HOST"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		KafkaBrokers:   splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "storefront.orders"),
		CurrencyRates:  parseRates(os.Getenv("CURRENCY_RATES")),
		DeliveryFee:    getEnv("DELIVERY_FEE", "75"),
	}

	return cfg
}

// Validate reports settings the selected storage driver cannot run without.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory:
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: REDIS_ADDR", ErrMissingSetting)
		}
	case StoragePostgres:
		if c.DBHost == "" || c.DBName == "" {
			return fmt.Errorf("%w: DB_HOST and DB_NAME", ErrMissingSetting)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	if c.BackendURL == "" {
		return fmt.Errorf("%w: BACKEND_URL", ErrMissingSetting)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseRates reads "USD:0.055,GBP:0.043" pairs. Malformed pairs are skipped.
func parseRates(s string) map[string]string {
	rates := make(map[string]string)
	for _, pair := range splitList(s) {
		code, rate, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		code = strings.ToUpper(strings.TrimSpace(code))
		rate = strings.TrimSpace(rate)
		if code == "" || rate == "" {
			continue
		}
		rates[code] = rate
	}
	return rates
}
