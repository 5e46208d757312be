package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string

	// Patron configuration
	PatronIDLength int
	BorrowLimit    int

	// Circulation configuration
	LoanPeriod  time.Duration
	DailyFine   decimal.Decimal
	MaxFine     decimal.Decimal

	// Payment gateway configuration
	PaymentMaxAmount decimal.Decimal
	RefundMaxAmount  decimal.Decimal
	GatewayLatency   time.Duration

	// Monitoring
	EnableMetrics bool
	MetricsPort   string
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),

		// Patrons
		PatronIDLength: getEnvAsInt("PATRON_ID_LENGTH", 6),
		BorrowLimit:    getEnvAsInt("BORROW_LIMIT", 5),

		// Circulation
		LoanPeriod: getEnvAsDuration("LOAN_PERIOD", "336h"), // 14 days
		DailyFine:  getEnvAsDecimal("DAILY_FINE", "0.50"),
		MaxFine:    getEnvAsDecimal("MAX_FINE_PER_BOOK", "15.00"),

		// Payment gateway
		PaymentMaxAmount: getEnvAsDecimal("PAYMENT_MAX_AMOUNT", "2000"),
		RefundMaxAmount:  getEnvAsDecimal("REFUND_MAX_AMOUNT", "15.00"),
		GatewayLatency:   getEnvAsDuration("GATEWAY_LATENCY", "100ms"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:   getEnv("METRICS_PORT", "9090"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsDecimal(key string, defaultValue string) decimal.Decimal {
	valueStr := getEnv(key, defaultValue)
	if value, err := decimal.NewFromString(valueStr); err == nil {
		return value
	}
	value, _ := decimal.NewFromString(defaultValue)
	return value
}
