package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	DatabaseURL string

	SessionSecret  []byte
	SessionBackend string
	CookieSecure   bool

	RedisAddr        string
	RateLimitBackend string

	CORSOrigin     string
	CSRFEnabled    bool
	TrustedProxies []string

	CatalogBackend string
	ESURL          string
	ESUser         string
	ESPassword     string
	ESProductIndex string

	KafkaBrokers []string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	SESEndpoint        string
	SESVerifiedEmail   string

	NotifyWorkers int
	NotifyQueue   int
	NotifyTimeout time.Duration

	BcryptCost int
}

const (
	BackendMemory   = "memory"
	BackendDatabase = "database"
	BackendRedis    = "redis"
	BackendES       = "elasticsearch"
)

// Load reads .env when present and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		HTTPAddr: EnvDefault("HTTP_ADDR", ":3000"),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SessionSecret:  []byte(os.Getenv("SESSION_SECRET")),
		SessionBackend: EnvDefault("SESSION_BACKEND", BackendDatabase),
		CookieSecure:   EnvBoolDefault("COOKIE_SECURE", false),

		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RateLimitBackend: EnvDefault("RATE_LIMIT_BACKEND", BackendMemory),

		CORSOrigin:     EnvDefault("CORS_ORIGIN", "http://localhost:3000"),
		CSRFEnabled:    EnvBoolDefault("CSRF_ENABLED", false),
		TrustedProxies: CSV(os.Getenv("TRUSTED_PROXIES")),

		CatalogBackend: EnvDefault("CATALOG_BACKEND", BackendDatabase),
		ESURL:          os.Getenv("ES_URL"),
		ESUser:         os.Getenv("ES_USER"),
		ESPassword:     os.Getenv("ES_PASSWORD"),
		ESProductIndex: EnvDefault("ES_PRODUCT_INDEX", "product"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		AWSRegion:          EnvDefault("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SESEndpoint:        os.Getenv("SES_ENDPOINT"),
		SESVerifiedEmail:   os.Getenv("SES_VERIFIED_EMAIL"),

		NotifyWorkers: EnvIntDefault("NOTIFY_WORKERS", 2),
		NotifyQueue:   EnvIntDefault("NOTIFY_QUEUE", 256),
		NotifyTimeout: EnvDurationDefault("NOTIFY_TIMEOUT", 10*time.Second),

		BcryptCost: EnvIntDefault("BCRYPT_COST", 10),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
