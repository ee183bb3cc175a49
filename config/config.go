package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Config is read from an optional YAML file, then overridden by the
// environment (and .env).
type Config struct {
	Port              string        `yaml:"port"`
	MongoURI          string        `yaml:"mongo_uri"`
	MongoDB           string        `yaml:"mongo_db"`
	MongoTransactions bool          `yaml:"mongo_transactions"`
	JWTSecret         string        `yaml:"jwt_secret"`
	JWTIssuer         string        `yaml:"jwt_issuer"`
	JWTTTL            time.Duration `yaml:"jwt_ttl"`
	DailyPostLimit    int           `yaml:"daily_post_limit"`
	QuotaTimezone     string        `yaml:"quota_timezone"`
	QuotaBackend      string        `yaml:"quota_backend"`
	PostgresURI       string        `yaml:"postgres_uri"`
	DynamoTable       string        `yaml:"dynamodb_table"`
	AWSRegion         string        `yaml:"aws_region"`
	DynamoEndpoint    string        `yaml:"dynamodb_endpoint"`
	CORSOrigins       string        `yaml:"cors_origins"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

func Defaults() Config {
	return Config{
		Port:           "8000",
		MongoURI:       "mongodb://localhost:27017",
		MongoDB:        "community",
		JWTIssuer:      "community-backend",
		JWTTTL:         24 * time.Hour,
		DailyPostLimit: 2,
		QuotaTimezone:  "Europe/Istanbul",
		QuotaBackend:   "mongodb",
		DynamoTable:    "post_quota",
		AWSRegion:      "eu-central-1",
		CORSOrigins:    "*",
		RequestTimeout: 5 * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Warnf("config: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Warnf("config: %s=%q is not a boolean, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		log.Warnf("config: %s=%q is not a duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}

// LoadFile overlays the YAML file at path onto cfg.
func LoadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	}

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DB", cfg.MongoDB)
	cfg.MongoTransactions = getEnvBool("MONGO_TRANSACTIONS", cfg.MongoTransactions)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTIssuer = getEnv("JWT_ISSUER", cfg.JWTIssuer)
	cfg.JWTTTL = getEnvDuration("JWT_TTL", cfg.JWTTTL)
	cfg.DailyPostLimit = getEnvInt("DAILY_POST_LIMIT", cfg.DailyPostLimit)
	cfg.QuotaTimezone = getEnv("QUOTA_TIMEZONE", cfg.QuotaTimezone)
	cfg.QuotaBackend = strings.ToLower(getEnv("QUOTA_BACKEND", cfg.QuotaBackend))
	cfg.PostgresURI = getEnv("POSTGRES_URI", cfg.PostgresURI)
	cfg.DynamoTable = getEnv("DYNAMODB_TABLE", cfg.DynamoTable)
	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.DynamoEndpoint = getEnv("DYNAMODB_ENDPOINT", cfg.DynamoEndpoint)
	cfg.CORSOrigins = getEnv("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.DailyPostLimit < 1 {
		return fmt.Errorf("DAILY_POST_LIMIT must be at least 1, got %d", c.DailyPostLimit)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	switch c.QuotaBackend {
	case "mongodb", "memory", "dynamodb":
	case "postgresql", "postgres":
		if c.PostgresURI == "" {
			return fmt.Errorf("POSTGRES_URI is required for the postgresql quota backend")
		}
	default:
		return fmt.Errorf("unknown QUOTA_BACKEND %q", c.QuotaBackend)
	}
	return nil
}

// ClampLimit applies the page size bounds to a client-supplied limit.
func ClampLimit(n int) int64 {
	if n <= 0 {
		return DefaultPageLimit
	}
	if n > MaxPageLimit {
		return MaxPageLimit
	}
	return int64(n)
}
