package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	RedisURL string

	ListingsAPIURL string
	ListingsAPIKey string
	PullCacheTTLh  int

	BaseTrainingPath string
	AccumulatedPath  string
	ReferencePath    string
	ModelPath        string
	PredictionsDir   string
	ThresholdsPath   string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	SMTPHost       string
	SMTPPort       string
	SenderEmail    string
	SenderPassword string
	Recipients     []string

	MetricsPort   string
	SearchPageURL string
	ChromeBin     string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "example"),
		PostgresDB:       getEnv("POSTGRES_DB", "apartment_monitoring"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		ListingsAPIURL: getEnv("LISTINGS_API_URL", ""),
		ListingsAPIKey: getEnv("LISTINGS_API_KEY", ""),
		PullCacheTTLh:  getEnvInt("PULL_CACHE_TTL_HOURS", 48),

		BaseTrainingPath: getEnv("BASE_TRAINING_PATH", "./data/training/training_base.csv"),
		AccumulatedPath:  getEnv("ACCUMULATED_PATH", "./data/training/training_accumulated.csv"),
		ReferencePath:    getEnv("REFERENCE_PATH", "./data/reference/reference_data.csv"),
		ModelPath:        getEnv("MODEL_PATH", "./data/models/pipeline_model.json"),
		PredictionsDir:   getEnv("PREDICTIONS_DIR", "./output/predictions"),
		ThresholdsPath:   getEnv("THRESHOLDS_PATH", "./config/thresholds.yaml"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SenderEmail:    getEnv("SENDER_EMAIL", ""),
		SenderPassword: getEnv("SENDER_PASSWORD", ""),
		Recipients:     getEnvList("RECIPIENT_EMAILS"),

		MetricsPort:   getEnv("METRICS_PORT", "9090"),
		SearchPageURL: getEnv("SEARCH_PAGE_URL", ""),
		ChromeBin:     getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string for the metrics database.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
