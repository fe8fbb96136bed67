package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Oracle   OracleConfig
	Worker   WorkerConfig
	Scoring  ScoringConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	// Enabled controls supplemental grounding retrieval. The deterministic
	// corpus filter works without it.
	Enabled bool
}

type OracleConfig struct {
	APIKey         string
	Model          string
	EmbedModel     string
	MaxAttempts    int
	RetryBaseDelay time.Duration
	RequestTimeout time.Duration
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
}

// ScoringConfig holds the per-severity score deductions. The exact numbers
// are a policy choice, not a derived property; they only have to be applied
// consistently.
type ScoringConfig struct {
	CriticalWeight int
	HighWeight     int
	MediumWeight   int
	LowWeight      int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "complyforge"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "framework_docs"),
			Enabled:    getEnvAsBool("QDRANT_ENABLED", true),
		},
		Oracle: OracleConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("ORACLE_MODEL", "gemini-2.5-flash"),
			EmbedModel:     getEnv("ORACLE_EMBED_MODEL", "text-embedding-004"),
			MaxAttempts:    getEnvAsInt("ORACLE_MAX_ATTEMPTS", 3),
			RetryBaseDelay: getEnvAsDuration("ORACLE_RETRY_BASE_DELAY", "1s"),
			RequestTimeout: getEnvAsDuration("ORACLE_REQUEST_TIMEOUT", "120s"),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 3),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
		},
		Scoring: ScoringConfig{
			CriticalWeight: getEnvAsInt("SCORE_WEIGHT_CRITICAL", 15),
			HighWeight:     getEnvAsInt("SCORE_WEIGHT_HIGH", 8),
			MediumWeight:   getEnvAsInt("SCORE_WEIGHT_MEDIUM", 4),
			LowWeight:      getEnvAsInt("SCORE_WEIGHT_LOW", 1),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
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
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
