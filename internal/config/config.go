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
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Embedding EmbeddingConfig
	Matching  MatchingConfig
	Worker    WorkerConfig
	Storage   StorageConfig
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
	URL              string
	APIKey           string
	CollectionPrefix string
	SearchTimeout    time.Duration
}

type EmbeddingConfig struct {
	APIKey    string
	Dimension int
}

type MatchingConfig struct {
	DefaultLimit       int
	MaxLimit           int
	ScoringConcurrency int
	NotableThreshold   float64
	PartialMatchWeight float64
	LocationRadiusKm   float64
}

type WorkerConfig struct {
	Concurrency    int
	PollInterval   time.Duration
	FeedbackWindow time.Duration
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
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
			DBName:   getEnv("DB_NAME", "talent_matching"),
		},
		Qdrant: QdrantConfig{
			URL:              getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:           getEnv("QDRANT_API_KEY", ""),
			CollectionPrefix: getEnv("QDRANT_COLLECTION_PREFIX", "talent_matching"),
			SearchTimeout:    getEnvAsDuration("QDRANT_SEARCH_TIMEOUT", "5s"),
		},
		Embedding: EmbeddingConfig{
			APIKey:    getEnv("GEMINI_API_KEY", ""),
			Dimension: getEnvAsInt("EMBEDDING_DIMENSION", 3072),
		},
		Matching: MatchingConfig{
			DefaultLimit:       getEnvAsInt("MATCH_DEFAULT_LIMIT", 20),
			MaxLimit:           getEnvAsInt("MATCH_MAX_LIMIT", 100),
			ScoringConcurrency: getEnvAsInt("SCORING_CONCURRENCY", 8),
			NotableThreshold:   getEnvAsFloat("NOTABLE_THRESHOLD", 0.7),
			PartialMatchWeight: getEnvAsFloat("PARTIAL_MATCH_WEIGHT", 0.5),
			LocationRadiusKm:   getEnvAsFloat("LOCATION_RADIUS_KM", 500),
		},
		Worker: WorkerConfig{
			Concurrency:    getEnvAsInt("TUNER_CONCURRENCY", 2),
			PollInterval:   getEnvAsDuration("TUNER_POLL_INTERVAL", "5m"),
			FeedbackWindow: getEnvAsDuration("TUNER_FEEDBACK_WINDOW", "168h"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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
