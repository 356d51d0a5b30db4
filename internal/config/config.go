package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds connection settings for the session memory store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds broker settings for the analysis event producer.
type KafkaConfig struct {
	Brokers string // comma-separated list
	Topic   string
}

// GeminiConfig holds settings for the generative text endpoint.
type GeminiConfig struct {
	APIKey       string
	Model        string
	VisionModel  string
	BaseURL      string // override for testing; empty means the public endpoint
	TimeoutSec   int
	SystemPrompt string
}

// LimitsConfig caps upload sizes and context lengths.
type LimitsConfig struct {
	MaxUploadBytes  int64
	MaxContextChars int
	MaxHistoryTurns int
	MaxMemoryItems  int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Gemini   GeminiConfig
	Limits   LimitsConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getEnv("KAFKA_BROKERS", ""),
			Topic:   getEnv("KAFKA_TOPIC", "document-analysis"),
		},
		Gemini: GeminiConfig{
			APIKey:       getEnv("GEMINI_API_KEY", ""),
			Model:        getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
			VisionModel:  getEnv("GEMINI_VISION_MODEL", "gemini-2.5-pro"),
			BaseURL:      getEnv("GEMINI_BASE_URL", ""),
			TimeoutSec:   getEnvInt("GEMINI_TIMEOUT_SEC", 90),
			SystemPrompt: getEnv("SYSTEM_PROMPT", ""),
		},
		Limits: LimitsConfig{
			MaxUploadBytes:  getEnvInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
			MaxContextChars: getEnvInt("MAX_CONTEXT_CHARS", 2000),
			MaxHistoryTurns: getEnvInt("MAX_HISTORY_TURNS", 10),
			MaxMemoryItems:  getEnvInt("MAX_MEMORY_ITEMS", 10),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
