package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Engine   EngineConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	DatasetDir         string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	Provider        string // "anthropic" or "fake"
	Model           string
	AnthropicAPIKey string
}

type EngineConfig struct {
	TableCacheCapacity   int
	ContextWindowEntries int
	QueryTimeout         time.Duration
	RetryDelay           time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			DatasetDir:         getEnv("DATASET_DIR", "uploads/datasets"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			Provider:        getEnv("LLM_PROVIDER", "anthropic"),
			Model:           getEnv("LLM_MODEL", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		},
		Engine: EngineConfig{
			TableCacheCapacity:   getEnvAsInt("TABLE_CACHE_CAPACITY", 32),
			ContextWindowEntries: getEnvAsInt("CONTEXT_WINDOW_ENTRIES", 10),
			QueryTimeout:         getEnvAsDuration("QUERY_TIMEOUT", 60*time.Second),
			RetryDelay:           getEnvAsDuration("QUERY_RETRY_DELAY", 2*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
