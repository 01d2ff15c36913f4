package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	// ExtraGemini holds optional additional Gemini keys for the key pool
	// (comma-separated in env). The pool caps these at 5.
	ExtraGemini []string
	GoogleMaps  string
	Geoapify    string
	EmbedTopic  string // Watermill topic for background re-embedding
}

type AIConfig struct {
	LLMModel           string // e.g. "gemini-2.5-flash"
	EmbeddingModel     string // e.g. "gemini-embedding-001"
	EmbeddingDimension int
	EmbeddingRPM       int // per-key requests per minute ceiling
	SearchWorkers      int // concurrent category searches
	DetailWorkers      int // concurrent detail fetches
	EmbedWorkers       int // concurrent embedding generations
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GEMINI_API_KEY", ""),
			ExtraGemini:  getEnvAsList("GEMINI_EXTRA_API_KEYS"),
			GoogleMaps:   getEnv("GOOGLE_MAPS_API_KEY", ""),
			Geoapify:     getEnv("GEOAPIFY_API_KEY", ""),
			EmbedTopic:   getEnv("EMBED_PLACE_CONTENT_TOPIC_NAME", "EMBED_PLACE_CONTENT"),
		},
		Ai: AIConfig{
			LLMModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbeddingModel:     getEnv("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 1536),
			EmbeddingRPM:       getEnvAsInt("EMBEDDING_RPM", 100),
			SearchWorkers:      getEnvAsInt("SEARCH_WORKERS", 3),
			DetailWorkers:      getEnvAsInt("DETAIL_WORKERS", 5),
			EmbedWorkers:       getEnvAsInt("EMBED_WORKERS", 5),
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

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
