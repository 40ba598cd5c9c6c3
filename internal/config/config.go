package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Assistant AssistantConfig
	Knowledge KnowledgeConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EventsTopic        string
	OtelEnabled        bool
	OtelEndpoint       string
}

type AssistantConfig struct {
	IntentsFile        string
	ClassifierProvider string // "pattern", "ollama", "huggingface" or "none"
	ClassifierMinScore float64
	LLMTimeout         time.Duration
	OllamaBaseURL      string
	OllamaModel        string
	HuggingFaceBaseURL string
	HuggingFaceModel   string
	HuggingFaceAPIKey  string
}

// LLMEndpoint returns base URL, model and api key for the configured LLM classifier.
func (a AssistantConfig) LLMEndpoint() (baseURL, model, apiKey string) {
	if a.ClassifierProvider == "huggingface" {
		return a.HuggingFaceBaseURL, a.HuggingFaceModel, a.HuggingFaceAPIKey
	}
	return a.OllamaBaseURL, a.OllamaModel, ""
}

type KnowledgeConfig struct {
	Timeout            time.Duration
	CacheTTL           time.Duration
	WikipediaBaseURL   string
	WikipediaSentences int
	SearchBaseURL      string
	SearchRegion       string
	SearchSafety       string
	SearchMaxResults   int
	SearchRatePerSec   float64
	UserAgent          string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/assistant.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			EventsTopic:        getEnv("EVENTS_TOPIC", "assistant.turns"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Assistant: AssistantConfig{
			IntentsFile:        getEnv("INTENTS_FILE", "data/intents.json"),
			ClassifierProvider: getEnv("CLASSIFIER_PROVIDER", "pattern"),
			ClassifierMinScore: getEnvAsFloat("CLASSIFIER_MIN_SCORE", 0.2),
			LLMTimeout:         getEnvAsDuration("LLM_TIMEOUT", 10*time.Second),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_MODEL", "llama3"),
			HuggingFaceBaseURL: getEnv("HUGGINGFACE_BASE_URL", "https://router.huggingface.co/v1"),
			HuggingFaceModel:   getEnv("HUGGINGFACE_MODEL", "meta-llama/Llama-3.1-8B-Instruct"),
			HuggingFaceAPIKey:  getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Knowledge: KnowledgeConfig{
			Timeout:            getEnvAsDuration("KNOWLEDGE_TIMEOUT", 5*time.Second),
			CacheTTL:           getEnvAsDuration("KNOWLEDGE_CACHE_TTL", 10*time.Minute),
			WikipediaBaseURL:   getEnv("WIKIPEDIA_BASE_URL", "https://en.wikipedia.org"),
			WikipediaSentences: getEnvAsInt("WIKIPEDIA_SENTENCES", 2),
			SearchBaseURL:      getEnv("SEARCH_BASE_URL", "https://html.duckduckgo.com"),
			SearchRegion:       getEnv("SEARCH_REGION", "us-en"),
			SearchSafety:       getEnv("SEARCH_SAFETY", "moderate"),
			SearchMaxResults:   getEnvAsInt("SEARCH_MAX_RESULTS", 3),
			SearchRatePerSec:   getEnvAsFloat("SEARCH_RATE_PER_SECOND", 1),
			UserAgent:          getEnv("HTTP_USER_AGENT", "voice-assistant-be/1.0 (+https://github.com/voice-assistant-be)"),
		},
	}
}

// IsProduction reports whether GO_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("5s") or plain seconds ("5").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
