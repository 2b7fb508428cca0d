package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Session SessionConfig
	SMTP    SMTPConfig
	Keys    APIKeys
	Ai      AIConfig
	Chat    ChatConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type SessionConfig struct {
	Store      string // "memory" or "redis"
	Secret     string
	CookieName string
	TTL        time.Duration
}

type SMTPConfig struct {
	Host           string
	Port           int
	SenderEmail    string
	SenderPassword string
	RecipientEmail string
}

// Configured reports whether every field needed to send mail is present.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Port > 0 && c.SenderEmail != "" && c.RecipientEmail != ""
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	LLMProvider    string // "gemini" or "ollama"
	LLMModel       string
	OllamaBaseURL  string
	Temperature    float64
	ShortMaxTokens int
	RequestTimeout time.Duration
}

type ChatConfig struct {
	CharDelay time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Session: SessionConfig{
			Store:      getEnv("SESSION_STORE", "memory"),
			Secret:     getEnv("SESSION_SECRET", "change-me"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "pm_session"),
			TTL:        getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:           getEnv("SMTP_SERVER", ""),
			Port:           getEnvAsInt("SMTP_PORT", 587),
			SenderEmail:    getEnv("SMTP_SENDER_EMAIL", ""),
			SenderPassword: getEnv("SMTP_SENDER_PASSWORD", ""),
			RecipientEmail: getEnv("SMTP_RECIPIENT_EMAIL", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:       getEnv("LLM_MODEL", "gemini-1.5-flash"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Temperature:    getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			ShortMaxTokens: getEnvAsInt("LLM_SHORT_MAX_TOKENS", 150),
			RequestTimeout: getEnvAsDuration("LLM_REQUEST_TIMEOUT", 120*time.Second),
		},
		Chat: ChatConfig{
			CharDelay: getEnvAsDuration("CHAT_CHAR_DELAY", 10*time.Millisecond),
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

// getEnvAsDuration accepts Go durations ("10ms", "2h").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
