package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "gemini", cfg.Ai.LLMProvider)
	assert.Equal(t, "gemini-1.5-flash", cfg.Ai.LLMModel)
	assert.Equal(t, 0.7, cfg.Ai.Temperature)
	assert.Equal(t, 150, cfg.Ai.ShortMaxTokens)
	assert.Equal(t, 10*time.Millisecond, cfg.Chat.CharDelay)
	assert.False(t, cfg.SMTP.Configured())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SMTP_SERVER", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_SENDER_EMAIL", "bot@example.com")
	t.Setenv("SMTP_RECIPIENT_EMAIL", "pm@example.com")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("CHAT_CHAR_DELAY", "0s")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.Configured())
	assert.Equal(t, 0.2, cfg.Ai.Temperature)
	assert.Equal(t, time.Duration(0), cfg.Chat.CharDelay)
	assert.True(t, cfg.App.OtelEnabled)
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")
	t.Setenv("SESSION_TTL", "forever")

	cfg := Load()

	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
}
