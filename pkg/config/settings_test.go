package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GRADUATION_THRESHOLD", "MAX_FILE_SIZE", "ALLOWED_ORIGINS", "SOLANA_RPC_TIMEOUT", "RABBITMQ_HOST", "DB_AUTO_MIGRATE"} {
		t.Setenv(key, "")
	}

	s := Load()
	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, 69000.0, s.GraduationThreshold)
	assert.Equal(t, int64(5*1024*1024), s.MaxFileSize)
	assert.Equal(t, 10*time.Second, s.SolanaRPCTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, s.AllowedOrigins)
	assert.True(t, s.DBAutoMigrate)
	assert.False(t, s.RabbitMQEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GRADUATION_THRESHOLD", "1000.5")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("SOLANA_RPC_TIMEOUT", "3s")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("RABBITMQ_HOST", "mq")
	t.Setenv("API_BASE_URL", "https://api.example/")

	s := Load()
	assert.Equal(t, 1000.5, s.GraduationThreshold)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, s.AllowedOrigins)
	assert.Equal(t, 3*time.Second, s.SolanaRPCTimeout)
	assert.False(t, s.DBAutoMigrate)
	assert.True(t, s.RabbitMQEnabled())
	assert.Equal(t, "amqp://guest:guest@mq:5672/", s.RabbitMQURL())
	assert.Equal(t, "https://api.example", s.APIBaseURL)
}

func TestLoadIgnoresMalformed(t *testing.T) {
	t.Setenv("GRADUATION_THRESHOLD", "lots")
	t.Setenv("RATE_LIMIT_BURST", "x")

	s := Load()
	assert.Equal(t, 69000.0, s.GraduationThreshold)
	assert.Equal(t, 40, s.RateLimitBurst)
}
