package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings is the process configuration, read once at startup and passed down.
type Settings struct {
	Port     string
	GinMode  string
	LogLevel string
	// LogFormat is "text" or "json".
	LogFormat string

	DBDriver      string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	DBSQLitePath  string
	DBAutoMigrate bool
	MigrationsDir string

	SolanaRPCURL     string
	SolanaRPCTimeout time.Duration

	GraduationThreshold float64
	PlatformName        string
	APIBaseURL          string

	UploadDir   string
	MaxFileSize int64
	IPFSAPI     string

	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string
	EventsQueue      string

	RedisURL          string
	AnalyticsCacheTTL time.Duration

	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int

	VerifySchedule   string
	VerifyStaleAfter time.Duration
	VerifyBatch      int
}

// Load reads .env (when present) and the environment.
func Load() Settings {
	_ = godotenv.Load()

	return Settings{
		Port:      getEnv("PORT", "8080"),
		GinMode:   os.Getenv("GIN_MODE"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "launchpad"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBSQLitePath:  getEnv("DB_SQLITE_PATH", "launchpad.db"),
		DBAutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),

		SolanaRPCURL:     getEnv("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
		SolanaRPCTimeout: getEnvDuration("SOLANA_RPC_TIMEOUT", 10*time.Second),

		GraduationThreshold: getEnvFloat("GRADUATION_THRESHOLD", 69000),
		PlatformName:        getEnv("PLATFORM_NAME", "PumpFun"),
		APIBaseURL:          strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),

		UploadDir:   getEnv("UPLOAD_DIR", "static/images"),
		MaxFileSize: getEnvInt64("MAX_FILE_SIZE", 5*1024*1024),
		IPFSAPI:     os.Getenv("IPFS_API"),

		RabbitMQHost:     os.Getenv("RABBITMQ_HOST"),
		RabbitMQPort:     getEnv("RABBITMQ_PORT", "5672"),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),
		EventsQueue:      getEnv("EVENTS_QUEUE", "token_lifecycle"),

		RedisURL:          os.Getenv("REDIS_URL"),
		AnalyticsCacheTTL: getEnvDuration("ANALYTICS_CACHE_TTL", 30*time.Second),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: int(getEnvInt64("RATE_LIMIT_BURST", 40)),

		VerifySchedule:   getEnv("VERIFY_SCHEDULE", "0 */10 * * * *"),
		VerifyStaleAfter: getEnvDuration("VERIFY_STALE_AFTER", time.Hour),
		VerifyBatch:      int(getEnvInt64("VERIFY_BATCH", 50)),
	}
}

// RabbitMQEnabled reports whether a broker is configured.
func (s Settings) RabbitMQEnabled() bool {
	return s.RabbitMQHost != ""
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvInt64(key string, defaultVal int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
