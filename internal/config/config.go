package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Env           string
	ServerAddr    string
	DataDir       string
	PublicDir     string
	AllowedOrigin string

	RateLimitForms     int
	RateLimitAuth      int
	RateLimitWindowSec int

	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int

	JWTSecret        string
	AccessTTLMinutes int

	BrevoAPIKey      string
	BrevoSenderEmail string
	BrevoSenderName  string
	BrevoSandbox     bool
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		ServerAddr:    getEnv("SERVER_ADDR", ":3000"),
		DataDir:       getEnv("DATA_DIR", "data"),
		PublicDir:     getEnv("PUBLIC_DIR", ""),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),

		RateLimitForms:     getEnvInt("RATE_LIMIT_FORMS", 10),
		RateLimitAuth:      getEnvInt("RATE_LIMIT_AUTH", 20),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 60),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		AccessTTLMinutes: getEnvInt("ACCESS_TTL_MINUTES", 60),

		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail: getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:  getEnv("BREVO_SENDER_NAME", ""),
		BrevoSandbox:     getEnv("BREVO_SANDBOX", "false") == "true",
	}

	return cfg, nil
}
