package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string

	JWTSecret          string
	UserTokenExpiry    time.Duration
	AgentSessionExpiry time.Duration

	LogLevel string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	userExpiry, err := time.ParseDuration(getEnv("USER_TOKEN_EXPIRY", "168h"))
	if err != nil {
		userExpiry = 168 * time.Hour
	}

	// Agent session tokens default to 30 days.
	sessionExpiry, err := time.ParseDuration(getEnv("AGENT_SESSION_EXPIRY", "720h"))
	if err != nil {
		sessionExpiry = 720 * time.Hour
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:          getEnvOrPanic("JWT_SECRET"),
		UserTokenExpiry:    userExpiry,
		AgentSessionExpiry: sessionExpiry,

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvOrPanic(key string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		panic("required environment variable not set: " + key)
	}
	return value
}
