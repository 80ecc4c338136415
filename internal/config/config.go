package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	EnableWebsocket bool

	APIKeyRequired bool
	APIKeys        []string

	DBPath string

	JWTSecret string

	// Public endpoint rate limiting (registration, check-in, check-out).
	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: no .env file found")
	}

	config := &Config{
		Port: getEnv("PORT", "8080"),

		EnableWebsocket: getBoolEnv("ENABLE_WEBSOCKET", true),

		APIKeyRequired: getBoolEnv("API_KEY_REQUIRED", false),
		APIKeys:        getStringSliceEnv("API_KEYS", []string{}),

		DBPath: getEnv("DB_PATH", "gymgate.db"),

		JWTSecret: getEnv("JWT_SECRET", "default-gymgate-jwt-secret-change-me"),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 10),
	}

	return config
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getBoolEnv(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return boolValue
}

func getIntEnv(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return intValue
}

func getFloatEnv(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return floatValue
}

func getStringSliceEnv(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	return strings.Split(value, ",")
}
