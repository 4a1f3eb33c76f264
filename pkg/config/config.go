package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Client is the CLI configuration
type Client struct {
	APIURL         string
	CredentialFile string
	RedisAddr      string
	RedisPassword  string
	RedisProfile   string
	Timeout        time.Duration
	LogLevel       string
	Development    bool
}

// Sandbox is the local API server configuration
type Sandbox struct {
	Addr          string
	BasePath      string
	DatabaseURL   string
	SessionMaxAge time.Duration
	AdminEmail    string
	AdminPassword string
	AuthRateLimit float64
	AuthBurst     int
	LogLevel      string
	Development   bool
}

// loadDotEnv reads .env when present; the environment always wins.
// It reports whether a file was loaded.
func loadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

func LoadClient(files ...string) (Client, bool) {
	loaded := loadDotEnv(files...)

	return Client{
		APIURL:         getEnv("AGROMART_API_URL", "http://localhost:8000/api/v1"),
		CredentialFile: getEnv("AGROMART_CREDENTIAL_FILE", ""),
		RedisAddr:      getEnv("AGROMART_REDIS_ADDR", ""),
		RedisPassword:  getEnv("AGROMART_REDIS_PASSWORD", ""),
		RedisProfile:   getEnv("AGROMART_REDIS_PROFILE", "default"),
		Timeout:        getDuration("AGROMART_TIMEOUT", 15*time.Second),
		LogLevel:       getEnv("AGROMART_LOG_LEVEL", "warn"),
		Development:    getBool("AGROMART_DEV", false),
	}, loaded
}

func LoadSandbox(files ...string) (Sandbox, bool) {
	loaded := loadDotEnv(files...)

	return Sandbox{
		Addr:          getEnv("SANDBOX_ADDR", ":8000"),
		BasePath:      getEnv("SANDBOX_BASE_PATH", "/api/v1"),
		DatabaseURL:   getEnv("SANDBOX_DATABASE_URL", ""),
		SessionMaxAge: getDuration("SANDBOX_SESSION_MAX_AGE", 24*time.Hour),
		AdminEmail:    getEnv("SANDBOX_ADMIN_EMAIL", "admin@agromart.local"),
		AdminPassword: getEnv("SANDBOX_ADMIN_PASSWORD", ""),
		AuthRateLimit: getFloat("SANDBOX_AUTH_RATE", 1),
		AuthBurst:     getInt("SANDBOX_AUTH_BURST", 10),
		LogLevel:      getEnv("SANDBOX_LOG_LEVEL", "info"),
		Development:   getBool("SANDBOX_DEV", true),
	}, loaded
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil && i > 0 {
		return i
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f > 0 {
		return f
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}
