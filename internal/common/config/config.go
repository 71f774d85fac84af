package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port          string
	Environment   string
	ReadTimeout   int
	WriteTimeout  int
	LogLevel      string
	SeedDemo      bool
	SessionTTL    time.Duration
	SweepInterval time.Duration
	SurfaceWidth  int
	SurfaceHeight int
	CORSOrigins   []string
	QuietPointer  bool
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения.
// Уже выставленные переменные окружения имеют приоритет над .env.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "3000"),
		Environment:   getEnv("ENV", "development"),
		ReadTimeout:   getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout:  getEnvAsInt("WRITE_TIMEOUT", 10),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		SeedDemo:      getEnvAsBool("SEED_DEMO", true),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", time.Hour),
		SweepInterval: getEnvAsDuration("SWEEP_INTERVAL", 5*time.Minute),
		SurfaceWidth:  getEnvAsInt("SURFACE_WIDTH", 800),
		SurfaceHeight: getEnvAsInt("SURFACE_HEIGHT", 600),
		CORSOrigins:   getEnvAsList("CORS_ORIGINS"),
		QuietPointer:  getEnvAsBool("QUIET_POINTER_LOGS", true),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
