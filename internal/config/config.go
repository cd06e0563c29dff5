package config

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Backing store (remote Postgres)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Remote-analysis service
	AnalysisBaseURL string
	AnalysisTimeout time.Duration

	// Session state
	StateDir string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Coaching
	DailyGoal string // decimal currency value
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Backing store
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "fincoach"),
		DBPassword: getEnv("DB_PASSWORD", "fincoach"),
		DBName:     getEnv("DB_NAME", "fincoach"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Remote-analysis service
		AnalysisBaseURL: getEnv("ANALYSIS_BASE_URL", "http://localhost:8000/api"),

		// Session state
		StateDir: getEnv("STATE_DIR", defaultStateDir()),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Coaching
		DailyGoal: getEnv("DAILY_GOAL", "300"),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	// Parse analysis request timeout
	toStr := getEnv("ANALYSIS_TIMEOUT", "30s")
	toDur, err := time.ParseDuration(toStr)
	if err != nil {
		log.Printf("Warning: invalid ANALYSIS_TIMEOUT value '%s', falling back to 30s\n", toStr)
		toDur = 30 * time.Second
	}
	config.AnalysisTimeout = toDur

	return config, nil
}

// defaultStateDir returns the per-user directory for durable session state.
func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fincoach"
	}
	return filepath.Join(home, ".fincoach")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
