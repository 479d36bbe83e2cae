package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// defaultBcryptCost matches the cost used for hashes already stored in users.password_hash.
const defaultBcryptCost = 12

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Auth
	JWTSecret  string
	BcryptCost int

	// AdminAPIKey guards changes to the shared category list. Empty disables them.
	AdminAPIKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		JWTSecret:   getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),
	}

	costStr := getEnv("BCRYPT_COST", strconv.Itoa(defaultBcryptCost))
	cost, err := strconv.Atoi(costStr)
	if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		log.Printf("Warning: invalid BCRYPT_COST value '%s', falling back to %d\n", costStr, defaultBcryptCost)
		cost = defaultBcryptCost
	}
	config.BcryptCost = cost

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
