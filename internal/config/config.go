package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	NATS     NATSConfig
	Server   ServerConfig
	Capacity CapacityConfig
	CORS     CORSConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

type NATSConfig struct {
	URL             string
	Stream          string
	Durable         string
	ConsumerEnabled bool
	Required        bool
}

type ServerConfig struct {
	Port    string
	GinMode string
}

type CapacityConfig struct {
	// APIKey guards POST /capacity/update. Empty means writes are only
	// allowed outside release mode.
	APIKey string
	// StaleThreshold is the maximum age of a hospital's last capacity
	// update before it is excluded from recommendations.
	StaleThreshold time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("PGHOST", "localhost"),
			Port:     getEnv("PGPORT", "5432"),
			User:     getEnv("PGUSER", "postgres"),
			Password: getEnv("PGPASSWORD", "postgres"),
			Database: getEnv("PGDATABASE", "hospital_capacity"),
			SSLMode:  getEnv("PGSSLMODE", "disable"),
		},
		NATS: NATSConfig{
			URL:             getEnv("NATS_URL", "nats://localhost:4222"),
			Stream:          getEnv("NATS_STREAM", "events"),
			Durable:         getEnv("NATS_DURABLE", "hospital-capacity"),
			ConsumerEnabled: parseBool(getEnv("ENABLE_NATS_CONSUMER", "true")),
			Required:        parseBool(getEnv("NATS_REQUIRED", "false")),
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8093"),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		Capacity: CapacityConfig{
			APIKey:         getEnv("CAPACITY_API_KEY", ""),
			StaleThreshold: parseDuration(getEnv("CAPACITY_STALE_THRESHOLD", "10m")),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		},
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		fmt.Printf("Warning: Invalid duration format '%s', using default\n", s)
		return 10 * time.Minute
	}
	return duration
}

func parseBool(s string) bool {
	value, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return value
}

func parseOrigins(s string) []string {
	if s == "" {
		return []string{}
	}

	origins := []string{}
	current := ""
	for _, char := range s {
		if char == ',' {
			if current != "" {
				origins = append(origins, current)
				current = ""
			}
		} else {
			current += string(char)
		}
	}
	if current != "" {
		origins = append(origins, current)
	}

	return origins
}
