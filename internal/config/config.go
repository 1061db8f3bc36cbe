package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB         DBConfig
	Server     ServerConfig
	Foursquare FoursquareConfig
	Geocoding  GeocodingConfig
	Completion CompletionConfig
	Importer   ImporterConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMemory:
		// Named shared-cache databases keep tests isolated from each other
		if c.Name != "" && c.Name != "findfun" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", c.Name)
		}
		return "file::memory:?cache=shared&_foreign_keys=on"
	case DBTypeSQLite:
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.Path)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// IsSQLite returns true for both the file and the in-memory SQLite backends
func (c DBConfig) IsSQLite() bool {
	return c.Type == DBTypeMemory || c.Type == DBTypeSQLite
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// FoursquareConfig holds settings for the places search API
type FoursquareConfig struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	Radius            int
	Limit             int
	DetailConcurrency int
	FetchDetails      bool
}

// GeocodingConfig holds settings for the geocoding API
type GeocodingConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// CompletionConfig holds settings for the chat completion API
type CompletionConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ImporterConfig holds settings for offline place imports
type ImporterConfig struct {
	File      string
	BatchSize int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", string(DBTypeSQLite)))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory && dbType != DBTypeSQLite {
		dbType = DBTypeSQLite
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Path:     getEnv("DB_PATH", "findfun.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "findfun"),
			Password: getEnv("DB_PASSWORD", "findfun_password"),
			Name:     getEnv("DB_NAME", "findfun"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Foursquare: FoursquareConfig{
			APIKey:            os.Getenv("FOURSQUARE_API_KEY"),
			BaseURL:           getEnv("FOURSQUARE_BASE_URL", "https://api.foursquare.com/v3"),
			Timeout:           time.Duration(getEnvAsInt("FOURSQUARE_TIMEOUT_SECONDS", 10)) * time.Second,
			Radius:            getEnvAsInt("FOURSQUARE_RADIUS", 1000),
			Limit:             getEnvAsInt("FOURSQUARE_LIMIT", 20),
			DetailConcurrency: getEnvAsInt("FOURSQUARE_DETAIL_CONCURRENCY", 4),
			FetchDetails:      getEnvAsBool("FOURSQUARE_FETCH_DETAILS", false),
		},
		Geocoding: GeocodingConfig{
			APIKey:  os.Getenv("GOOGLE_GEOCODING_API_KEY"),
			BaseURL: getEnv("GOOGLE_GEOCODING_BASE_URL", "https://maps.googleapis.com/maps/api/geocode/json"),
			Timeout: time.Duration(getEnvAsInt("GOOGLE_GEOCODING_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Completion: CompletionConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
		},
		Importer: ImporterConfig{
			File:      getEnv("IMPORT_FILE", "data/places.json"),
			BatchSize: getEnvAsInt("IMPORT_BATCH_SIZE", 100),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// SplitList splits a comma separated value, dropping blanks
func SplitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
