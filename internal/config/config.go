package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// minSecretLength is the shortest accepted HS256 signing secret.
const minSecretLength = 16

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "landtax")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("JWT_TTL", "24h")

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			TokenTTL:  v.GetDuration("JWT_TTL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be a positive duration")
	}

	return nil
}

// Validate checks the database section on its own. The migrate command
// needs a database but no HTTP or token settings.
func (d DatabaseConfig) Validate() error {
	if d.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if d.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if d.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if d.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if d.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if d.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if d.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if d.PoolMin > d.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}
	return nil
}

// LoadDatabase reads only the database section.
func LoadDatabase() (DatabaseConfig, error) {
	v := viper.New()
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "landtax")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 1)
	v.SetDefault("DB_POOL_MAX", 2)
	v.AutomaticEnv()

	db := DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		Name:     v.GetString("DB_NAME"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		PoolMin:  v.GetInt("DB_POOL_MIN"),
		PoolMax:  v.GetInt("DB_POOL_MAX"),
	}
	if err := db.Validate(); err != nil {
		return DatabaseConfig{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return db, nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
