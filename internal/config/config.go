package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	S3       S3Config
	Catalog  CatalogConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Admin    AdminConfig
	Menu     MenuConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds the shared API key between the ordering service and the backend.
type AuthConfig struct {
	APIKey string
}

// S3Config holds AWS S3 configuration for catalog seed files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "catalog/")
}

// CatalogConfig holds the catalog adapter configuration.
type CatalogConfig struct {
	BaseURL         string
	Timeout         time.Duration
	RefreshInterval time.Duration
	SeedFiles       []string // gzipped JSON datasets, merged in order
}

// RedisConfig holds the session store configuration.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	StateTTL time.Duration
}

// KafkaConfig holds order event publishing configuration.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// AdminConfig holds the staff dashboard credentials.
type AdminConfig struct {
	Username   string
	Password   string
	SessionTTL time.Duration
}

// MenuConfig holds the customer ordering service configuration.
type MenuConfig struct {
	Port              int
	TableCount        int
	PublicURL         string
	OrderBackend      string // "http" or "demo"
	TableConfirmDelay time.Duration
	EstimatedMinutes  int
	PreparingAfter    time.Duration
	ServedAfter       time.Duration
	DefaultLanguage   string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "qrmenu"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Prefix:  getEnv("S3_PREFIX", "catalog/"),
		},
		Catalog: CatalogConfig{
			BaseURL:         getEnv("CATALOG_BASE_URL", "http://localhost:8080"),
			Timeout:         getEnvAsDuration("CATALOG_TIMEOUT", 5*time.Second),
			RefreshInterval: getEnvAsDuration("CATALOG_REFRESH_INTERVAL", time.Minute),
			SeedFiles:       getEnvAsList("CATALOG_SEED_FILES", nil),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			StateTTL: getEnvAsDuration("REDIS_STATE_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", false),
			Brokers: getEnvAsList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_TOPIC", "orders"),
		},
		Admin: AdminConfig{
			Username:   getEnv("ADMIN_USERNAME", "admin"),
			Password:   getEnv("ADMIN_PASSWORD", "admin123"),
			SessionTTL: getEnvAsDuration("ADMIN_SESSION_TTL", 30*time.Minute),
		},
		Menu: MenuConfig{
			Port:              getEnvAsInt("MENU_SERVER_PORT", 3000),
			TableCount:        getEnvAsInt("MENU_TABLE_COUNT", 20),
			PublicURL:         getEnv("MENU_PUBLIC_URL", "http://localhost:3000"),
			OrderBackend:      getEnv("MENU_ORDER_BACKEND", "http"),
			TableConfirmDelay: getEnvAsDuration("MENU_TABLE_CONFIRM_DELAY", 800*time.Millisecond),
			EstimatedMinutes:  getEnvAsInt("ORDER_ESTIMATED_MINUTES", 15),
			PreparingAfter:    getEnvAsDuration("MENU_STATUS_PREPARING_AFTER", 3*time.Second),
			ServedAfter:       getEnvAsDuration("MENU_STATUS_SERVED_AFTER", 8*time.Second),
			DefaultLanguage:   getEnv("MENU_DEFAULT_LANGUAGE", "tr"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if _, err := url.ParseRequestURI(c.Catalog.BaseURL); err != nil {
		return fmt.Errorf("invalid catalog base URL: %s", c.Catalog.BaseURL)
	}

	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog timeout must be positive")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required when redis is enabled")
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("kafka topic is required when kafka is enabled")
		}
	}

	if c.Admin.Username == "" || c.Admin.Password == "" {
		return fmt.Errorf("admin username and password are required")
	}

	if c.Admin.SessionTTL <= 0 {
		return fmt.Errorf("admin session TTL must be positive")
	}

	if c.Menu.Port < 1 || c.Menu.Port > 65535 {
		return fmt.Errorf("invalid menu server port: %d", c.Menu.Port)
	}

	if c.Menu.TableCount < 1 {
		return fmt.Errorf("menu table count must be at least 1")
	}

	if c.Menu.OrderBackend != "http" && c.Menu.OrderBackend != "demo" {
		return fmt.Errorf("invalid order backend: %s (must be http or demo)", c.Menu.OrderBackend)
	}

	if c.Menu.DefaultLanguage != "tr" && c.Menu.DefaultLanguage != "en" {
		return fmt.Errorf("invalid default language: %s (must be tr or en)", c.Menu.DefaultLanguage)
	}

	if c.Menu.PreparingAfter <= 0 || c.Menu.ServedAfter <= c.Menu.PreparingAfter {
		return fmt.Errorf("status delays must be positive and served must come after preparing")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the ordering service address, bound to the same host as the backend.
func (c *MenuConfig) Address(host string) string {
	return fmt.Sprintf("%s:%d", host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList retrieves a comma-separated environment variable or returns a default value.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
