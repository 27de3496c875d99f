package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Fees struct {
		TermsPerYear int `yaml:"terms_per_year" env:"FEES_TERMS_PER_YEAR"`
	} `yaml:"fees"`

	Wallet struct {
		MaxTopup            float64 `yaml:"max_topup" env:"WALLET_MAX_TOPUP"`
		DefaultDailyLimit   float64 `yaml:"default_daily_limit" env:"WALLET_DEFAULT_DAILY_LIMIT"`
		DefaultLowBalance   float64 `yaml:"default_low_balance" env:"WALLET_DEFAULT_LOW_BALANCE"`
		BulkTopupMaxWallets int     `yaml:"bulk_topup_max_wallets" env:"WALLET_BULK_TOPUP_MAX"`
	} `yaml:"wallet"`

	Client struct {
		BaseURL string `yaml:"base_url" env:"CLIENT_BASE_URL"`
		Timeout string `yaml:"timeout" env:"CLIENT_TIMEOUT"`
		Token   string `yaml:"token" env:"CLIENT_TOKEN"`
	} `yaml:"client"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file in the working directory is loaded first when present.
func LoadConfig(configPath string) (*Config, error) {
	// Missing .env is normal outside local development
	_ = godotenv.Load()

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "schooladmin"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.Issuer = "schooladmin"
	config.JWT.AccessTokenExpiration = "24h"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Fees.TermsPerYear = 3

	config.Wallet.MaxTopup = 100000
	config.Wallet.DefaultDailyLimit = 500
	config.Wallet.DefaultLowBalance = 50
	config.Wallet.BulkTopupMaxWallets = 500

	config.Client.BaseURL = "http://localhost:8080/api/v1"
	config.Client.Timeout = "15s"
}

// validateConfig checks settings shared by the server and the CLI
func validateConfig(config *Config) error {
	if config.Fees.TermsPerYear <= 0 || config.Fees.TermsPerYear > 12 {
		return fmt.Errorf("fees.terms_per_year must be between 1 and 12, got %d", config.Fees.TermsPerYear)
	}

	if config.Wallet.MaxTopup <= 0 {
		return fmt.Errorf("wallet.max_topup must be positive")
	}

	if _, err := time.ParseDuration(config.Client.Timeout); err != nil {
		return fmt.Errorf("invalid client timeout format: %w", err)
	}

	return nil
}

// ValidateServer ensures the settings only the HTTP server needs are present.
func (c *Config) ValidateServer() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(c.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database conn_max_lifetime format: %w", err)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt gets an environment variable as an integer or returns a default value
func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
