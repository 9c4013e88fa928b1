package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		// Set default values
		setDefaults()

		// Set up environment variable reading for overrides
		viper.SetEnvPrefix("TRANSCRIPT")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		// Load config from fixed location (cleaned for safety)
		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		// Try to read the config file
		if err := viper.ReadInConfig(); err != nil {
			// If the config file doesn't exist, just use defaults and env vars
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		// Validate the configuration
		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	if viper.GetString("database.path") == "" {
		fmt.Println("Warning: No local database path configured")
	}

	if err := validateSupabase(); err != nil {
		return err
	}

	// Auto-correct invalid retry settings
	if viper.GetInt("save.retry_attempts") < 0 {
		viper.Set("save.retry_attempts", 2)
	}
	if viper.GetDuration("save.retry_backoff") <= 0 {
		viper.Set("save.retry_backoff", time.Second)
	}
	if viper.GetDuration("retention.window") <= 0 {
		viper.Set("retention.window", 30*24*time.Hour)
	}

	return nil
}

// validateSupabase checks that remote store credentials are not placeholders
func validateSupabase() error {
	env := viper.GetString("environment")
	isProduction := env == "production" || env == "prod"

	placeholders := []string{
		"YOUR_KEY_HERE",
		"YOUR_SERVICE_KEY",
		"changeme",
		"CHANGEME",
		"",
	}

	serviceKey := viper.GetString("supabase.service_key")
	for _, placeholder := range placeholders {
		if serviceKey == placeholder {
			if isProduction {
				return fmt.Errorf("invalid Supabase service key: cannot use placeholder values in production")
			}
			fmt.Println("Warning: Supabase service key is using a placeholder value - remote saves will fall back to local storage")
			break
		}
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Save.RetryAttempts < 0 {
		c.Save.RetryAttempts = 2
	}
	if c.Save.RetryBackoff <= 0 {
		c.Save.RetryBackoff = time.Second
	}
	if c.Retention.Window <= 0 {
		c.Retention.Window = 30 * 24 * time.Hour
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Environment defaults
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Local fallback store defaults
	viper.SetDefault("database.path", "./data/transcripts.db")
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("database.max_idle_connections", 5)
	viper.SetDefault("database.connection_max_lifetime", 30*time.Minute)
	viper.SetDefault("database.verbose", false)

	// Remote store defaults
	viper.SetDefault("supabase.url", "")
	viper.SetDefault("supabase.anon_key", "")
	viper.SetDefault("supabase.service_key", "")
	viper.SetDefault("supabase.schema", "public")
	viper.SetDefault("supabase.timeout", 10*time.Second)

	// Persistence router defaults
	viper.SetDefault("save.retry_attempts", 2)
	viper.SetDefault("save.retry_backoff", 1*time.Second)

	// Cache defaults
	viper.SetDefault("cache.transcript_ttl", 5*time.Minute)

	// Retention defaults
	viper.SetDefault("retention.window", 30*24*time.Hour)
	viper.SetDefault("retention.sweep_interval", 1*time.Hour)

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.endpoints", map[string]int{
		"save":    10,
		"read":    20,
		"trash":   10,
		"default": 120,
	})

	// Security defaults
	viper.SetDefault("security.enable_cors", true)
	viper.SetDefault("security.cors_origins", []string{"*"})

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// Auth defaults
	viper.SetDefault("auth.jwks_url", "")
	viper.SetDefault("auth.dev_auth_enabled", false)
	viper.SetDefault("auth.dev_auth_token", "")
}
