package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/database"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Token formats
const (
	TokenFormatOpaque = "opaque"
	TokenFormatJWT    = "jwt"
)

// Storage drivers
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string   `json:"environment"`
	Port        int      `json:"port"`
	Host        string   `json:"host"`
	CORSOrigins []string `json:"cors_origins"`

	// Database configuration
	Database database.DatabaseConfig `json:"database"`

	// Logging configuration
	LogLevel string `json:"log_level"`

	// Security Configuration
	TokenFormat   string `json:"token_format"`
	TokenTTLHours int    `json:"token_ttl_hours"`
	JWTSecret     string `json:"jwt_secret"`

	// Storage configuration
	StorageDriver    string `json:"storage_driver"`
	UploadDir        string `json:"upload_dir"`
	StorageURLPrefix string `json:"storage_url_prefix"`
	MaxUploadKB      int    `json:"max_upload_kb"`
	S3Bucket         string `json:"s3_bucket"`
	S3Region         string `json:"s3_region"`
	S3Endpoint       string `json:"s3_endpoint"`
	S3AccessKey      string `json:"s3_access_key"`
	S3SecretKey      string `json:"s3_secret_key"`

	// Plant disease prediction service
	PredictionURL            string `json:"prediction_url"`
	PredictionTimeoutSeconds int    `json:"prediction_timeout_seconds"`
}

// IsDevelopment reports whether the service runs with APP_ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %d, Host: %s, CORSOrigins: %v, Database: %s, LogLevel: %s, "+
		"TokenFormat: %s, TokenTTLHours: %d, JWTSecret: [REDACTED], StorageDriver: %s, UploadDir: %s, "+
		"StorageURLPrefix: %s, MaxUploadKB: %d, S3Bucket: %s, S3Region: %s, S3Endpoint: %s, S3AccessKey: %s, "+
		"S3SecretKey: [REDACTED], PredictionURL: %s, PredictionTimeoutSeconds: %d}",
		c.Environment, c.Port, c.Host, c.CORSOrigins, c.Database.String(), c.LogLevel,
		c.TokenFormat, c.TokenTTLHours, c.StorageDriver, c.UploadDir,
		c.StorageURLPrefix, c.MaxUploadKB, c.S3Bucket, c.S3Region, c.S3Endpoint, maskKey(c.S3AccessKey),
		c.PredictionURL, c.PredictionTimeoutSeconds)
}

// maskKey keeps the first four characters of an access key id
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct.
// When CONFIG_FILE points to a YAML file its values are exported first and act as defaults
// for variables the environment does not set.
// Returns an error if any required environment variable is missing or invalid
func LoadConfig() (*Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadConfigFile(path); err != nil {
			return nil, err
		}
	}

	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config := &Config{
		Environment: GetEnvWithDefault("APP_ENV", "development"),
		Port:        port,
		Host:        GetEnvWithDefault("APP_HOST", "localhost"),
		CORSOrigins: splitList(GetEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),
		Database: database.DatabaseConfig{
			Driver:   strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite")),
			Host:     GetEnvWithDefault("DB_HOST", "localhost"),
			Port:     GetEnvWithDefault("DB_PORT", "5432"),
			User:     GetEnvWithDefault("DB_USER", "postgres"),
			Password: GetEnvWithDefault("DB_PASSWORD", ""),
			Name:     GetEnvWithDefault("DB_NAME", "cookbook"),
			SSLMode:  GetEnvWithDefault("DB_SSLMODE", "disable"),
			Path:     GetEnvWithDefault("DB_PATH", "cookbook.sqlite"),
		},
		LogLevel:                 GetEnvWithDefault("LOG_LEVEL", ""),
		TokenFormat:              strings.ToLower(GetEnvWithDefault("TOKEN_FORMAT", TokenFormatOpaque)),
		TokenTTLHours:            GetEnvAsType("TOKEN_TTL_HOURS", 720),
		JWTSecret:                GetEnvWithDefault("JWT_SECRET", ""),
		StorageDriver:            strings.ToLower(GetEnvWithDefault("STORAGE_DRIVER", StorageLocal)),
		UploadDir:                GetEnvWithDefault("UPLOAD_DIR", "storage"),
		StorageURLPrefix:         GetEnvWithDefault("STORAGE_URL_PREFIX", "/storage"),
		MaxUploadKB:              GetEnvAsType("MAX_UPLOAD_KB", 2048),
		S3Bucket:                 GetEnvWithDefault("S3_BUCKET", ""),
		S3Region:                 GetEnvWithDefault("S3_REGION", "us-east-1"),
		S3Endpoint:               GetEnvWithDefault("S3_ENDPOINT", ""),
		S3AccessKey:              GetEnvWithDefault("S3_ACCESS_KEY", ""),
		S3SecretKey:              GetEnvWithDefault("S3_SECRET_KEY", ""),
		PredictionURL:            GetEnvWithDefault("PREDICTION_URL", ""),
		PredictionTimeoutSeconds: GetEnvAsType("PREDICTION_TIMEOUT_SECONDS", 30),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres)", c.Database.Driver)
	}

	switch c.TokenFormat {
	case TokenFormatOpaque:
	case TokenFormatJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET environment variable is required when TOKEN_FORMAT=jwt")
		}
	default:
		return fmt.Errorf("unsupported TOKEN_FORMAT %q (supported: opaque, jwt)", c.TokenFormat)
	}
	if c.TokenTTLHours < 0 {
		return errors.New("TOKEN_TTL_HOURS must not be negative")
	}

	switch c.StorageDriver {
	case StorageLocal:
	case StorageS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET environment variable is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (supported: local, s3)", c.StorageDriver)
	}

	if c.MaxUploadKB <= 0 {
		return errors.New("MAX_UPLOAD_KB must be positive")
	}
	return nil
}

// loadConfigFile exports the key/value pairs of a flat YAML file as environment
// variables, without overriding variables that are already set.
func loadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	for key, value := range values {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	log.WithField("path", path).Infof("Loaded %d values from config file", len(values))
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			log.Warnf("Environment variable %s is not an integer, using default", key)
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			log.Warnf("Environment variable %s is not a boolean, using default", key)
			return defaultValue
		}
		return any(boolValue).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
