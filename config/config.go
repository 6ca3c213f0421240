// Package config - service configuration
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm/logger"
)

// Config service configuration
type Config struct {
	// HTTP API server
	HTTP HTTPConfig `yaml:"http"`
	// Database persistence
	Database DatabaseConfig `yaml:"database"`
	// Auth caller authentication
	Auth AuthConfig `yaml:"auth"`
	// Attachments attachment content storage
	Attachments AttachmentConfig `yaml:"attachments"`
	// LogLevel log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level" validate:"required,oneof=debug info warn error"`
}

// HTTPConfig HTTP API server configuration
type HTTPConfig struct {
	// ListenAddr address to listen on
	ListenAddr string `yaml:"listen_addr" validate:"required"`
	// ReadTimeout request read timeout
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"gte=0"`
	// WriteTimeout response write timeout
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
	// IdleTimeout keep-alive idle timeout
	IdleTimeout time.Duration `yaml:"idle_timeout" validate:"gte=0"`
	// ShutdownTimeout grace period for in-flight requests on shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
	// RequestIDHeader header carrying the request ID
	RequestIDHeader string `yaml:"request_id_header" validate:"required"`
	// LogRequestHeaders request headers to include in request logs
	LogRequestHeaders []string `yaml:"log_request_headers"`
	// MetricsPath path of the prometheus endpoint, disabled when empty
	MetricsPath string `yaml:"metrics_path"`
}

// DatabaseConfig persistence configuration
type DatabaseConfig struct {
	// Dialect database type
	Dialect string `yaml:"dialect" validate:"required,oneof=sqlite postgres"`
	// SqliteFile database file when using sqlite
	SqliteFile string `yaml:"sqlite_file" validate:"required_if=Dialect sqlite"`
	// PostgresDSN connection string when using postgres
	PostgresDSN string `yaml:"postgres_dsn" validate:"required_if=Dialect postgres"`
	// LogLevel SQL log level (silent, error, warn, info)
	LogLevel string `yaml:"log_level" validate:"required,oneof=silent error warn info"`
	// MigrateOnStart apply schema migrations during startup
	MigrateOnStart bool `yaml:"migrate_on_start"`
}

// SQLLogLevel the GORM log level of the configured SQL log level
func (c DatabaseConfig) SQLLogLevel() logger.LogLevel {
	switch c.LogLevel {
	case "silent":
		return logger.Silent
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	}
	return logger.Error
}

// AuthConfig caller authentication configuration
type AuthConfig struct {
	// JWTSecret HS256 shared secret for verifying bearer tokens
	JWTSecret string `yaml:"jwt_secret" validate:"omitempty,min=16"`
	// JWTIssuer expected token issuer, not checked when empty
	JWTIssuer string `yaml:"jwt_issuer"`
	// SystemActorEnabled accept requests without a token, attributing them to the system actor
	SystemActorEnabled bool `yaml:"system_actor_enabled"`
	// SystemActorID user ID of the system actor
	SystemActorID string `yaml:"system_actor_id" validate:"required_if=SystemActorEnabled true"`
	// SystemActorName display name of the system actor
	SystemActorName string `yaml:"system_actor_name"`
}

// AttachmentConfig attachment storage configuration
type AttachmentConfig struct {
	// Backend content storage backend
	Backend string `yaml:"backend" validate:"required,oneof=local s3"`
	// LocalRoot root directory of the local backend
	LocalRoot string `yaml:"local_root" validate:"required_if=Backend local"`
	// S3 S3 backend settings
	S3 S3Config `yaml:"s3"`
	// MaxUploadBytes largest accepted upload
	MaxUploadBytes int64 `yaml:"max_upload_bytes" validate:"gte=1"`
	// Encryption content encryption at rest
	Encryption EncryptionConfig `yaml:"encryption"`
}

// S3Config S3 compatible object storage settings
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// EncryptionConfig attachment encryption settings
type EncryptionConfig struct {
	// Enabled encrypt new attachment content
	Enabled bool `yaml:"enabled"`
	// RSACertFile PEM certificate of the RSA key wrapping the content keys
	RSACertFile string `yaml:"rsa_cert_file" validate:"required_if=Enabled true"`
	// RSAKeyFile PEM private key of the RSA key wrapping the content keys
	RSAKeyFile string `yaml:"rsa_key_file" validate:"required_if=Enabled true"`
}

// Default the default configuration
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestIDHeader: "X-Request-ID",
			MetricsPath:     "/metrics",
		},
		Database: DatabaseConfig{
			Dialect:        "sqlite",
			SqliteFile:     "bluelight.db",
			LogLevel:       "error",
			MigrateOnStart: true,
		},
		Auth: AuthConfig{
			SystemActorID:   "system",
			SystemActorName: "System",
		},
		Attachments: AttachmentConfig{
			Backend:        "local",
			LocalRoot:      "data/anlagen",
			MaxUploadBytes: 20 << 20,
			S3: S3Config{
				Region: "eu-central-1",
			},
		},
		LogLevel: "info",
	}
}

/*
Load read configuration from a YAML file on top of the defaults

	@param path string - config file, the defaults are used as is when empty
	@returns the configuration
*/
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s [%w]", path, err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s [%w]", path, err)
		}
	}
	return cfg, nil
}

// Validate check the configuration is complete and consistent
func (c Config) Validate() error {
	if err := validator.New().Struct(&c); err != nil {
		return fmt.Errorf("invalid configuration [%w]", err)
	}
	if c.Auth.JWTSecret == "" && !c.Auth.SystemActorEnabled {
		return fmt.Errorf("invalid configuration: auth.jwt_secret is required unless the system actor is enabled")
	}
	if c.Attachments.Backend == "s3" && c.Attachments.S3.Bucket == "" {
		return fmt.Errorf("invalid configuration: attachments.s3.bucket is required for the s3 backend")
	}
	return nil
}
