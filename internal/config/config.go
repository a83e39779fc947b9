package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Session tokens are issued by the identity provider and verified
	// locally with this shared secret.
	SessionSecret string `mapstructure:"SESSION_SECRET"`

	IdentityBaseURL    string `mapstructure:"IDENTITY_BASE_URL"`
	IdentityServiceKey string `mapstructure:"IDENTITY_SERVICE_KEY"`

	S3Region    string `mapstructure:"S3_REGION"`
	S3Bucket    string `mapstructure:"S3_BUCKET"`
	S3AccessKey string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey string `mapstructure:"S3_SECRET_KEY"`
	S3Endpoint  string `mapstructure:"S3_ENDPOINT"`

	SignedURLTTLSeconds int    `mapstructure:"SIGNED_URL_TTL"`
	MigrationsDir       string `mapstructure:"MIGRATIONS_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("S3_BUCKET", "medical-photos")
	v.SetDefault("SIGNED_URL_TTL", 3600)
	v.SetDefault("MIGRATIONS_DIR", "./migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("SESSION_SECRET")
	v.BindEnv("IDENTITY_BASE_URL")
	v.BindEnv("IDENTITY_SERVICE_KEY")
	v.BindEnv("S3_REGION")
	v.BindEnv("S3_BUCKET")
	v.BindEnv("S3_ACCESS_KEY")
	v.BindEnv("S3_SECRET_KEY")
	v.BindEnv("S3_ENDPOINT")
	v.BindEnv("SIGNED_URL_TTL")
	v.BindEnv("MIGRATIONS_DIR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SignedURLTTL returns the configured validity window for signed photo URLs.
func (c *Config) SignedURLTTL() time.Duration {
	if c.SignedURLTTLSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(c.SignedURLTTLSeconds) * time.Second
}

// Validate checks that the configuration is safe to run. Outside development
// the session secret must be set so that real session verification is
// enforced, and the identity provider must be reachable.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required when ENV=%q", c.Env)
		}
		if c.IdentityBaseURL == "" {
			return fmt.Errorf("IDENTITY_BASE_URL is required when ENV=%q", c.Env)
		}
	}
	if c.SignedURLTTLSeconds < 0 {
		return fmt.Errorf("SIGNED_URL_TTL must be non-negative, got %d", c.SignedURLTTLSeconds)
	}
	return nil
}
