package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	DatabaseURL   string   `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer    string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience  string   `mapstructure:"AUTH_AUDIENCE"`
	AuthHMACKey   string   `mapstructure:"AUTH_HMAC_KEY"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
	MailgunDomain string   `mapstructure:"MAILGUN_DOMAIN"`
	MailgunAPIKey string   `mapstructure:"MAILGUN_API_KEY"`
	MailFrom      string   `mapstructure:"MAIL_FROM"`
	SMTPHost      string   `mapstructure:"SMTP_HOST"`
	SMTPPort      int      `mapstructure:"SMTP_PORT"`
	SMTPUsername  string   `mapstructure:"SMTP_USERNAME"`
	SMTPPassword  string   `mapstructure:"SMTP_PASSWORD"`
	MailTimeout   int      `mapstructure:"MAIL_TIMEOUT_SECONDS"`
	GeocodeURL    string   `mapstructure:"GEOCODE_URL"`
	GeocodeRegion string   `mapstructure:"GEOCODE_COUNTRY"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MAIL_FROM", "Dermo-CRM <noreply@dermo-crm.local>")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_TIMEOUT_SECONDS", 15)
	v.SetDefault("GEOCODE_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODE_COUNTRY", "fr")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_HMAC_KEY", "CORS_ORIGINS",
		"MAILGUN_DOMAIN", "MAILGUN_API_KEY", "MAIL_FROM",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD",
		"MAIL_TIMEOUT_SECONDS", "GEOCODE_URL", "GEOCODE_COUNTRY",
	} {
		v.BindEnv(key)
	}

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

// MailSendTimeout bounds a single synchronous email delivery attempt.
func (c *Config) MailSendTimeout() time.Duration {
	if c.MailTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.MailTimeout) * time.Second
}

// Validate checks that the configuration is safe to run. Outside development
// either an HMAC key or an external issuer must be configured so bearer
// tokens are actually verified.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthHMACKey == "" && c.AuthIssuer == "" {
		return fmt.Errorf(
			"AUTH_HMAC_KEY or AUTH_ISSUER must be set when ENV=%q; "+
				"refusing to start without authentication configuration", c.Env)
	}
	if c.MailgunDomain != "" && c.MailgunAPIKey == "" {
		return fmt.Errorf("MAILGUN_API_KEY is required when MAILGUN_DOMAIN is set")
	}
	return nil
}
