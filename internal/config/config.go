// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file,
// when present), loads them into structured Go types and validates that
// required values are present so they can be reused across the
// application runtime.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before LoadConfig reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from every variable read by LoadConfig.
//
// Nesting uses a double underscore:
//
//	REFERRAL_SERVER__PORT          -> server.port
//	REFERRAL_EMAIL__SMTP__PASSWORD -> email.smtp.password
const EnvPrefix = "REFERRAL_"

// Config is the root configuration object for the application.
//
// Observability is a pointer so tests can swap it wholesale; LoadConfig
// always populates it.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Email         EmailConfig          `koanf:"email" validate:"required"`
	Events        EventsConfig         `koanf:"events"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds, RateLimit in requests per second per client IP.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
	RateLimit          float64  `koanf:"rate_limit" validate:"gte=0"`
	// TrustedProxies lists the CIDRs allowed to set X-Forwarded-For.
	// Empty means the client IP is always the socket peer.
	TrustedProxies     []string `koanf:"trusted_proxies" validate:"omitempty,dive,cidr"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port"; an empty address disables Redis.
type RedisConfig struct {
	Address string `koanf:"address"`
}

const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
	ProviderSES    = "ses"

	DeliverySync  = "sync"
	DeliveryQueue = "queue"
)

// EmailConfig selects the mail transport and how notifications are delivered.
type EmailConfig struct {
	Provider    string       `koanf:"provider" validate:"required,oneof=smtp resend ses"`
	Delivery    string       `koanf:"delivery" validate:"required,oneof=sync queue"`
	FromAddress string       `koanf:"from_address"`
	FromName    string       `koanf:"from_name"`
	SMTP        SMTPConfig   `koanf:"smtp"`
	Resend      ResendConfig `koanf:"resend"`
	SES         SESConfig    `koanf:"ses"`
}

// SMTPConfig holds relay credentials. Timeout bounds one whole send,
// dial included.
type SMTPConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	User     string        `koanf:"user"`
	Password string        `koanf:"password"`
	Timeout  time.Duration `koanf:"timeout" validate:"gte=0"`
}

type ResendConfig struct {
	APIKey string `koanf:"api_key"`
}

type SESConfig struct {
	Region          string `koanf:"region"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
}

// Sender returns the configured From address, falling back to the SMTP account.
func (e EmailConfig) Sender() string {
	if e.FromAddress != "" {
		return e.FromAddress
	}
	return e.SMTP.User
}

// EventsConfig controls publication of referral events to RabbitMQ.
type EventsConfig struct {
	Enabled  bool   `koanf:"enabled"`
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
}

// Validate applies the cross-field rules struct tags cannot express.
func (c *Config) Validate() error {
	switch c.Email.Provider {
	case ProviderSMTP:
		if c.Email.SMTP.Host == "" || c.Email.SMTP.User == "" || c.Email.SMTP.Password == "" {
			return fmt.Errorf("email.smtp host, user and password are required for the smtp provider")
		}
	case ProviderResend:
		if c.Email.Resend.APIKey == "" {
			return fmt.Errorf("email.resend.api_key is required for the resend provider")
		}
	case ProviderSES:
		if c.Email.SES.Region == "" {
			return fmt.Errorf("email.ses.region is required for the ses provider")
		}
	}

	if c.Email.Sender() == "" {
		return fmt.Errorf("email.from_address is required")
	}

	if c.Email.Delivery == DeliveryQueue && c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when email.delivery is %q", DeliveryQueue)
	}

	if c.Events.Enabled && (c.Events.URL == "" || c.Events.Exchange == "") {
		return fmt.Errorf("events.url and events.exchange are required when events are enabled")
	}

	return nil
}

// DefaultConfig returns the values used for anything the environment leaves unset.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "3001",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			RateLimit:          10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "referrals",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			ConnMaxIdleTime: 60,
		},
		Email: EmailConfig{
			Provider: ProviderSMTP,
			Delivery: DeliverySync,
			FromName: "Course Referrals",
			SMTP: SMTPConfig{
				Host:    "smtp.gmail.com",
				Port:    587,
				Timeout: 15 * time.Second,
			},
			SES: SESConfig{Region: "us-east-1"},
		},
		Events:        EventsConfig{Exchange: "referrals"},
		Observability: DefaultObservabilityConfig(),
	}
}

// listKeys are read as comma-separated lists.
var listKeys = map[string]struct{}{
	"server.cors_allowed_origins":        {},
	"server.trusted_proxies":             {},
	"observability.health_checks.checks": {},
}

func splitList(v string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// LoadConfig loads configuration from environment variables on top of
// DefaultConfig, validates it and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(s, v string) (string, interface{}) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
		if _, ok := listKeys[key]; ok {
			return key, splitList(v)
		}
		return key, v
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := DefaultConfig()

	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()

	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name is fixed; environment always follows primary.env.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
