package config

import (
	"fmt"
	"os"
	"path/filepath"

	pkgconfig "github.com/wekeepgrowing/registripe/pkg/config"
	"github.com/wekeepgrowing/registripe/pkg/logger"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath = "./configs/registripe.yaml"
	envPrefix         = "registripe"
)

type Config struct {
	Service    ServiceConfig    `yaml:"service"`
	Conference ConferenceConfig `yaml:"conference"`
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Log        logger.Config    `yaml:"log"`
	JWT        JWTConfig        `yaml:"jwt"`
	Redis      RedisConfig      `yaml:"redis"`
	Session    SessionConfig    `yaml:"session"`
}

// LoadConfig reads the YAML file at path, falling back to CONFIG_PATH and
// then the default location. Values from REGISTRIPE_* environment variables
// take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(pkgconfig.FromEnv(envPrefix))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML config and fills in defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// ApplyEnv overrides file values with any matching keys set in env.
func (c *Config) ApplyEnv(env pkgconfig.Config) {
	strings := map[string]*string{
		"service.environment":           &c.Service.Environment,
		"service.stripe_secret_key":     &c.Service.StripeSecretKey,
		"service.stripe_public_key":     &c.Service.StripePublicKey,
		"service.stripe_webhook_secret": &c.Service.StripeWebhookSecret,
		"conference.title":              &c.Conference.Title,
		"conference.currency":           &c.Conference.Currency,
		"database.host":                 &c.Database.Host,
		"database.name":                 &c.Database.Name,
		"database.user":                 &c.Database.User,
		"database.password":             &c.Database.Password,
		"jwt.secret":                    &c.JWT.Secret,
		"redis.addr":                    &c.Redis.Addr,
		"redis.password":                &c.Redis.Password,
		"session.secret":                &c.Session.Secret,
	}
	for key, target := range strings {
		if env.IsSet(key) {
			*target = env.GetString(key)
		}
	}

	ints := map[string]*int{
		"database.port":    &c.Database.Port,
		"server.http.port": &c.Server.HTTP.Port,
		"server.grpc.port": &c.Server.GRPC.Port,
		"redis.db":         &c.Redis.DB,
	}
	for key, target := range ints {
		if env.IsSet(key) {
			*target = env.GetInt(key)
		}
	}

	if env.IsSet("session.secure") {
		c.Session.Secure = env.GetBool("session.secure")
	}
	if env.IsSet("conference.id") {
		c.Conference.ID = int64(env.GetInt("conference.id"))
	}
}

// Validate checks the settings the payment flows cannot run without.
func (c *Config) Validate() error {
	if c.Service.StripeSecretKey == "" {
		return fmt.Errorf("service.stripe_secret_key is required")
	}
	if c.Service.StripePublicKey == "" {
		return fmt.Errorf("service.stripe_public_key is required")
	}
	if c.Conference.Currency == "" {
		return fmt.Errorf("conference.currency is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	if c.Service.WebhookRetryInterval <= 0 {
		return fmt.Errorf("service.webhook_retry_interval must be positive, got %s", c.Service.WebhookRetryInterval)
	}
	if c.Service.WebhookRetryBatch <= 0 {
		return fmt.Errorf("service.webhook_retry_batch must be positive, got %d", c.Service.WebhookRetryBatch)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "registripe"
	}
	if c.Service.InvoiceURL == "" {
		c.Service.InvoiceURL = "/invoice/%d"
	}
	if c.Service.CreditNoteURL == "" {
		c.Service.CreditNoteURL = "/credit_note/%d"
	}
	if c.Service.WebhookRetryInterval == 0 {
		c.Service.WebhookRetryInterval = defaultWebhookRetryInterval
	}
	if c.Service.WebhookRetryBatch == 0 {
		c.Service.WebhookRetryBatch = 50
	}
	if c.JWT.CookieName == "" {
		c.JWT.CookieName = "session_token"
	}
	if c.Redis.ChannelPrefix == "" {
		c.Redis.ChannelPrefix = "registripe"
	}
	if c.Server.HTTP.Port == 0 {
		c.Server.HTTP.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
