package config

import "time"

const defaultWebhookRetryInterval = time.Minute

type ServiceConfig struct {
	Name                string `yaml:"name"`
	Environment         string `yaml:"environment"`
	Version             string `yaml:"version"`
	ClientURL           string `yaml:"client_url"`
	StripeSecretKey     string `yaml:"stripe_secret_key"`
	StripePublicKey     string `yaml:"stripe_public_key"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret"`

	// InvoiceURL and CreditNoteURL are fmt templates taking the record ID.
	InvoiceURL    string `yaml:"invoice_url"`
	CreditNoteURL string `yaml:"credit_note_url"`

	WebhookRetryInterval time.Duration `yaml:"webhook_retry_interval"`
	WebhookRetryBatch    int           `yaml:"webhook_retry_batch"`
}

// ConferenceConfig identifies the conference invoices are raised for.
type ConferenceConfig struct {
	ID       int64  `yaml:"id"`
	Title    string `yaml:"title"`
	Currency string `yaml:"currency"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	CookieName string `yaml:"cookie_name"`
}

// RedisConfig is optional. An empty Addr disables event publishing.
type RedisConfig struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	ChannelPrefix string `yaml:"channel_prefix"`
}

// SessionConfig signs the cookie that carries flash messages.
type SessionConfig struct {
	Secret string `yaml:"secret"`
	Secure bool   `yaml:"secure"`
}
