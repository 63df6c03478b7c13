package config

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkgconfig "github.com/wekeepgrowing/registripe/pkg/config"
)

const sampleConfig = `
service:
  stripe_secret_key: sk_test_file
  stripe_public_key: pk_test_file
  webhook_retry_interval: 30s
conference:
  id: 1
  title: PyCon Test
  currency: AUD
database:
  host: localhost
  port: 5432
  name: registripe
  user: registripe
jwt:
  secret: secret
`

type mapEnv map[string]string

func (m mapEnv) IsSet(key string) bool       { _, ok := m[key]; return ok }
func (m mapEnv) GetString(key string) string { return m[key] }
func (m mapEnv) GetBool(key string) bool     { return m[key] == "true" }
func (m mapEnv) GetInt(key string) int {
	n, _ := strconv.Atoi(m[key])
	return n
}

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "registripe", cfg.Service.Name)
	assert.Equal(t, "/invoice/%d", cfg.Service.InvoiceURL)
	assert.Equal(t, "/credit_note/%d", cfg.Service.CreditNoteURL)
	assert.Equal(t, 30*time.Second, cfg.Service.WebhookRetryInterval)
	assert.Equal(t, 50, cfg.Service.WebhookRetryBatch)
	assert.Equal(t, "session_token", cfg.JWT.CookieName)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, "PyCon Test", cfg.Conference.Title)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_OverridesFileValues(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	cfg.ApplyEnv(mapEnv{
		"service.stripe_secret_key": "sk_test_env",
		"database.port":             "5433",
		"conference.id":             "7",
		"session.secure":            "true",
	})

	assert.Equal(t, "sk_test_env", cfg.Service.StripeSecretKey)
	assert.Equal(t, "pk_test_file", cfg.Service.StripePublicKey)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, int64(7), cfg.Conference.ID)
	assert.True(t, cfg.Session.Secure)
}

func TestFromEnv_ResolvesPrefixedVariables(t *testing.T) {
	t.Setenv("REGISTRIPE_SERVICE_STRIPE_SECRET_KEY", "sk_test_viper")
	t.Setenv("REGISTRIPE_SERVER_HTTP_PORT", "9000")

	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	cfg.ApplyEnv(pkgconfig.FromEnv(envPrefix))

	assert.Equal(t, "sk_test_viper", cfg.Service.StripeSecretKey)
	assert.Equal(t, 9000, cfg.Server.HTTP.Port)
	assert.Equal(t, "pk_test_file", cfg.Service.StripePublicKey)
}

func TestValidate_RequiresStripeKeys(t *testing.T) {
	cfg, err := Parse([]byte("conference:\n  currency: AUD\njwt:\n  secret: s\n"))
	require.NoError(t, err)

	assert.EqualError(t, cfg.Validate(), "service.stripe_secret_key is required")
}

func TestValidate_RejectsNonPositiveRetrySettings(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	cfg.Service.WebhookRetryInterval = -5 * time.Second
	assert.EqualError(t, cfg.Validate(), "service.webhook_retry_interval must be positive, got -5s")

	cfg.Service.WebhookRetryInterval = time.Minute
	cfg.Service.WebhookRetryBatch = -1
	assert.EqualError(t, cfg.Validate(), "service.webhook_retry_batch must be positive, got -1")
}

func TestDatabaseDSN(t *testing.T) {
	pg := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", pg.DSN())

	lite := DatabaseConfig{Driver: "sqlite", Name: "file::memory:"}
	assert.Equal(t, "file::memory:", lite.DSN())
}
