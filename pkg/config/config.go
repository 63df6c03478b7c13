// Package config exposes environment-backed configuration lookups built on
// viper.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config gives read access to configuration values by dotted key.
type Config interface {
	IsSet(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
}

type viperConfig struct {
	v *viper.Viper
}

func (c *viperConfig) IsSet(key string) bool       { return c.v.IsSet(key) }
func (c *viperConfig) GetString(key string) string { return c.v.GetString(key) }
func (c *viperConfig) GetInt(key string) int       { return c.v.GetInt(key) }
func (c *viperConfig) GetBool(key string) bool     { return c.v.GetBool(key) }

// FromEnv returns a Config that resolves "service.stripe_secret_key" from
// PREFIX_SERVICE_STRIPE_SECRET_KEY.
func FromEnv(prefix string) Config {
	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(prefix))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &viperConfig{v: v}
}
