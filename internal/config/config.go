// Package config loads settings from an optional YAML file and SETTLEUP_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// SETTLEUP_DATABASE_PATH=/var/lib/settleup/settleup.db.
const EnvPrefix = "SETTLEUP"

type ServerConfig struct {
	Addr        string   `mapstructure:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	StaticPath  string   `mapstructure:"static_path"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type SMSConfig struct {
	// Provider is "log" (development) or "twilio".
	Provider           string  `mapstructure:"provider"`
	AccountSID         string  `mapstructure:"account_sid"`
	AuthToken          string  `mapstructure:"auth_token"`
	FromNumber         string  `mapstructure:"from_number"`
	DefaultCountryCode string  `mapstructure:"default_country_code"`
	RatePerSecond      float64 `mapstructure:"rate_per_second"`
	Burst              int     `mapstructure:"burst"`
}

type RemindersConfig struct {
	Concurrency    int    `mapstructure:"concurrency"`
	DefaultMinimum string `mapstructure:"default_minimum"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	SMS       SMSConfig       `mapstructure:"sms"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Log       LogConfig       `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.static_path", "")
	v.SetDefault("database.path", "./data/settleup.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_ttl", 30*24*time.Hour)
	v.SetDefault("sms.provider", "log")
	v.SetDefault("sms.account_sid", "")
	v.SetDefault("sms.auth_token", "")
	v.SetDefault("sms.from_number", "")
	v.SetDefault("sms.default_country_code", "1")
	v.SetDefault("sms.rate_per_second", 1.0)
	v.SetDefault("sms.burst", 5)
	v.SetDefault("reminders.concurrency", 4)
	v.SetDefault("reminders.default_minimum", "0.01")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration. When path is empty, settleup.yaml in the
// working directory is used if present; a missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("settleup")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate reports settings that would prevent the server from starting.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("auth token lifetimes must be positive"))
	}
	switch c.SMS.Provider {
	case "log":
	case "twilio":
		if c.SMS.AccountSID == "" || c.SMS.AuthToken == "" || c.SMS.FromNumber == "" {
			errs = append(errs, errors.New("sms.account_sid, sms.auth_token and sms.from_number are required for twilio"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown sms.provider %q", c.SMS.Provider))
	}
	if c.SMS.RatePerSecond <= 0 || c.SMS.Burst < 1 {
		errs = append(errs, errors.New("sms.rate_per_second and sms.burst must be positive"))
	}
	if c.Reminders.Concurrency < 1 {
		errs = append(errs, errors.New("reminders.concurrency must be at least 1"))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// SlogLevel converts the configured log level string to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
