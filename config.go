package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"i4.energy/sms-gateway/webhook"
)

// Config holds the full gateway configuration: the teacher's original
// scalar fields (BindAddress, SerialPort, BaudRate, LogLevel, SimPIN)
// plus the structured settings SPEC_FULL.md's route surface, message
// store and webhook dispatcher need.
type Config struct {
	BindAddress string
	SerialPort  string
	BaudRate    int
	LogLevel    string
	SimPIN      string

	AuthToken string

	DatabaseDSN      string
	EncryptionKeyHex string
	RedisAddress     string
	CacheTTL         time.Duration

	GNSSEnabled        bool
	GNSSReportInterval time.Duration

	SystemdWatchdog bool

	Webhooks []WebhookFileConfig
}

// WebhookFileConfig is one entry of the YAML file's webhooks list,
// mirroring webhook.Config's fields in a serializable form (a
// []eventbus.Kind can't carry YAML tags directly since eventbus.Kind
// values are opaque strings the config layer shouldn't need to import
// eventbus to spell out).
type WebhookFileConfig struct {
	URL            string            `yaml:"url"`
	Secret         string            `yaml:"secret"`
	Events         []string          `yaml:"events"`
	ExpectedStatus int               `yaml:"expected_status"`
	Headers        map[string]string `yaml:"headers"`
	RootCAFile     string            `yaml:"root_ca_file"`
	Backlog        int               `yaml:"backlog"`
}

// yamlFile is the on-disk shape read from the -c config file. The
// encryption key and bearer token have no field here and come only
// from the environment (see WithEnv); each webhook's Secret and
// RootCAFile are read from this file only.
type yamlFile struct {
	BindAddress string  `yaml:"bind_address"`
	SerialPort  string  `yaml:"serial_port"`
	BaudRate    int     `yaml:"baud_rate"`
	LogLevel    string  `yaml:"log_level"`
	SimPIN      string  `yaml:"sim_pin"`
	DatabaseDSN string  `yaml:"database_dsn"`
	RedisAddr   string  `yaml:"redis_address"`
	CacheTTL    string  `yaml:"cache_ttl"`
	GNSS        gnssCfg `yaml:"gnss"`
	Systemd     struct {
		Watchdog bool `yaml:"watchdog"`
	} `yaml:"systemd"`
	Webhooks []WebhookFileConfig `yaml:"webhooks"`
}

type gnssCfg struct {
	Enabled        bool   `yaml:"enabled"`
	ReportInterval string `yaml:"report_interval"`
}

// ConfigOption mutates a Config under construction, kept from the
// teacher's functional-options merge pattern and generalized to also
// carry the YAML/env-sourced structured settings.
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order.
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// WithDefaults applies default configuration values.
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.DatabaseDSN = "sms-gateway.db"
		c.CacheTTL = 5 * time.Minute
		return nil
	}
}

// WithYAMLFile loads the structured settings from a YAML config file.
// A missing path is not an error — the gateway can run entirely off
// defaults and environment variables for a minimal setup.
func WithYAMLFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}

		var file yamlFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}

		if file.BindAddress != "" {
			c.BindAddress = file.BindAddress
		}
		if file.SerialPort != "" {
			c.SerialPort = file.SerialPort
		}
		if file.BaudRate != 0 {
			c.BaudRate = file.BaudRate
		}
		if file.LogLevel != "" {
			c.LogLevel = file.LogLevel
		}
		if file.SimPIN != "" {
			c.SimPIN = file.SimPIN
		}
		if file.DatabaseDSN != "" {
			c.DatabaseDSN = file.DatabaseDSN
		}
		if file.RedisAddr != "" {
			c.RedisAddress = file.RedisAddr
		}
		if file.CacheTTL != "" {
			d, err := time.ParseDuration(file.CacheTTL)
			if err != nil {
				return fmt.Errorf("config file: invalid cache_ttl %q: %w", file.CacheTTL, err)
			}
			c.CacheTTL = d
		}
		c.GNSSEnabled = file.GNSS.Enabled
		if file.GNSS.ReportInterval != "" {
			d, err := time.ParseDuration(file.GNSS.ReportInterval)
			if err != nil {
				return fmt.Errorf("config file: invalid gnss.report_interval %q: %w", file.GNSS.ReportInterval, err)
			}
			c.GNSSReportInterval = d
		}
		c.SystemdWatchdog = file.Systemd.Watchdog
		c.Webhooks = file.Webhooks
		return nil
	}
}

// WithEnv loads configuration from environment variables, expected to
// already be populated by the .env overlay that run in main.go loads
// with godotenv.Load, for secrets that shouldn't live in the YAML file.
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}
		if serialPort := os.Getenv("SERIAL_PORT"); serialPort != "" {
			c.SerialPort = serialPort
		}
		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}
		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}
		if simPIN := os.Getenv("SIM_PIN"); simPIN != "" {
			c.SimPIN = simPIN
		}
		if token := os.Getenv("SMS_AUTH_TOKEN"); token != "" {
			c.AuthToken = token
		}
		if key := os.Getenv("SMS_ENCRYPTION_KEY"); key != "" {
			c.EncryptionKeyHex = key
		}
		if dsn := os.Getenv("SMS_DATABASE_DSN"); dsn != "" {
			c.DatabaseDSN = dsn
		}
		if redisAddr := os.Getenv("SMS_REDIS_ADDRESS"); redisAddr != "" {
			c.RedisAddress = redisAddr
		}
		return nil
	}
}

// WithFlags loads configuration from command-line flags, overriding
// any earlier layer only for flags the caller actually set.
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "sim-pin":
				c.SimPIN = f.Value.String()
			}
		})
		return nil
	}
}

// webhookConfigs converts the YAML-sourced entries into
// webhook.Config values, resolving each Events string against
// eventbus's known kinds.
func (c *Config) webhookConfigs() ([]webhook.Config, error) {
	out := make([]webhook.Config, 0, len(c.Webhooks))
	for _, wc := range c.Webhooks {
		kinds, err := parseEventKinds(wc.Events)
		if err != nil {
			return nil, err
		}
		out = append(out, webhook.Config{
			URL:            wc.URL,
			Secret:         wc.Secret,
			Events:         kinds,
			ExpectedStatus: wc.ExpectedStatus,
			Headers:        wc.Headers,
			RootCAFile:     wc.RootCAFile,
			Backlog:        wc.Backlog,
		})
	}
	return out, nil
}
