package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joshp123/gotado/internal/oauth"
	"github.com/joshp123/gotado/tado"
)

const (
	EnvPrefix            = "GOTADO"
	DefaultListenAddr    = "127.0.0.1:9617"
	DefaultPollInterval  = 30 * time.Minute
	DefaultMQTTTopic     = "gotado"
	DefaultDailyBudget   = 100
	DefaultBudgetFloor   = 5
	DefaultCacheTTL      = 10 * time.Minute
	DefaultLogMaxSizeMB  = 10
	DefaultLogMaxBackups = 5
)

// Config is the host configuration of the gotado CLI.
type Config struct {
	// StateFile holds the rotated refresh token between runs.
	StateFile string           `mapstructure:"state_file"`
	HomeID    int              `mapstructure:"home_id"`
	Line      string           `mapstructure:"line"`
	Timeout   time.Duration    `mapstructure:"timeout"`
	Blob      oauth.BlobConfig `mapstructure:"blob"`
	Rate      RateConfig       `mapstructure:"rate"`
	Log       LogConfig        `mapstructure:"log"`
	Exporter  ExporterConfig   `mapstructure:"exporter"`
	MQTT      MQTTConfig       `mapstructure:"mqtt"`
}

type RateConfig struct {
	DailyBudget int           `mapstructure:"daily_budget"`
	Floor       int           `mapstructure:"floor"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

type ExporterConfig struct {
	ListenAddr   string        `mapstructure:"listen_addr"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// MQTTConfig enables publishing zone views when Broker is set.
type MQTTConfig struct {
	Broker       string `mapstructure:"broker"`
	ClientID     string `mapstructure:"client_id"`
	Topic        string `mapstructure:"topic"`
	Username     string `mapstructure:"username"`
	PasswordFile string `mapstructure:"password_file"`
	Retain       bool   `mapstructure:"retain"`
}

func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

// DefaultPath returns $XDG_CONFIG_HOME/gotado/config.yaml.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gotado")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "gotado")
	}
	return "gotado"
}

func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "gotado")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "gotado")
	}
	return "gotado"
}

// Load reads the YAML config at path, overlays GOTADO_* environment
// variables, applies defaults and validates. A missing file is fine when
// path is the default location.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindKeys registers every key so AutomaticEnv also reaches nested fields
// during Unmarshal.
func bindKeys(v *viper.Viper) {
	for _, key := range []string{
		"state_file", "home_id", "line", "timeout",
		"blob.endpoint", "blob.bucket", "blob.prefix", "blob.region",
		"blob.access_key_file", "blob.secret_key_file",
		"rate.daily_budget", "rate.floor", "rate.cache_ttl",
		"log.file", "log.max_size_mb", "log.max_backups",
		"exporter.listen_addr", "exporter.poll_interval",
		"mqtt.broker", "mqtt.client_id", "mqtt.topic", "mqtt.username",
		"mqtt.password_file", "mqtt.retain",
	} {
		_ = v.BindEnv(key)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.StateFile == "" {
		cfg.StateFile = filepath.Join(stateDir(), "state.json")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = tado.DefaultTimeout
	}
	if cfg.Rate.DailyBudget == 0 {
		cfg.Rate.DailyBudget = DefaultDailyBudget
	}
	if cfg.Rate.Floor == 0 {
		cfg.Rate.Floor = DefaultBudgetFloor
	}
	if cfg.Rate.CacheTTL == 0 {
		cfg.Rate.CacheTTL = DefaultCacheTTL
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = DefaultLogMaxBackups
	}
	if cfg.Exporter.ListenAddr == "" {
		cfg.Exporter.ListenAddr = DefaultListenAddr
	}
	if cfg.Exporter.PollInterval == 0 {
		cfg.Exporter.PollInterval = DefaultPollInterval
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = DefaultMQTTTopic
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "gotado"
	}
}

// Validate checks what the YAML types cannot express.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if cfg.StateFile == "" {
		return fmt.Errorf("state_file is required")
	}
	if cfg.HomeID < 0 {
		return fmt.Errorf("home_id must be positive")
	}
	switch tado.Line(cfg.Line) {
	case "", tado.LinePreX, tado.LineX:
	default:
		return fmt.Errorf("line must be %q or %q", tado.LinePreX, tado.LineX)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if cfg.Rate.Floor >= cfg.Rate.DailyBudget {
		return fmt.Errorf("rate.floor must be below rate.daily_budget")
	}
	if cfg.Exporter.PollInterval < time.Minute {
		return fmt.Errorf("exporter.poll_interval must be at least 1m")
	}

	if cfg.Blob.Endpoint != "" || cfg.Blob.Bucket != "" {
		if cfg.Blob.Endpoint == "" {
			return fmt.Errorf("blob.endpoint is required")
		}
		if cfg.Blob.Bucket == "" {
			return fmt.Errorf("blob.bucket is required")
		}
		if cfg.Blob.AccessKeyFile == "" {
			return fmt.Errorf("blob.access_key_file is required")
		}
		if cfg.Blob.SecretKeyFile == "" {
			return fmt.Errorf("blob.secret_key_file is required")
		}
	}

	if cfg.MQTT.Enabled() && cfg.MQTT.Username != "" && cfg.MQTT.PasswordFile == "" {
		return fmt.Errorf("mqtt.password_file is required with mqtt.username")
	}
	return nil
}
