package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys shared with the daemon's own config.yml.
const (
	keyDaemonAddress = "peaudiosys_address"
	keyDaemonPort    = "peaudiosys_port"
)

const envPrefix = "BRIDGE"

// DefaultReadTimeout matches the daemon's own client timeout.
const DefaultReadTimeout = 60 * time.Second

// ErrInvalidConfig is returned when a required setting is missing or malformed.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the resolved bridge configuration.
type Config struct {
	DaemonAddress string
	DaemonPort    int // base port; control commands use DaemonPort+1

	HTTPPort string
	LogLevel string

	DialTimeout time.Duration
	ReadTimeout time.Duration // 0 disables

	MonitorEnabled  bool
	MonitorInterval time.Duration

	DBPath       string
	AuditEnabled bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("daemon.dial_timeout", 2*time.Second)
	v.SetDefault("daemon.read_timeout", DefaultReadTimeout)
	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.interval", time.Second)
	v.SetDefault("db.path", "bridge.db")
	v.SetDefault("audit.enabled", false)
}

// Load reads the YAML file at path. Environment variables prefixed with
// BRIDGE_ override file values (BRIDGE_HTTP_PORT, BRIDGE_PEAUDIOSYS_PORT, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	return parse(v)
}

func parse(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DaemonAddress:   strings.TrimSpace(v.GetString(keyDaemonAddress)),
		DaemonPort:      v.GetInt(keyDaemonPort),
		HTTPPort:        v.GetString("http.port"),
		LogLevel:        strings.ToLower(v.GetString("log.level")),
		DialTimeout:     v.GetDuration("daemon.dial_timeout"),
		ReadTimeout:     v.GetDuration("daemon.read_timeout"),
		MonitorEnabled:  v.GetBool("monitor.enabled"),
		MonitorInterval: v.GetDuration("monitor.interval"),
		DBPath:          v.GetString("db.path"),
		AuditEnabled:    v.GetBool("audit.enabled"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DaemonAddress == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, keyDaemonAddress)
	}
	if c.DaemonPort <= 0 || c.DaemonPort >= 65535 {
		return fmt.Errorf("%w: %s must be in 1..65534, got %d", ErrInvalidConfig, keyDaemonPort, c.DaemonPort)
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 {
		return fmt.Errorf("%w: daemon timeouts must not be negative", ErrInvalidConfig)
	}
	if c.MonitorEnabled && c.MonitorInterval <= 0 {
		return fmt.Errorf("%w: monitor.interval must be positive", ErrInvalidConfig)
	}
	return nil
}
